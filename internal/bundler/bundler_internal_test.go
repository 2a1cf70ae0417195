package bundler

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/assetpack/internal/buildenv"
)

func TestWorkingDirectoryUnknown(t *testing.T) {
	t.Parallel()

	errGetwd := errors.New("getwd: no such file or directory")

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/assets", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/assets/a.txt", []byte("a"), 0o644))
	require.NoError(t, fsys.MkdirAll("/out", 0o755))

	newBundler := func(folder string) *Bundler {
		b := New().
			WithFs(fsys).
			WithAssetFolder(folder).
			WithOutputDir("/out").
			WithEnvironment(buildenv.Environment{}).
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
		b.getwd = func() (string, error) { return "", errGetwd }

		return b
	}

	_, err := newBundler("/missing").Build()
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, errGetwd)

	result, err := newBundler("/assets").Build()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Entries)
}

func TestWithin(t *testing.T) {
	t.Parallel()

	cases := []struct {
		root, dir string
		want      bool
	}{
		{"/a/assets", "/a/assets", true},
		{"/a/assets", "/a/assets/sub/deeper", true},
		{"/a/assets/", "/a/assets/sub/..", true},
		{"/a/assets", "/a/assets-out", false},
		{"/a/assets", "/a", false},
		{"/a/assets", "/b/assets", false},
	}

	for _, tc := range cases {
		got, err := within(tc.root, tc.dir)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "within(%q, %q)", tc.root, tc.dir)
	}
}
