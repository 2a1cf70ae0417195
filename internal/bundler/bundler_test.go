package bundler_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/assetpack/internal/archive"
	"github.com/idelchi/assetpack/internal/buildenv"
	"github.com/idelchi/assetpack/internal/bundler"
	"github.com/idelchi/assetpack/internal/encryption"
)

var key = [encryption.KeySize]byte{0xde, 0xad, 0xbe, 0xef, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

const (
	assetDir = "/game/assets"
	outDir   = "/game/bin"
)

func newFs(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()

	files := map[string]string{
		"shaders/basic.wgsl":   "@vertex fn main() {}",
		"levels/01/layout.txt": "#####\n#...#\n#####",
		"title.txt":            "A Game",
	}

	for name, content := range files {
		path := filepath.Join(assetDir, filepath.FromSlash(name))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}

	require.NoError(t, fsys.MkdirAll(outDir, 0o755))

	return fsys
}

func newBundler(fsys afero.Fs, env buildenv.Environment) *bundler.Bundler {
	return bundler.New().
		WithFs(fsys).
		WithAssetFolder(assetDir).
		WithOutputDir(outDir).
		WithEnvironment(env).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func readBundle(t *testing.T, fsys afero.Fs, path string, dec archive.Decrypter) map[string]string {
	t.Helper()

	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)

	entries := make(map[string]string)

	require.NoError(t, archive.Walk(bytes.NewReader(data), dec, func(e *archive.Entry) error {
		entries[e.Path] = string(e.Data)

		return nil
	}))

	return entries
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	options := bundler.New().Options()

	assert.False(t, options.EnabledOnDebugBuild)
	assert.False(t, options.EncryptionEnabled)
	assert.Nil(t, options.EncryptionKey)
	assert.Equal(t, bundler.DefaultBundleName, options.BundleName)
}

func TestBuildPlain(t *testing.T) {
	t.Parallel()

	fsys := newFs(t)

	result, err := newBundler(fsys, buildenv.Environment{Profile: "release"}).Build()
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.False(t, result.Encrypted)
	assert.Equal(t, filepath.Join(outDir, bundler.DefaultBundleName), result.Path)
	assert.Equal(t, 3, result.Stats.Entries)
	assert.Positive(t, result.Size)

	assert.Equal(t, map[string]string{
		"shaders/basic.wgsl":   "@vertex fn main() {}",
		"levels/01/layout.txt": "#####\n#...#\n#####",
		"title.txt":            "A Game",
	}, readBundle(t, fsys, result.Path, nil))
}

func TestBuildEncrypted(t *testing.T) {
	t.Parallel()

	if !encryption.Available {
		t.Skip("encryption compiled out")
	}

	fsys := newFs(t)

	result, err := newBundler(fsys, buildenv.Environment{}).
		WithBundleName("game.pak").
		SetEncryptionKey(key).
		Build()
	require.NoError(t, err)

	assert.True(t, result.Encrypted)
	assert.Equal(t, 3, result.Stats.Encrypted)
	assert.Equal(t, filepath.Join(outDir, "game.pak"), result.Path)

	ctx := encryption.New(true, &key)
	defer ctx.Destroy()

	entries := readBundle(t, fsys, result.Path, ctx)
	assert.Equal(t, "A Game", entries["title.txt"])

	raw := readBundle(t, fsys, result.Path, nil)
	assert.NotEqual(t, "A Game", raw["title.txt"])
}

func TestDebugGate(t *testing.T) {
	t.Parallel()

	fsys := newFs(t)
	debug := buildenv.Environment{Profile: buildenv.DebugProfile}

	result, err := newBundler(fsys, debug).WithAssetFolder("/does/not/exist").Build()
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	exists, err := afero.Exists(fsys, filepath.Join(outDir, bundler.DefaultBundleName))
	require.NoError(t, err)
	assert.False(t, exists)

	result, err = newBundler(fsys, debug).EnabledOnDebugBuild(true).Build()
	require.NoError(t, err)
	assert.False(t, result.Skipped)

	exists, err = afero.Exists(fsys, result.Path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMissingKey(t *testing.T) {
	t.Parallel()

	fsys := newFs(t)

	_, err := newBundler(fsys, buildenv.Environment{}).WithEncryption(true).Build()
	require.ErrorIs(t, err, bundler.ErrConfiguration)

	exists, err := afero.Exists(fsys, filepath.Join(outDir, bundler.DefaultBundleName))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMissingAssetFolder(t *testing.T) {
	t.Parallel()

	fsys := newFs(t)

	_, err := newBundler(fsys, buildenv.Environment{}).WithAssetFolder("/missing/assets").Build()
	require.ErrorIs(t, err, bundler.ErrNotFound)
	assert.Contains(t, err.Error(), "/missing/assets")
	assert.Contains(t, err.Error(), "cwd")

	exists, err := afero.Exists(fsys, filepath.Join(outDir, bundler.DefaultBundleName))
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = newBundler(fsys, buildenv.Environment{}).WithAssetFolder(assetDir + "/title.txt").Build()
	require.ErrorIs(t, err, bundler.ErrNotFound)
}

func TestInvalidConfiguration(t *testing.T) {
	t.Parallel()

	fsys := newFs(t)

	for _, b := range []*bundler.Bundler{
		newBundler(fsys, buildenv.Environment{}).WithBundleName(""),
		newBundler(fsys, buildenv.Environment{}).WithBundleName("../escape.bin"),
		newBundler(fsys, buildenv.Environment{}).WithExclude("[unclosed"),
	} {
		_, err := b.Build()
		require.ErrorIs(t, err, bundler.ErrConfiguration)
	}
}

func TestOutputNextToExecutable(t *testing.T) {
	t.Parallel()

	fsys := newFs(t)
	exe := func() (string, error) { return "/game/target/debug/build/game-1/build-script-build", nil }

	b := bundler.New().
		WithFs(fsys).
		WithAssetFolder(assetDir).
		WithExecutable(exe).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, fsys.MkdirAll("/game/target/debug/build/game-1", 0o755))

	result, err := b.WithEnvironment(buildenv.Environment{OutDir: "/game/target/debug/build/game-1/out"}).Build()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/game/target/debug", bundler.DefaultBundleName), result.Path)

	result, err = b.WithEnvironment(buildenv.Environment{}).Build()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/game/target/debug/build/game-1", bundler.DefaultBundleName), result.Path)
}

func TestExecutableLookupFails(t *testing.T) {
	t.Parallel()

	errLookup := errors.New("executable unknown")

	_, err := bundler.New().
		WithFs(newFs(t)).
		WithAssetFolder(assetDir).
		WithEnvironment(buildenv.Environment{}).
		WithExecutable(func() (string, error) { return "", errLookup }).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()

	require.ErrorIs(t, err, bundler.ErrIO)
	require.ErrorIs(t, err, errLookup)
}

func TestRebuildTruncates(t *testing.T) {
	t.Parallel()

	fsys := newFs(t)
	b := newBundler(fsys, buildenv.Environment{})

	first, err := b.Build()
	require.NoError(t, err)

	require.NoError(t, fsys.RemoveAll(filepath.Join(assetDir, "levels")))

	second, err := b.Build()
	require.NoError(t, err)

	assert.Less(t, second.Size, first.Size)
	assert.Len(t, readBundle(t, fsys, second.Path, nil), 2)
}

func TestExclude(t *testing.T) {
	t.Parallel()

	fsys := newFs(t)

	result, err := newBundler(fsys, buildenv.Environment{}).WithExclude("*.wgsl").Build()
	require.NoError(t, err)

	entries := readBundle(t, fsys, result.Path, nil)
	assert.NotContains(t, entries, "shaders/basic.wgsl")
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, result.Stats.Excluded)
}

func TestOutputInsideAssetFolder(t *testing.T) {
	t.Parallel()

	for _, dir := range []string{assetDir, assetDir + "/levels", assetDir + "/levels/../shaders"} {
		fsys := newFs(t)

		_, err := newBundler(fsys, buildenv.Environment{}).WithOutputDir(dir).Build()
		require.ErrorIs(t, err, bundler.ErrConfiguration, dir)

		exists, err := afero.Exists(fsys, filepath.Join(dir, bundler.DefaultBundleName))
		require.NoError(t, err)
		assert.False(t, exists, "bundle written into %s", dir)
	}

	fsys := newFs(t)
	sibling := assetDir + "-out"
	require.NoError(t, fsys.MkdirAll(sibling, 0o755))

	result, err := newBundler(fsys, buildenv.Environment{}).WithOutputDir(sibling).Build()
	require.NoError(t, err)
	assert.Len(t, readBundle(t, fsys, result.Path, nil), 3)
}

func TestOutputLinkedIntoAssetFolder(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	assets := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(assets, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "data", "a.txt"), []byte("a"), 0o600))

	link := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.Symlink(filepath.Join(assets, "data"), link))

	_, err := bundler.New().
		WithAssetFolder(assets).
		WithOutputDir(link).
		WithEnvironment(buildenv.Environment{}).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	require.ErrorIs(t, err, bundler.ErrConfiguration)
	assert.NoFileExists(t, filepath.Join(assets, "data", bundler.DefaultBundleName))
}
