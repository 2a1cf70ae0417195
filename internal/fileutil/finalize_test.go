package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/assetpack/internal/fileutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	require.NoError(t, os.WriteFile(target, []byte("old content that is longer"), 0o600))
	require.NoError(t, fileutil.WriteAtomic(target, []byte("new"), 0o640))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteAtomicMissingDir(t *testing.T) {
	t.Parallel()

	err := fileutil.WriteAtomic(filepath.Join(t.TempDir(), "missing", "out.txt"), []byte("x"), 0o600)
	assert.Error(t, err)
}

func TestFinalizeOutput(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(target, []byte("12345"), 0o600))

	mtime := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	size, err := fileutil.FinalizeOutput(target, true, mtime)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}
