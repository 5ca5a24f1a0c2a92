package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-reduction/internal/fsutil"
)

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, fsutil.EnsureDir(path))

	ok, err := fsutil.DirExists(path)
	require.NoError(t, err)
	assert.True(t, ok)

	// already existing is fine
	require.NoError(t, fsutil.EnsureDir(path))
}

func TestDirExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ok, err := fsutil.DirExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	ok, err = fsutil.DirExists(file)
	require.NoError(t, err)
	assert.False(t, ok)
}
