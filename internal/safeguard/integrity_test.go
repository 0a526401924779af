package safeguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureLayoutCreatesRequiredDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, EnsureLayout(root))

	for _, d := range requiredDirs {
		info, err := os.Stat(filepath.Join(root, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureLayoutIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, EnsureLayout(root))
	require.NoError(t, EnsureLayout(root))
}

func TestEnsureLayoutRejectsUnwritableRoot(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}
	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o500))
	t.Cleanup(func() { os.Chmod(parent, 0o700) })

	err := EnsureLayout(filepath.Join(parent, "store"))
	assert.Error(t, err)
}
