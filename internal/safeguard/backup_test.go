package safeguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupSnapshotCopiesFiles(t *testing.T) {
	root := t.TempDir()
	srcDir := filepath.Join(root, "memories", "api")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))

	f1 := filepath.Join(srcDir, "one.md")
	require.NoError(t, os.WriteFile(f1, []byte("---\nid: one\n---\nbody"), 0o644))

	b := NewBackup(root, nil)
	require.NoError(t, b.Snapshot("unit-test", []string{f1}))

	entries, err := os.ReadDir(filepath.Join(root, "data-backups"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	copied, err := os.ReadFile(filepath.Join(root, "data-backups", entries[0].Name(), "memories", "api", "one.md"))
	require.NoError(t, err)
	assert.Contains(t, string(copied), "body")
}

func TestBackupSnapshotSkipsMissingFiles(t *testing.T) {
	root := t.TempDir()
	b := NewBackup(root, nil)
	err := b.Snapshot("unit-test", []string{filepath.Join(root, "memories", "nope.md")})
	assert.NoError(t, err)
}
