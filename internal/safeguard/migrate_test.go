package safeguard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemories struct {
	added []string
}

func (f *fakeMemories) AddLegacy(id, content, project, category, priority string, tags []string, createdAt time.Time) error {
	f.added = append(f.added, id)
	return nil
}

type fakeTasks struct {
	added []string
}

func (f *fakeTasks) AddLegacy(id, title, description, project, category, priority, status string, tags []string, createdAt time.Time) error {
	f.added = append(f.added, id)
	return nil
}

func TestMigrateOnceNoLegacyFile(t *testing.T) {
	root := t.TempDir()
	mem, task := &fakeMemories{}, &fakeTasks{}
	require.NoError(t, MigrateOnce(root, mem, task, nil))
	assert.Empty(t, mem.added)
	assert.Empty(t, task.added)

	_, err := os.Stat(filepath.Join(root, "data", migrationMarker))
	assert.NoError(t, err)
}

func TestMigrateOnceMigratesAndIsIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))

	dump := legacyDump{
		Memories: []legacyMemory{{ID: "m1", Content: "old memory", Project: "api"}},
		Tasks:    []legacyTask{{ID: "t1", Title: "old task", Project: "api", Status: "todo"}},
	}
	body, err := json.Marshal(dump)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", legacyFile), body, 0o644))

	mem, task := &fakeMemories{}, &fakeTasks{}
	require.NoError(t, MigrateOnce(root, mem, task, nil))
	assert.Equal(t, []string{"m1"}, mem.added)
	assert.Equal(t, []string{"t1"}, task.added)

	mem2, task2 := &fakeMemories{}, &fakeTasks{}
	require.NoError(t, MigrateOnce(root, mem2, task2, nil))
	assert.Empty(t, mem2.added, "second run must be a no-op once the marker exists")
}

func TestReadLegacySettingsMissingFileIsNil(t *testing.T) {
	s, err := ReadLegacySettings(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestReadLegacySettingsParsesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))
	body := `{"storeRoot":"/tmp/custom","defaultProject":"acme"}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "settings.json"), []byte(body), 0o644))

	s, err := ReadLegacySettings(root)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "/tmp/custom", s.StoreRoot)
	assert.Equal(t, "acme", s.DefaultProject)
}
