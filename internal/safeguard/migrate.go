package safeguard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// migrationMarker is the sentinel file whose presence disables future
// migration runs, making the migration idempotent across restarts.
const migrationMarker = "migration-complete.json"

// legacyFile is the single-JSON-file layout memstore's predecessor used
// before the markdown store existed.
const legacyFile = "memstore-legacy.json"

// legacyMemory mirrors the historical single-file JSON shape for a memory.
type legacyMemory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Project   string    `json:"project"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

// legacyTask mirrors the historical single-file JSON shape for a task.
type legacyTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Project     string    `json:"project"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags"`
	Created     time.Time `json:"created"`
}

// legacyDump is the root object of the legacy JSON file.
type legacyDump struct {
	Memories []legacyMemory `json:"memories"`
	Tasks    []legacyTask   `json:"tasks"`
}

// MemoryAdder is the subset of memory.Store the migration needs. It is
// expressed as an interface so this package has no import-time dependency
// on internal/memory.
type MemoryAdder interface {
	AddLegacy(id, content, project, category, priority string, tags []string, createdAt time.Time) error
}

// TaskAdder is the subset of task.Store the migration needs.
type TaskAdder interface {
	AddLegacy(id, title, description, project, category, priority, status string, tags []string, createdAt time.Time) error
}

// MigrateOnce runs the one-shot JSON-to-markdown migration if, and only if,
// both the legacy file exists and the marker file does not. It does not
// read data/settings.json; ReadLegacySettings does that separately.
func MigrateOnce(root string, memories MemoryAdder, tasks TaskAdder, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	markerPath := filepath.Join(root, "data", migrationMarker)
	if _, err := os.Stat(markerPath); err == nil {
		return nil // already migrated
	}

	legacyPath := filepath.Join(root, "data", legacyFile)
	data, err := os.ReadFile(legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return writeMarker(markerPath, 0, 0)
		}
		return fmt.Errorf("reading legacy file %s: %w", legacyPath, err)
	}

	var dump legacyDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parsing legacy file %s: %w", legacyPath, err)
	}

	var migratedMemories, migratedTasks int
	for _, m := range dump.Memories {
		if err := memories.AddLegacy(m.ID, m.Content, m.Project, m.Category, m.Priority, m.Tags, m.Timestamp); err != nil {
			logger.Warn("migration: skipping unmigratable memory", "id", m.ID, "error", err)
			continue
		}
		migratedMemories++
	}
	for _, t := range dump.Tasks {
		if err := tasks.AddLegacy(t.ID, t.Title, t.Description, t.Project, t.Category, t.Priority, t.Status, t.Tags, t.Created); err != nil {
			logger.Warn("migration: skipping unmigratable task", "id", t.ID, "error", err)
			continue
		}
		migratedTasks++
	}

	logger.Info("migration complete", "memories", migratedMemories, "tasks", migratedTasks)
	return writeMarker(markerPath, migratedMemories, migratedTasks)
}

func writeMarker(path string, memories, tasks int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	body, _ := json.MarshalIndent(map[string]any{
		"migrated_at": time.Now().Format(time.RFC3339),
		"memories":    memories,
		"tasks":       tasks,
	}, "", "  ")
	return os.WriteFile(path, body, 0o644)
}

// LegacySettings is the subset of the spec's documented data/settings.json
// shape memstore still honors as a read-only fallback for its own TOML
// config, per the open decision recorded in DESIGN.md.
type LegacySettings struct {
	StoreRoot         string `json:"storeRoot"`
	DefaultProject    string `json:"defaultProject"`
	EnhancementURL    string `json:"enhancementUrl"`
	EnhancementModel  string `json:"enhancementModel"`
}

// ReadLegacySettings reads <root>/data/settings.json if present, returning
// (nil, nil) when the file does not exist — the file is entirely optional.
func ReadLegacySettings(root string) (*LegacySettings, error) {
	path := filepath.Join(root, "data", "settings.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var s LegacySettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}
