package safeguard

import (
	"fmt"
	"os"
	"path/filepath"
)

// requiredDirs are the subdirectories every store root must have before the
// server accepts its first request.
var requiredDirs = []string{
	filepath.Join("memories"),
	filepath.Join("tasks"),
	"data",
	"data-backups",
}

// EnsureLayout verifies root is writable and creates any missing
// subdirectory from requiredDirs. It is a startup-only check: failures here
// are fatal before the first request is accepted, never after.
func EnsureLayout(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("store root %s is not writable: %w", root, err)
	}

	probe := filepath.Join(root, ".memstore-write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("store root %s failed write probe: %w", root, err)
	}
	os.Remove(probe)

	for _, d := range requiredDirs {
		full := filepath.Join(root, d)
		if err := os.MkdirAll(full, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", full, err)
		}
	}
	return nil
}
