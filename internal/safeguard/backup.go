package safeguard

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Backup snapshots files under <root>/data-backups/<timestamp>-<label>/.
// It is used before deduplicate_memories removes duplicates, by the
// periodic backup job, and by memstorectl backup; migration and the batch
// enhance tools do not take a snapshot. It is opportunistic: a snapshot
// failure never blocks the bulk operation itself, since the backup is a
// safety net, not a precondition.
type Backup struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

// NewBackup creates a Backup rooted at the same directory the stores use.
func NewBackup(root string, logger *slog.Logger) *Backup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backup{root: root, logger: logger, now: time.Now}
}

// Snapshot copies every path in files into a fresh timestamped directory
// under data-backups, preserving each file's path relative to root. Missing
// source files are skipped rather than failing the whole snapshot.
func (b *Backup) Snapshot(label string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	dir := filepath.Join(b.root, "data-backups", fmt.Sprintf("%s-%s", b.now().Format("20060102-150405"), label))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating backup dir %s: %w", dir, err)
	}

	for _, f := range files {
		rel, err := filepath.Rel(b.root, f)
		if err != nil {
			b.logger.Warn("backup: skipping file outside root", "path", f)
			continue
		}
		dst := filepath.Join(dir, rel)
		if err := copyFile(f, dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			b.logger.Warn("backup: failed to snapshot file", "path", f, "error", err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
