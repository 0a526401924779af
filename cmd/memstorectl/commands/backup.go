package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/endlessblink/memstore/internal/safeguard"
)

var backupLabel string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot every memory and task file under the store root",
	RunE:  runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupLabel, "label", "manual", "label recorded with this snapshot")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	b := safeguard.NewBackup(cfg.Store.Root, logger())
	files := walkMarkdown(filepath.Join(cfg.Store.Root, "memories"))
	files = append(files, walkMarkdown(filepath.Join(cfg.Store.Root, "tasks"))...)

	if len(files) == 0 {
		fmt.Println("nothing to back up")
		return nil
	}

	if err := b.Snapshot(backupLabel, files); err != nil {
		return fmt.Errorf("snapshotting: %w", err)
	}
	fmt.Printf("backed up %d file(s) under label %q\n", len(files), backupLabel)
	return nil
}

func walkMarkdown(dir string) []string {
	var out []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			out = append(out, walkMarkdown(full)...)
			continue
		}
		if strings.HasSuffix(e.Name(), ".md") {
			out = append(out, full)
		}
	}
	return out
}
