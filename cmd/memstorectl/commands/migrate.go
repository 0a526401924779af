package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/safeguard"
	"github.com/endlessblink/memstore/internal/store"
	"github.com/endlessblink/memstore/internal/task"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the one-shot legacy JSON-to-markdown migration",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := safeguard.EnsureLayout(cfg.Store.Root); err != nil {
		return fmt.Errorf("preparing store root: %w", err)
	}

	log := logger()
	engine := store.NewEngine(cfg.Store.Root)
	memories := memory.New(engine, log)
	tasks := task.New(engine, log)

	if err := safeguard.MigrateOnce(cfg.Store.Root, memories, tasks, log); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	fmt.Println("migration complete (or already applied)")
	return nil
}
