package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/store"
)

var dedupePreview bool

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find and remove duplicate memories",
	RunE:  runDedupe,
}

func init() {
	dedupeCmd.Flags().BoolVar(&dedupePreview, "preview", false, "list candidates without deleting them")
	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine := store.NewEngine(cfg.Store.Root)
	memories := memory.New(engine, logger())

	candidates, err := memories.Deduplicate(dedupePreview)
	if err != nil {
		return fmt.Errorf("deduplicating: %w", err)
	}

	if len(candidates) == 0 {
		fmt.Println("no duplicates found")
		return nil
	}

	verb := "removed"
	if dedupePreview {
		verb = "would remove"
	}
	for _, c := range candidates {
		fmt.Printf("%s duplicate %s (%s)\n", verb, c.ID, c.Path)
	}
	fmt.Printf("%d candidate(s)\n", len(candidates))
	return nil
}
