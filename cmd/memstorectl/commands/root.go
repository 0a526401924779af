package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/endlessblink/memstore/internal/config"
)

var (
	configFile string
	storeRoot  string
)

var rootCmd = &cobra.Command{
	Use:   "memstorectl",
	Short: "Admin CLI for a memstore store root",
	Long: `memstorectl runs maintenance operations directly against a memstore
store root: deduplicating memories, migrating legacy data, and taking
on-demand backups, all without a running memstored process.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to memstore.toml")
	rootCmd.PersistentFlags().StringVar(&storeRoot, "root", "", "override store.root")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if storeRoot != "" {
		cfg.Store.Root = storeRoot
	}
	return cfg, nil
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
