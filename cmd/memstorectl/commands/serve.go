package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/endlessblink/memstore/internal/daemon"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the memstored MCP server and dashboard API in this process",
	Long: `serve runs the same MCP stdio server and HTTP/WebSocket dashboard
API as the standalone memstored binary, letting a single memstorectl
binary double as the daemon.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger()
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return daemon.Run(ctx, cfg, cfg.Server.Version, log)
}
