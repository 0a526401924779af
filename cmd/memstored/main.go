// Command memstored runs the memstore MCP tool server and its paired
// HTTP+WebSocket dashboard API.
//
// It communicates tool calls over stdio using JSON-RPC 2.0 (MCP protocol)
// and serves a REST/WebSocket surface over the same record stores.
//
// Optional environment variables:
//
//	MEMSTORE_CONFIG             - path to a memstore.toml config file
//	MEMSTORE_STORE_ROOT         - override store.root
//	MEMSTORE_DEFAULT_PROJECT    - override store.default_project
//	MEMSTORE_HOST               - override transport.host
//	MEMSTORE_PORT               - override transport.port
//	MEMSTORE_CORS_ORIGINS       - override transport.cors_origins
//	MEMSTORE_LOG_LEVEL          - debug, info, warn, error (default: info)
//	MEMSTORE_ENHANCEMENT_ENDPOINT - remote inference endpoint for AI enhancement
//	MEMSTORE_ENHANCEMENT_MODEL    - model id passed to the enhancement endpoint
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/endlessblink/memstore/internal/config"
	"github.com/endlessblink/memstore/internal/daemon"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "memstored: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to memstore.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: daemon.ParseLogLevel(cfg.Log.Level),
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return daemon.Run(ctx, cfg, version, logger)
}
