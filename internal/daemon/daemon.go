// Package daemon wires the full memstore server — MCP stdio tool registry,
// HTTP/WebSocket dashboard API, change bus, and periodic backup scheduler —
// from a loaded config. It exists so cmd/memstored and memstorectl's serve
// subcommand share one startup path instead of duplicating the wiring.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/endlessblink/memstore/internal/changebus"
	"github.com/endlessblink/memstore/internal/config"
	"github.com/endlessblink/memstore/internal/enhance"
	"github.com/endlessblink/memstore/internal/httpapi"
	"github.com/endlessblink/memstore/internal/linker"
	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/safeguard"
	"github.com/endlessblink/memstore/internal/scheduler"
	"github.com/endlessblink/memstore/internal/service"
	"github.com/endlessblink/memstore/internal/store"
	"github.com/endlessblink/memstore/internal/task"
	"github.com/endlessblink/memstore/internal/tools/enhancetools"
	"github.com/endlessblink/memstore/internal/tools/memorytools"
	"github.com/endlessblink/memstore/internal/tools/ops"
	"github.com/endlessblink/memstore/internal/tools/tasktools"
	"github.com/endlessblink/memstore/internal/tools/workflowtools"
)

// Run starts the MCP stdio server and its paired HTTP/WebSocket API and
// blocks until ctx is cancelled (or the MCP stdio loop exits on EOF). The
// caller supplies cfg (already loaded and, if desired, env/flag-overridden)
// and the effective version string to report to clients.
func Run(ctx context.Context, cfg *config.Config, version string, logger *slog.Logger) error {
	logger.Info("starting memstored", "version", version, "store_root", cfg.Store.Root)

	if err := safeguard.EnsureLayout(cfg.Store.Root); err != nil {
		return fmt.Errorf("preparing store root: %w", err)
	}

	if legacy, err := safeguard.ReadLegacySettings(cfg.Store.Root); err != nil {
		logger.Warn("failed to read legacy settings.json", "error", err)
	} else if legacy != nil {
		ApplyLegacySettings(cfg, legacy)
	}

	engine := store.NewEngine(cfg.Store.Root)
	memories := memory.New(engine, logger)
	tasks := task.New(engine, logger)
	l := linker.New(memories, tasks)
	svc := service.New(memories, tasks, l, logger)
	backup := safeguard.NewBackup(cfg.Store.Root, logger)

	if err := safeguard.MigrateOnce(cfg.Store.Root, memories, tasks, logger); err != nil {
		logger.Warn("legacy migration did not complete cleanly", "error", err)
	}

	ruleEnhancer := enhance.NewRuleBased()
	remoteEnhancer := enhance.NewRemote(cfg.Enhancement.Endpoint, cfg.Enhancement.Model)

	registry := mcp.NewRegistry()
	registry.Register(memorytools.NewAddMemory(memories, cfg.Store.DefaultProject))
	registry.Register(memorytools.NewGetMemory(memories))
	registry.Register(memorytools.NewListMemories(memories))
	registry.Register(memorytools.NewDeleteMemory(svc))
	registry.Register(memorytools.NewSearchMemories(memories))
	registry.Register(memorytools.NewDeduplicateMemories(memories, backup))

	registry.Register(tasktools.NewCreateTask(tasks, l, cfg.Store.DefaultProject))
	registry.Register(tasktools.NewUpdateTask(tasks))
	registry.Register(tasktools.NewListTasks(tasks))
	registry.Register(tasktools.NewGetTaskContext(svc))
	registry.Register(tasktools.NewDeleteTask(svc))

	registry.Register(workflowtools.NewSmartStatusUpdate(svc))
	registry.Register(workflowtools.NewValidateTaskWorkflow(svc))
	registry.Register(workflowtools.NewGetTaskStatusAnalytics(tasks, time.Now))
	registry.Register(workflowtools.NewGetAutomationSuggestions(tasks))

	registry.Register(enhancetools.NewEnhanceMemoryMetadata(memories, ruleEnhancer))
	registry.Register(enhancetools.NewBatchEnhanceMemories(memories, ruleEnhancer))
	registry.Register(enhancetools.NewEnhanceMemoryAI(memories, remoteEnhancer))
	registry.Register(enhancetools.NewBatchEnhanceMemoriesAI(memories, remoteEnhancer))
	registry.Register(enhancetools.NewCheckAIStatus(remoteEnhancer))

	registry.Register(ops.NewGenerateDropoff(svc))
	registry.Register(ops.NewTestTool())

	bus, err := changebus.New(cfg.Store.Root, logger)
	if err != nil {
		return fmt.Errorf("creating change bus: %w", err)
	}
	go func() {
		if err := bus.Run(ctx); err != nil {
			logger.Error("change bus stopped", "error", err)
		}
	}()

	sched := scheduler.NewScheduler(logger)
	sched.AddJob(NewBackupJob(backup, cfg.Store.Root), 6*time.Hour)
	sched.Start(ctx)
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:    cfg.Transport.Host + ":" + cfg.Transport.Port,
		Handler: httpapi.New(memories, tasks, svc, registry, bus, cfg.Transport.CORSOrigins, logger).Handler(),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("http api listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
		}
	}()

	mcpServer := mcp.NewServer(registry, mcp.ServerInfo{Name: cfg.Server.Name, Version: version}, logger)
	runErr := mcpServer.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server did not shut down cleanly", "error", err)
	}
	wg.Wait()

	return runErr
}

// ApplyLegacySettings fills in cfg fields left unset by flags/env/toml from
// a legacy data/settings.json, without overriding anything already set.
func ApplyLegacySettings(cfg *config.Config, legacy *safeguard.LegacySettings) {
	if cfg.Store.Root == "" && legacy.StoreRoot != "" {
		cfg.Store.Root = legacy.StoreRoot
	}
	if cfg.Store.DefaultProject == "" && legacy.DefaultProject != "" {
		cfg.Store.DefaultProject = legacy.DefaultProject
	}
	if cfg.Enhancement.Endpoint == "" && legacy.EnhancementURL != "" {
		cfg.Enhancement.Endpoint = legacy.EnhancementURL
	}
	if cfg.Enhancement.Model == "" && legacy.EnhancementModel != "" {
		cfg.Enhancement.Model = legacy.EnhancementModel
	}
}

// ParseLogLevel maps the config/CLI log level string to a slog.Level,
// defaulting to info on anything unrecognized.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// backupJob is a scheduler.Job that opportunistically snapshots the whole
// store tree, a coarser-grained safety net than the per-bulk-operation
// snapshots the tool handlers take themselves.
type backupJob struct {
	backup *safeguard.Backup
	root   string
}

// NewBackupJob creates the periodic whole-tree backup job registered with
// the scheduler at startup.
func NewBackupJob(backup *safeguard.Backup, root string) *backupJob {
	return &backupJob{backup: backup, root: root}
}

func (j *backupJob) Name() string { return "periodic-backup" }

func (j *backupJob) Run(ctx context.Context) error {
	files := walkMarkdown(filepath.Join(j.root, "memories"))
	files = append(files, walkMarkdown(filepath.Join(j.root, "tasks"))...)
	return j.backup.Snapshot("periodic", files)
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
