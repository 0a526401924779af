// Package httpapi serves the REST + WebSocket dashboard surface: resources
// mirroring tool semantics under /api/, a generic /api/mcp-tools/<name>
// passthrough, and a WebSocket at /ws streaming Change Bus events. It
// applies the same safeguards as the tool surface by calling into the same
// stores and service layer, never a separate code path.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/endlessblink/memstore/internal/changebus"
	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/service"
	"github.com/endlessblink/memstore/internal/task"
)

// Server wires the dashboard's REST and WebSocket handlers over the same
// stores, service layer, and tool registry the stdio surface uses.
type Server struct {
	memories    *memory.Store
	tasks       *task.Store
	svc         *service.Service
	registry    *mcp.Registry
	bus         *changebus.Bus
	corsOrigins string
	logger      *slog.Logger
}

// New creates an httpapi.Server. corsOrigins is the raw value of
// transport.cors_origins ("*" or a comma-separated allowlist).
func New(memories *memory.Store, tasks *task.Store, svc *service.Service, registry *mcp.Registry, bus *changebus.Bus, corsOrigins string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		memories:    memories,
		tasks:       tasks,
		svc:         svc,
		registry:    registry,
		bus:         bus,
		corsOrigins: corsOrigins,
		logger:      logger,
	}
}

// Handler builds the full routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/memories", s.handleListMemories)
	mux.HandleFunc("POST /api/memories", s.handleCreateMemory)
	mux.HandleFunc("GET /api/memories/{id}", s.handleGetMemory)
	mux.HandleFunc("DELETE /api/memories/{id}", s.handleDeleteMemory)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	mux.HandleFunc("POST /api/mcp-tools/{name}", s.handleCallTool)

	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("GET /", s.handleDashboard)

	return s.withCORS(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleDashboard serves a minimal placeholder landing page; the dashboard
// itself is a separate static asset build this server does not own.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(`<!doctype html><html><head><title>memstore</title></head>` +
		`<body><h1>memstore</h1><p>REST API under /api, WebSocket at /ws.</p></body></html>`))
}
