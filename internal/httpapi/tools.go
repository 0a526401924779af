package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// toolCallTimeout mirrors the stdio surface's per-call deadline so the two
// surfaces behave identically under a stuck tool.
const toolCallTimeout = 30 * time.Second

// handleCallTool dispatches an arbitrary registered MCP tool by name,
// giving the dashboard access to the same 22 tools the stdio surface
// exposes without a bespoke REST handler per tool.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	tool := s.registry.Get(name)
	if tool == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "tool not found: " + name})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "reading request body"})
		return
	}
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}

	ctx, cancel := context.WithTimeout(r.Context(), toolCallTimeout)
	defer cancel()

	result, err := tool.Execute(ctx, body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if result.IsError {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}
