package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endlessblink/memstore/internal/changebus"
	"github.com/endlessblink/memstore/internal/linker"
	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/service"
	"github.com/endlessblink/memstore/internal/store"
	"github.com/endlessblink/memstore/internal/task"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	engine := store.NewEngine(root)
	memories := memory.New(engine, nil)
	tasks := task.New(engine, nil)
	l := linker.New(memories, tasks)
	svc := service.New(memories, tasks, l, nil)
	bus, err := changebus.New(root, nil)
	require.NoError(t, err)
	return New(memories, tasks, svc, mcp.NewRegistry(), bus, "*", nil)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndGetMemory(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	body, _ := json.Marshal(createMemoryRequest{
		Content: "Always validate webhook signatures before processing",
		Project: "api",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/memories", bytes.NewReader(body))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id, ok := created["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/memories/"+id, nil)
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMemoryNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/memories/does-not-exist", nil)
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAndUpdateTask(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	body, _ := json.Marshal(createTaskRequest{Title: "Ship the dashboard", Project: "api"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(body))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created["id"].(string)

	status := "in_progress"
	patch, _ := json.Marshal(updateTaskRequest{Status: &status})
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/tasks/"+id, bytes.NewReader(patch))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "in_progress", updated["status"])
}

func TestCallUnknownTool(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/mcp-tools/does_not_exist", bytes.NewReader([]byte(`{}`)))
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSHeaderApplied(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
