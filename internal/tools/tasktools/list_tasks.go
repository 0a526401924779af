package tasktools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/task"
)

type listTasksParams struct {
	Project string `json:"project,omitempty"`
	Status  string `json:"status,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// ListTasks implements list_tasks.
type ListTasks struct {
	store *task.Store
}

// NewListTasks creates the list_tasks tool.
func NewListTasks(store *task.Store) *ListTasks {
	return &ListTasks{store: store}
}

func (t *ListTasks) Name() string        { return "list_tasks" }
func (t *ListTasks) Description() string { return "List tasks, optionally filtered by project and status." }

func (t *ListTasks) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "project": {"type": "string"},
    "status": {"type": "string", "enum": ["todo", "in_progress", "done", "blocked"]},
    "limit": {"type": "integer"}
  }
}`)
}

func (t *ListTasks) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listTasksParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}

	list, err := t.store.List(p.Project, p.Status, p.Limit)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(map[string]any{"tasks": list, "count": len(list)})
}
