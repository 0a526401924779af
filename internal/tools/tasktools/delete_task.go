package tasktools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/service"
)

type deleteTaskParams struct {
	ID string `json:"id"`
}

// DeleteTask implements delete_task. It routes through the service layer so
// connected memories are unlinked and any subtasks cascade, rather than
// leaving dangling references.
type DeleteTask struct {
	svc *service.Service
}

// NewDeleteTask creates the delete_task tool over svc.
func NewDeleteTask(svc *service.Service) *DeleteTask {
	return &DeleteTask{svc: svc}
}

func (t *DeleteTask) Name() string { return "delete_task" }
func (t *DeleteTask) Description() string {
	return "Delete a task and its subtasks, unlinking it from every connected memory."
}

func (t *DeleteTask) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"id": {"type": "string"}},
  "required": ["id"]
}`)
}

func (t *DeleteTask) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p deleteTaskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	if err := t.svc.DeleteTask(p.ID); err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(map[string]any{"deleted": p.ID})
}
