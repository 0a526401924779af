package tasktools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/service"
)

type getTaskContextParams struct {
	ID string `json:"id"`
}

// GetTaskContext implements get_task_context: a task plus its parent,
// subtasks, and connected memories in one call.
type GetTaskContext struct {
	svc *service.Service
}

// NewGetTaskContext creates the get_task_context tool.
func NewGetTaskContext(svc *service.Service) *GetTaskContext {
	return &GetTaskContext{svc: svc}
}

func (t *GetTaskContext) Name() string { return "get_task_context" }
func (t *GetTaskContext) Description() string {
	return "Load a task together with its parent, subtasks, and connected memories."
}

func (t *GetTaskContext) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"id": {"type": "string"}},
  "required": ["id"]
}`)
}

func (t *GetTaskContext) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p getTaskContextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	ctxResult, err := t.svc.GetTaskContext(p.ID)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(ctxResult)
}
