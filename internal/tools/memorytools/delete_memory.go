package memorytools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/service"
)

type deleteMemoryParams struct {
	ID string `json:"id"`
}

// DeleteMemory implements delete_memory. It routes through the service
// layer so inbound task connection references are cleaned up in the same
// logical operation, not left dangling.
type DeleteMemory struct {
	svc *service.Service
}

// NewDeleteMemory creates the delete_memory tool over svc.
func NewDeleteMemory(svc *service.Service) *DeleteMemory {
	return &DeleteMemory{svc: svc}
}

func (t *DeleteMemory) Name() string { return "delete_memory" }
func (t *DeleteMemory) Description() string {
	return "Delete a memory by id and remove it from every task that references it."
}

func (t *DeleteMemory) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"id": {"type": "string"}},
  "required": ["id"]
}`)
}

func (t *DeleteMemory) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p deleteMemoryParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	if err := t.svc.DeleteMemory(p.ID); err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(map[string]any{"deleted": p.ID})
}
