package memorytools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
)

type getMemoryParams struct {
	ID string `json:"id"`
}

// GetMemory implements get_memory. A successful read also bumps the
// memory's access_count and last_accessed via Store.Touch.
type GetMemory struct {
	store *memory.Store
}

// NewGetMemory creates the get_memory tool over store.
func NewGetMemory(store *memory.Store) *GetMemory {
	return &GetMemory{store: store}
}

func (t *GetMemory) Name() string        { return "get_memory" }
func (t *GetMemory) Description() string { return "Retrieve a memory by id." }

func (t *GetMemory) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"id": {"type": "string"}},
  "required": ["id"]
}`)
}

func (t *GetMemory) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p getMemoryParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	m, err := t.store.Touch(p.ID)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(m)
}
