package memorytools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
)

type listMemoriesParams struct {
	Project string `json:"project,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// ListMemories implements list_memories.
type ListMemories struct {
	store *memory.Store
}

// NewListMemories creates the list_memories tool over store.
func NewListMemories(store *memory.Store) *ListMemories {
	return &ListMemories{store: store}
}

func (t *ListMemories) Name() string { return "list_memories" }
func (t *ListMemories) Description() string {
	return "List memories, optionally scoped to a project, sorted by timestamp descending."
}

func (t *ListMemories) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "project": {"type": "string", "description": "Leave empty to list across every project"},
    "limit": {"type": "integer", "description": "Cap the number of results; 0 means unlimited"}
  }
}`)
}

func (t *ListMemories) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listMemoriesParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}

	list, err := t.store.List(p.Project, p.Limit)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(map[string]any{"memories": list, "count": len(list)})
}
