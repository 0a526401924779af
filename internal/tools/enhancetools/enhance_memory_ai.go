package enhancetools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/enhance"
	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/model"
)

type enhanceMemoryAIParams struct {
	ID          string `json:"id"`
	ForceUpdate bool   `json:"force_update,omitempty"`
}

// EnhanceMemoryAI implements enhance_memory_ai: the same merge semantics as
// enhance_memory_metadata, but sourcing the suggestion from a configured
// remote inference endpoint instead of the rule-based heuristics.
type EnhanceMemoryAI struct {
	store    *memory.Store
	enhancer *enhance.Remote
}

// NewEnhanceMemoryAI creates the enhance_memory_ai tool.
func NewEnhanceMemoryAI(store *memory.Store, enhancer *enhance.Remote) *EnhanceMemoryAI {
	return &EnhanceMemoryAI{store: store, enhancer: enhancer}
}

func (t *EnhanceMemoryAI) Name() string { return "enhance_memory_ai" }
func (t *EnhanceMemoryAI) Description() string {
	return "Derive category, tags, and complexity for a memory via the configured remote inference endpoint and apply them."
}

func (t *EnhanceMemoryAI) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "force_update": {"type": "boolean"}
  },
  "required": ["id"]
}`)
}

func (t *EnhanceMemoryAI) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p enhanceMemoryAIParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}
	if !t.enhancer.Available() {
		return mcp.ErrorResult("no enhancement endpoint configured"), nil
	}

	m, err := t.store.Get(p.ID)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	suggestion, err := t.enhancer.Enhance(ctx, m)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	if !applySuggestion(m, suggestion, p.ForceUpdate) {
		return mcp.JSONResult(map[string]any{"memory": m, "applied": false})
	}

	updated, err := t.store.Update(p.ID, func(mm *model.Memory) {
		applySuggestion(mm, suggestion, p.ForceUpdate)
	})
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(map[string]any{"memory": updated, "applied": true, "suggestion": suggestion})
}
