// Package enhancetools implements the metadata-enhancement MCP tools:
// enhance_memory_metadata, batch_enhance_memories, enhance_memory_ai,
// batch_enhance_memories_ai, and check_ai_status.
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

type enhanceMemoryMetadataParams struct {
	ID          string `json:"id"`
	ForceUpdate bool   `json:"force_update,omitempty"`
}

// EnhanceMemoryMetadata implements enhance_memory_metadata: it runs the
// deterministic rule-based enhancer over one memory and applies the
// suggestion, skipping fields that already carry a value unless
// force_update is set.
type EnhanceMemoryMetadata struct {
	store    *memory.Store
	enhancer *enhance.RuleBased
}

// NewEnhanceMemoryMetadata creates the enhance_memory_metadata tool.
func NewEnhanceMemoryMetadata(store *memory.Store, enhancer *enhance.RuleBased) *EnhanceMemoryMetadata {
	return &EnhanceMemoryMetadata{store: store, enhancer: enhancer}
}

func (t *EnhanceMemoryMetadata) Name() string { return "enhance_memory_metadata" }
func (t *EnhanceMemoryMetadata) Description() string {
	return "Derive category, tags, and complexity for a memory from its content and apply them. force_update overwrites existing values."
}

func (t *EnhanceMemoryMetadata) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "force_update": {"type": "boolean"}
  },
  "required": ["id"]
}`)
}

func (t *EnhanceMemoryMetadata) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p enhanceMemoryMetadataParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	m, err := t.store.Get(p.ID)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	suggestion, err := t.enhancer.Enhance(ctx, m)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	applied := applySuggestion(m, suggestion, p.ForceUpdate)
	if !applied {
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

// applySuggestion merges s into m, skipping fields m already has unless
// force is set. It reports whether any field would change so callers can
// skip a write entirely when nothing does.
func applySuggestion(m *model.Memory, s enhance.Suggestion, force bool) bool {
	changed := false
	if (force || m.Category == "") && s.Category != "" && m.Category != s.Category {
		m.Category = s.Category
		changed = true
	}
	if (force || len(m.Tags) == 0) && len(s.Tags) > 0 {
		m.Tags = s.Tags
		changed = true
	}
	if (force || m.Complexity == 0) && s.Complexity != 0 && m.Complexity != s.Complexity {
		m.Complexity = s.Complexity
		changed = true
	}
	if (force || !enhance.HasDisplayTags(m.Tags)) && (s.Title != "" || s.Summary != "") {
		m.Tags = enhance.MergeDisplayTags(m.Tags, s.Title, s.Summary)
		changed = true
	}
	return changed
}
