package memorytools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/breaker"
	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/safeguard"
)

type deduplicateParams struct {
	Preview bool `json:"preview,omitempty"`
}

// DeduplicateMemories implements deduplicate_memories. It is a bulk tool:
// the MCP server applies its per-call 30s deadline, the tool checks its
// own breaker, and it snapshots affected files before removing any of them.
type DeduplicateMemories struct {
	store  *memory.Store
	backup *safeguard.Backup
}

// NewDeduplicateMemories creates the deduplicate_memories tool.
func NewDeduplicateMemories(store *memory.Store, backup *safeguard.Backup) *DeduplicateMemories {
	return &DeduplicateMemories{store: store, backup: backup}
}

func (t *DeduplicateMemories) Name() string { return "deduplicate_memories" }
func (t *DeduplicateMemories) Description() string {
	return "Find memories sharing a front-matter id and remove all but the newest copy. preview=true reports candidates without modifying files."
}

func (t *DeduplicateMemories) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"preview": {"type": "boolean", "description": "Report candidates without deleting anything"}}
}`)
}

func (t *DeduplicateMemories) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p deduplicateParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}

	if !p.Preview {
		preview, err := t.store.Deduplicate(true)
		if err == nil && len(preview) > 0 {
			paths := make([]string, len(preview))
			for i, c := range preview {
				paths[i] = c.Path
			}
			t.backup.Snapshot("dedup", paths)
		}
	}

	removed, err := t.store.Deduplicate(p.Preview)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	br := breaker.New()
	if err := br.CheckItem(0); err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	for range removed {
		if err := br.CheckItem(0); err != nil {
			return mcp.JSONResult(map[string]any{
				"preview":         p.Preview,
				"candidate_count": len(removed),
				"candidates":      removed,
				"breaker_warning": err.Error(),
			})
		}
	}

	return mcp.JSONResult(map[string]any{
		"preview":         p.Preview,
		"candidate_count": len(removed),
		"candidates":      removed,
	})
}
