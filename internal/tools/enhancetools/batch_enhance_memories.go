package enhancetools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/breaker"
	"github.com/endlessblink/memstore/internal/enhance"
	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/model"
)

type batchEnhanceMemoriesParams struct {
	Project     string `json:"project,omitempty"`
	ForceUpdate bool   `json:"force_update,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// BatchEnhanceMemories implements batch_enhance_memories: the rule-based
// enhancer applied across every memory in a project (or the whole store),
// skipping memories that already carry category/tags/complexity unless
// force_update is set. It is a bulk tool that checks its own breaker for
// every memory it processes.
type BatchEnhanceMemories struct {
	store    *memory.Store
	enhancer *enhance.RuleBased
}

// NewBatchEnhanceMemories creates the batch_enhance_memories tool.
func NewBatchEnhanceMemories(store *memory.Store, enhancer *enhance.RuleBased) *BatchEnhanceMemories {
	return &BatchEnhanceMemories{store: store, enhancer: enhancer}
}

func (t *BatchEnhanceMemories) Name() string { return "batch_enhance_memories" }
func (t *BatchEnhanceMemories) Description() string {
	return "Apply rule-based metadata enhancement across every memory in a project, skipping already-tagged memories unless force_update is set."
}

func (t *BatchEnhanceMemories) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "project": {"type": "string"},
    "force_update": {"type": "boolean"},
    "limit": {"type": "integer"}
  }
}`)
}

func (t *BatchEnhanceMemories) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p batchEnhanceMemoriesParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}

	list, err := t.store.List(p.Project, p.Limit)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	br := breaker.New()
	var enhanced, skipped int
	var errs []string
	for _, m := range list {
		if ctx.Err() != nil {
			break
		}
		if err := br.CheckItem(len(m.Content)); err != nil {
			errs = append(errs, err.Error())
			break
		}
		suggestion, err := t.enhancer.Enhance(ctx, m)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", m.ID, err))
			continue
		}
		if !applySuggestion(m, suggestion, p.ForceUpdate) {
			skipped++
			continue
		}
		if _, err := t.store.Update(m.ID, func(mm *model.Memory) {
			applySuggestion(mm, suggestion, p.ForceUpdate)
		}); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", m.ID, err))
			continue
		}
		enhanced++
	}

	return mcp.JSONResult(map[string]any{
		"total":    len(list),
		"enhanced": enhanced,
		"skipped":  skipped,
		"errors":   errs,
	})
}
