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

type batchEnhanceMemoriesAIParams struct {
	Project     string `json:"project,omitempty"`
	ForceUpdate bool   `json:"force_update,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// BatchEnhanceMemoriesAI implements batch_enhance_memories_ai. Remote's own
// semaphore bounds concurrent calls to the inference endpoint; this tool
// still issues them sequentially since bulk tools already run under the
// breaker's own deadline.
type BatchEnhanceMemoriesAI struct {
	store    *memory.Store
	enhancer *enhance.Remote
}

// NewBatchEnhanceMemoriesAI creates the batch_enhance_memories_ai tool.
func NewBatchEnhanceMemoriesAI(store *memory.Store, enhancer *enhance.Remote) *BatchEnhanceMemoriesAI {
	return &BatchEnhanceMemoriesAI{store: store, enhancer: enhancer}
}

func (t *BatchEnhanceMemoriesAI) Name() string { return "batch_enhance_memories_ai" }
func (t *BatchEnhanceMemoriesAI) Description() string {
	return "Apply remote AI metadata enhancement across every memory in a project via the configured inference endpoint."
}

func (t *BatchEnhanceMemoriesAI) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "project": {"type": "string"},
    "force_update": {"type": "boolean"},
    "limit": {"type": "integer"}
  }
}`)
}

func (t *BatchEnhanceMemoriesAI) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p batchEnhanceMemoriesAIParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}
	if !t.enhancer.Available() {
		return mcp.ErrorResult("no enhancement endpoint configured"), nil
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
