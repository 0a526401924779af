package workflowtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/task"
	"github.com/endlessblink/memstore/internal/workflow"
)

type getAutomationSuggestionsParams struct {
	ID string `json:"id"`
}

// GetAutomationSuggestions implements get_automation_suggestions: the
// task's current status and the valid next statuses, so a caller can
// present an operator with concrete next actions. It does not include the
// NL phrasing that would trigger each status.
type GetAutomationSuggestions struct {
	store *task.Store
}

// NewGetAutomationSuggestions creates the get_automation_suggestions tool.
func NewGetAutomationSuggestions(store *task.Store) *GetAutomationSuggestions {
	return &GetAutomationSuggestions{store: store}
}

func (t *GetAutomationSuggestions) Name() string { return "get_automation_suggestions" }
func (t *GetAutomationSuggestions) Description() string {
	return "List the statuses a task could validly move to next."
}

func (t *GetAutomationSuggestions) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"id": {"type": "string"}},
  "required": ["id"]
}`)
}

func (t *GetAutomationSuggestions) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p getAutomationSuggestionsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	found, err := t.store.Get(p.ID)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	next := workflow.AllowedFrom(found.Status)
	return mcp.JSONResult(map[string]any{
		"current_status": found.Status,
		"allowed_next":    next,
	})
}
