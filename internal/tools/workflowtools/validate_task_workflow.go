package workflowtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/service"
)

type validateTaskWorkflowParams struct {
	ID             string `json:"id"`
	To             string `json:"to"`
	ForceComplete  bool   `json:"force_complete,omitempty"`
	SkipValidation bool   `json:"skip_validation,omitempty"`
}

// ValidateTaskWorkflow implements validate_task_workflow: it reports
// whether a proposed transition would be allowed, without applying it.
type ValidateTaskWorkflow struct {
	svc *service.Service
}

// NewValidateTaskWorkflow creates the validate_task_workflow tool.
func NewValidateTaskWorkflow(svc *service.Service) *ValidateTaskWorkflow {
	return &ValidateTaskWorkflow{svc: svc}
}

func (t *ValidateTaskWorkflow) Name() string { return "validate_task_workflow" }
func (t *ValidateTaskWorkflow) Description() string {
	return "Check whether a task can transition to a target status, without applying the change."
}

func (t *ValidateTaskWorkflow) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "to": {"type": "string", "enum": ["todo", "in_progress", "done", "blocked"]},
    "force_complete": {"type": "boolean"},
    "skip_validation": {"type": "boolean"}
  },
  "required": ["id", "to"]
}`)
}

func (t *ValidateTaskWorkflow) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p validateTaskWorkflowParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" || p.To == "" {
		return mcp.ErrorResult("id and to are required"), nil
	}

	task, err := t.svc.Tasks.Get(p.ID)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	result := t.svc.ValidateTransition(task, p.To, p.ForceComplete, p.SkipValidation)
	return mcp.JSONResult(result)
}
