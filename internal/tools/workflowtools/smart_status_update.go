// Package workflowtools implements the workflow-engine MCP tools:
// smart_status_update, validate_task_workflow, get_task_status_analytics,
// and get_automation_suggestions.
package workflowtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/service"
)

type smartStatusUpdateParams struct {
	ID             string `json:"id"`
	Update         string `json:"update"`
	ForceComplete  bool   `json:"force_complete,omitempty"`
	SkipValidation bool   `json:"skip_validation,omitempty"`
}

// SmartStatusUpdate implements smart_status_update: it parses a free-form
// status request, validates the resulting transition, and applies it.
type SmartStatusUpdate struct {
	svc *service.Service
}

// NewSmartStatusUpdate creates the smart_status_update tool.
func NewSmartStatusUpdate(svc *service.Service) *SmartStatusUpdate {
	return &SmartStatusUpdate{svc: svc}
}

func (t *SmartStatusUpdate) Name() string { return "smart_status_update" }
func (t *SmartStatusUpdate) Description() string {
	return "Update a task's status from a free-form description of what happened, validating the transition first."
}

func (t *SmartStatusUpdate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "update": {"type": "string", "description": "Free-form description, e.g. \"finished the migration\""},
    "force_complete": {"type": "boolean", "description": "Allow marking done with subtasks still open"},
    "skip_validation": {"type": "boolean", "description": "Allow marking done with unresolved error markers in referenced memories"}
  },
  "required": ["id", "update"]
}`)
}

func (t *SmartStatusUpdate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p smartStatusUpdateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" || p.Update == "" {
		return mcp.ErrorResult("id and update are required"), nil
	}

	task, intent, result, err := t.svc.SmartStatusUpdate(p.ID, p.Update, p.ForceComplete, p.SkipValidation)
	if err != nil {
		return mcp.JSONResult(map[string]any{
			"error":  err.Error(),
			"intent": intent,
			"result": result,
		})
	}
	return mcp.JSONResult(map[string]any{
		"task":   task,
		"intent": intent,
		"result": result,
	})
}
