package tasktools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/task"
)

// updateTaskParams uses pointers so an absent field leaves the existing
// value untouched — update(id, {}) must equal get(id).
type updateTaskParams struct {
	ID          string    `json:"id"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// UpdateTask implements update_task for direct field edits. Status
// transitions driven by natural language go through smart_status_update
// instead, which runs workflow validation; this tool applies a status
// change as given, without NL parsing.
type UpdateTask struct {
	store *task.Store
}

// NewUpdateTask creates the update_task tool.
func NewUpdateTask(store *task.Store) *UpdateTask {
	return &UpdateTask{store: store}
}

func (t *UpdateTask) Name() string { return "update_task" }
func (t *UpdateTask) Description() string {
	return "Update editable fields of a task. Only supplied fields change; id, serial, and created timestamp are preserved."
}

func (t *UpdateTask) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "title": {"type": "string"},
    "description": {"type": "string"},
    "category": {"type": "string"},
    "priority": {"type": "string", "enum": ["low", "medium", "high", "urgent"]},
    "status": {"type": "string", "enum": ["todo", "in_progress", "done", "blocked"]},
    "tags": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["id"]
}`)
}

func (t *UpdateTask) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateTaskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.ID == "" {
		return mcp.ErrorResult("id is required"), nil
	}

	saved, err := t.store.Update(p.ID, func(task *model.Task) {
		if p.Title != nil {
			task.Title = *p.Title
		}
		if p.Description != nil {
			task.Description = *p.Description
		}
		if p.Category != nil {
			task.Category = *p.Category
		}
		if p.Priority != nil {
			task.Priority = *p.Priority
		}
		if p.Status != nil {
			task.Status = *p.Status
		}
		if p.Tags != nil {
			task.Tags = *p.Tags
		}
	})
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(saved)
}
