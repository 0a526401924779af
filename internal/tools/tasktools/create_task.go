// Package tasktools implements the task-facing MCP tools: create_task,
// update_task, list_tasks, get_task_context, and delete_task.
package tasktools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/linker"
	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/task"
)

type createTaskParams struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Project     string   `json:"project,omitempty"`
	Category    string   `json:"category,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	ParentTask  string   `json:"parent_task,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	AutoLink    bool     `json:"auto_link,omitempty"`
}

// CreateTask implements create_task. With auto_link set, the Auto-Linker
// scores and connects candidate memories immediately after creation.
type CreateTask struct {
	store          *task.Store
	linker         *linker.Linker
	defaultProject string
}

// NewCreateTask creates the create_task tool.
func NewCreateTask(store *task.Store, l *linker.Linker, defaultProject string) *CreateTask {
	return &CreateTask{store: store, linker: l, defaultProject: defaultProject}
}

func (t *CreateTask) Name() string { return "create_task" }
func (t *CreateTask) Description() string {
	return "Create a task. Set auto_link=true to score and connect candidate memories from the same project immediately."
}

func (t *CreateTask) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "description": {"type": "string"},
    "project": {"type": "string"},
    "category": {"type": "string"},
    "priority": {"type": "string", "enum": ["low", "medium", "high", "urgent"]},
    "parent_task": {"type": "string", "description": "Existing task id this task is a subtask of"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "auto_link": {"type": "boolean", "description": "Score and connect candidate memories on creation"}
  },
  "required": ["title", "project"]
}`)
}

func (t *CreateTask) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p createTaskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.Project == "" {
		p.Project = t.defaultProject
	}

	saved, err := t.store.Add(&model.Task{
		Title:       p.Title,
		Description: p.Description,
		Project:     p.Project,
		Category:    p.Category,
		Priority:    p.Priority,
		ParentTask:  p.ParentTask,
		Tags:        p.Tags,
	})
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	var linkScores []linker.Score
	if p.AutoLink {
		linkScores, err = t.linker.AutoLink(saved.ID)
		if err != nil {
			return mcp.JSONResult(map[string]any{
				"task":          saved,
				"auto_link_err": err.Error(),
			})
		}
		saved, err = t.store.Get(saved.ID)
		if err != nil {
			return mcp.ErrorResult(err.Error()), nil
		}
	}

	return mcp.JSONResult(map[string]any{"task": saved, "linked_memories": len(linkScores)})
}
