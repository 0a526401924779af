// Package memorytools implements the memory-facing MCP tools: add_memory,
// get_memory, list_memories, delete_memory, search_memories, and
// deduplicate_memories.
package memorytools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/model"
)

type addMemoryParams struct {
	Content  string   `json:"content"`
	Project  string   `json:"project,omitempty"`
	Category string   `json:"category,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// AddMemory implements add_memory.
type AddMemory struct {
	store          *memory.Store
	defaultProject string
}

// NewAddMemory creates the add_memory tool over store.
func NewAddMemory(store *memory.Store, defaultProject string) *AddMemory {
	return &AddMemory{store: store, defaultProject: defaultProject}
}

func (t *AddMemory) Name() string { return "add_memory" }

func (t *AddMemory) Description() string {
	return "Store a new memory. Content must be at least 10 characters after trimming and must not look like mock or placeholder data."
}

func (t *AddMemory) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "content": {"type": "string", "description": "The memory content, at least 10 characters after trimming"},
    "project": {"type": "string", "description": "Project tag; defaults to the server's default project"},
    "category": {"type": "string", "description": "e.g. personal, work, code, research, conversations, preferences, or free-form"},
    "priority": {"type": "string", "enum": ["low", "medium", "high"]},
    "tags": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["content"]
}`)
}

func (t *AddMemory) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p addMemoryParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.Project == "" {
		p.Project = t.defaultProject
	}

	m := &model.Memory{
		Content:  p.Content,
		Project:  p.Project,
		Category: p.Category,
		Priority: p.Priority,
		Tags:     p.Tags,
	}

	saved, err := t.store.Add(m)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(saved)
}
