// Package ops implements the miscellaneous operational MCP tools:
// generate_dropoff and test_tool.
package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/service"
)

type generateDropoffParams struct {
	Project string `json:"project"`
}

// GenerateDropoff implements generate_dropoff: a human-readable handoff
// summary of in-progress and blocked work plus recent memories for a
// project.
type GenerateDropoff struct {
	svc *service.Service
}

// NewGenerateDropoff creates the generate_dropoff tool.
func NewGenerateDropoff(svc *service.Service) *GenerateDropoff {
	return &GenerateDropoff{svc: svc}
}

func (t *GenerateDropoff) Name() string { return "generate_dropoff" }
func (t *GenerateDropoff) Description() string {
	return "Render a handoff summary of in-progress work, blocked tasks, and recent memories for a project."
}

func (t *GenerateDropoff) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"project": {"type": "string"}},
  "required": ["project"]
}`)
}

func (t *GenerateDropoff) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p generateDropoffParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if p.Project == "" {
		return mcp.ErrorResult("project is required"), nil
	}

	out, err := t.svc.GenerateDropoff(p.Project)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return &mcp.ToolsCallResult{Content: []mcp.ContentBlock{mcp.TextContent(out)}}, nil
}
