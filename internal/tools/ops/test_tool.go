package ops

import (
	"context"
	"encoding/json"

	"github.com/endlessblink/memstore/internal/mcp"
)

type testToolParams struct {
	Echo string `json:"echo,omitempty"`
}

// TestTool implements test_tool: a trivial diagnostic that echoes its input
// back, for verifying a client's transport and dispatch wiring.
type TestTool struct{}

// NewTestTool creates the test_tool tool.
func NewTestTool() *TestTool { return &TestTool{} }

func (t *TestTool) Name() string        { return "test_tool" }
func (t *TestTool) Description() string { return "Echo the given input back, to verify the tool transport is working." }

func (t *TestTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"echo": {"type": "string"}}
}`)
}

func (t *TestTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p testToolParams
	if len(params) > 0 {
		json.Unmarshal(params, &p)
	}
	return mcp.JSONResult(map[string]any{"ok": true, "echo": p.Echo})
}
