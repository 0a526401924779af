package enhancetools

import (
	"context"
	"encoding/json"

	"github.com/endlessblink/memstore/internal/enhance"
	"github.com/endlessblink/memstore/internal/mcp"
)

// CheckAIStatus implements check_ai_status: whether a remote enhancement
// endpoint is configured and reachable in principle.
type CheckAIStatus struct {
	enhancer *enhance.Remote
}

// NewCheckAIStatus creates the check_ai_status tool.
func NewCheckAIStatus(enhancer *enhance.Remote) *CheckAIStatus {
	return &CheckAIStatus{enhancer: enhancer}
}

func (t *CheckAIStatus) Name() string        { return "check_ai_status" }
func (t *CheckAIStatus) Description() string { return "Report whether remote AI enhancement is configured." }

func (t *CheckAIStatus) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *CheckAIStatus) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(map[string]any{
		"available": t.enhancer.Available(),
		"status":    t.enhancer.Status(),
	})
}
