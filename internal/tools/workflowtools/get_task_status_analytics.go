package workflowtools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/task"
	"github.com/endlessblink/memstore/internal/workflow"
)

type getTaskStatusAnalyticsParams struct {
	Project string `json:"project,omitempty"`
	Range   string `json:"range,omitempty"`
}

// GetTaskStatusAnalytics implements get_task_status_analytics: backlog
// age percentiles, staleness and attention counts, throughput, and focus
// score over a project's tasks.
type GetTaskStatusAnalytics struct {
	store *task.Store
	now   func() time.Time
}

// NewGetTaskStatusAnalytics creates the get_task_status_analytics tool.
func NewGetTaskStatusAnalytics(store *task.Store, now func() time.Time) *GetTaskStatusAnalytics {
	if now == nil {
		now = time.Now
	}
	return &GetTaskStatusAnalytics{store: store, now: now}
}

func (t *GetTaskStatusAnalytics) Name() string { return "get_task_status_analytics" }
func (t *GetTaskStatusAnalytics) Description() string {
	return "Compute backlog age, staleness, throughput, and focus metrics for a project's tasks over a time range."
}

func (t *GetTaskStatusAnalytics) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "project": {"type": "string"},
    "range": {"type": "string", "enum": ["day", "week", "month", "quarter"], "default": "week"}
  }
}`)
}

func (t *GetTaskStatusAnalytics) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p getTaskStatusAnalyticsParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}

	rangeKind := workflow.RangeKind(p.Range)
	if rangeKind == "" {
		rangeKind = workflow.RangeWeek
	}

	tasks, err := t.store.List(p.Project, "", 0)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	analytics := workflow.Compute(tasks, rangeKind, t.now())
	return mcp.JSONResult(analytics)
}
