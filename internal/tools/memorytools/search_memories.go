package memorytools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/endlessblink/memstore/internal/mcp"
	"github.com/endlessblink/memstore/internal/memory"
)

type searchMemoriesParams struct {
	Query   string `json:"query"`
	Project string `json:"project,omitempty"`
}

// SearchMemories implements search_memories: a case-insensitive substring
// match, with results additionally ordered by memory.Rank so the most
// relevant hits surface first even though Store.Search itself only filters.
type SearchMemories struct {
	store *memory.Store
	now   func() time.Time
}

// NewSearchMemories creates the search_memories tool over store.
func NewSearchMemories(store *memory.Store) *SearchMemories {
	return &SearchMemories{store: store, now: time.Now}
}

func (t *SearchMemories) Name() string { return "search_memories" }
func (t *SearchMemories) Description() string {
	return "Case-insensitive substring search over memory content, category, and tags, ranked by relevance."
}

func (t *SearchMemories) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {"type": "string"},
    "project": {"type": "string"}
  },
  "required": ["query"]
}`)
}

func (t *SearchMemories) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p searchMemoriesParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	results, err := t.store.Search(p.Query, p.Project)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	now := t.now()
	sort.SliceStable(results, func(i, j int) bool {
		return memory.Rank(results[i], p.Query, now) > memory.Rank(results[j], p.Query, now)
	})

	return mcp.JSONResult(map[string]any{"memories": results, "count": len(results)})
}
