package enhance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endlessblink/memstore/internal/model"
)

func TestRuleBasedDerivesCodeCategory(t *testing.T) {
	r := NewRuleBased()
	s, err := r.Enhance(context.Background(), &model.Memory{
		Content: "The new API endpoint returns a 500 when the func panics on nil input",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCode, s.Category)
}

func TestRuleBasedRespectsExistingCategory(t *testing.T) {
	r := NewRuleBased()
	s, err := r.Enhance(context.Background(), &model.Memory{
		Content:  "some generic note",
		Category: model.CategoryWork,
	})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryWork, s.Category)
}

func TestRuleBasedComplexityScalesWithCodeBlocks(t *testing.T) {
	r := NewRuleBased()
	s, err := r.Enhance(context.Background(), &model.Memory{Content: "```go\nfunc main() {}\n```" + string(make([]byte, 600))})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Complexity)
}

func TestRemoteEnhanceCallsEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"category":"code","tags":["retry"],"complexity":3,"summary":"fixed retries"}`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, "test-model")
	s, err := r.Enhance(context.Background(), &model.Memory{Content: "fix the retry logic"})
	require.NoError(t, err)
	assert.Equal(t, "code", s.Category)
	assert.Equal(t, 3, s.Complexity)
}

func TestRemoteEnhanceRequiresEndpoint(t *testing.T) {
	r := NewRemote("", "")
	_, err := r.Enhance(context.Background(), &model.Memory{Content: "x"})
	require.Error(t, err)
}

func TestRuleBasedDerivesTitleFromHeading(t *testing.T) {
	r := NewRuleBased()
	s, err := r.Enhance(context.Background(), &model.Memory{Content: "# Rate limit backoff\n\nUse exponential backoff on 429."})
	require.NoError(t, err)
	assert.Equal(t, "Rate limit backoff", s.Title)
	assert.LessOrEqual(t, len([]rune(s.Title)), MaxTitleLen)
}

func TestRuleBasedDerivesTitleFromFirstSentence(t *testing.T) {
	r := NewRuleBased()
	s, err := r.Enhance(context.Background(), &model.Memory{Content: "use exponential backoff on 429. retry after jitter."})
	require.NoError(t, err)
	assert.Equal(t, "Use exponential backoff on 429.", s.Title)
}

func TestRuleBasedSummaryNeverExceedsCap(t *testing.T) {
	r := NewRuleBased()
	long := ""
	for i := 0; i < 30; i++ {
		long += "This is a reasonably long sentence about rate limiting. "
	}
	s, err := r.Enhance(context.Background(), &model.Memory{Content: long})
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(s.Summary)), MaxSummaryLen)
	assert.NotEmpty(t, s.Summary)
}

func TestMergeDisplayTagsReplacesExisting(t *testing.T) {
	tags := []string{"api", "title:old title", "summary:old summary"}
	merged := MergeDisplayTags(tags, "New title", "New summary")
	assert.Contains(t, merged, "api")
	assert.Contains(t, merged, "title:New title")
	assert.Contains(t, merged, "summary:New summary")
	assert.NotContains(t, merged, "title:old title")
}

func TestHasDisplayTagsRequiresBoth(t *testing.T) {
	assert.False(t, HasDisplayTags([]string{"title:x"}))
	assert.False(t, HasDisplayTags([]string{"summary:y"}))
	assert.True(t, HasDisplayTags([]string{"title:x", "summary:y"}))
}
