package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	engine := store.NewEngine(t.TempDir())
	return New(engine, nil)
}

func TestAddAndGet(t *testing.T) {
	s := newTestStore(t)

	m, err := s.Add(&model.Memory{
		Content: "Use exponential backoff on 429",
		Project: "api",
		Tags:    []string{"rate-limit"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, model.StatusActive, m.Status)

	got, err := s.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Content, got.Content)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Timestamp.Unix(), got.Timestamp.Unix())
}

func TestAddRejectsShortContent(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(&model.Memory{Content: "too short", Project: "api"})
	require.Error(t, err)
}

func TestAddRejectsMockData(t *testing.T) {
	s := newTestStore(t)
	cases := []*model.Memory{
		{Content: "this is mock-123 data for testing purposes here", Project: "api"},
		{Content: "a perfectly normal memory about something", Project: "api", Tags: []string{"PLACEHOLDER"}},
		{Content: "Lorem Ipsum dolor sit amet consectetur", Project: "api"},
	}
	for _, c := range cases {
		_, err := s.Add(c)
		require.Error(t, err, c.Content)
	}
}

func TestUpdatePreservesIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Add(&model.Memory{Content: "Original content for this memory record", Project: "api"})
	require.NoError(t, err)

	updated, err := s.Update(m.ID, func(rec *model.Memory) {
		rec.Content = "Updated content for this memory record"
	})
	require.NoError(t, err)
	assert.Equal(t, m.ID, updated.ID)
	assert.Equal(t, m.Timestamp.Unix(), updated.Timestamp.Unix())
	assert.Equal(t, "Updated content for this memory record", updated.Content)
}

func TestUpdateNoOpEqualsGet(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Add(&model.Memory{Content: "Stable content that never changes", Project: "api"})
	require.NoError(t, err)

	noOp, err := s.Update(m.ID, func(*model.Memory) {})
	require.NoError(t, err)

	got, err := s.Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Content, noOp.Content)
	assert.Equal(t, got.AccessCount, noOp.AccessCount)
}

func TestDeleteThenDeleteAgainIsNotFound(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Add(&model.Memory{Content: "Memory destined for deletion soon", Project: "api"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(m.ID))
	err = s.Delete(m.ID)
	require.Error(t, err)
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(&model.Memory{Content: "Use EXPONENTIAL backoff for retries", Project: "api"})
	require.NoError(t, err)

	results, err := s.Search("exponential", "")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestListSortedByTimestampDescending(t *testing.T) {
	s := newTestStore(t)
	s.now = fixedClock(t, 1)
	_, err := s.Add(&model.Memory{Content: "First memory created earliest of all", Project: "api"})
	require.NoError(t, err)

	s.now = fixedClock(t, 2)
	_, err = s.Add(&model.Memory{Content: "Second memory created latest of all", Project: "api"})
	require.NoError(t, err)

	list, err := s.List("api", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second memory created latest of all", list[0].Content)
}

func TestDeduplicatePreviewVsApply(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Add(&model.Memory{Content: "Memory that will be duplicated on disk", Project: "api"})
	require.NoError(t, err)

	// simulate two extra duplicate files sharing the same front-matter id
	doc := toDocument(m)
	data, err := renderDoc(doc)
	require.NoError(t, err)
	writeDup(t, strings.TrimSuffix(m.Path, ".md")+"-dup1.md", data)
	writeDup(t, strings.TrimSuffix(m.Path, ".md")+"-dup2.md", data)

	preview, err := s.Deduplicate(true)
	require.NoError(t, err)
	assert.Len(t, preview, 2)

	all, err := s.List("api", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3) // nothing removed yet

	applied, err := s.Deduplicate(false)
	require.NoError(t, err)
	assert.Len(t, applied, 2)

	all, err = s.List("api", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
