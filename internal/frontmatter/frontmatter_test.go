package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFenced(t *testing.T) {
	content := []byte("---\nid: abc123\ntags:\n  - one\n  - two\n---\nHello world\n")
	doc, err := Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "abc123", doc.StringField("id"))
	assert.Equal(t, []string{"one", "two"}, doc.StringListField("tags"))
	assert.Equal(t, "Hello world\n", doc.Body)
}

func TestParseLegacy(t *testing.T) {
	content := []byte("<!-- id: legacy1 -->\n<!-- tags: one, two, three -->\nBody text\n")
	doc, err := Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "legacy1", doc.StringField("id"))
	assert.Equal(t, []string{"one", "two", "three"}, doc.StringListField("tags"))
	assert.Equal(t, "Body text\n", doc.Body)
}

func TestParseNoEnvelope(t *testing.T) {
	content := []byte("Just plain text, no envelope.\n")
	doc, err := Parse(content)
	require.NoError(t, err)
	assert.Empty(t, doc.Fields)
	assert.Equal(t, string(content), doc.Body)
}

func TestParseUnclosedFenced(t *testing.T) {
	_, err := Parse([]byte("---\nid: abc\nno closing fence"))
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	doc := &Document{
		Fields: map[string]any{
			"id":      "abc123",
			"tags":    []string{"alpha", "beta"},
			"project": "api",
		},
		Body: "Use exponential backoff on 429\n",
	}

	rendered, err := Render(doc)
	require.NoError(t, err)

	parsed, err := Parse(rendered)
	require.NoError(t, err)

	assert.Equal(t, doc.StringField("id"), parsed.StringField("id"))
	assert.Equal(t, doc.StringListField("tags"), parsed.StringListField("tags"))
	assert.Equal(t, doc.StringField("project"), parsed.StringField("project"))
	assert.Equal(t, doc.Body, parsed.Body)
}

func TestRenderAlwaysFenced(t *testing.T) {
	legacy := []byte("<!-- id: legacy1 -->\nBody\n")
	doc, err := Parse(legacy)
	require.NoError(t, err)

	rendered, err := Render(doc)
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "---\n")
}

func TestBareCommaStringTolerated(t *testing.T) {
	content := []byte("---\nid: x\nrelated_memories: m1, m2\n---\nbody\n")
	doc, err := Parse(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, doc.StringListField("related_memories"))
}
