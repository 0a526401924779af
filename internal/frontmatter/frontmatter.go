// Package frontmatter parses and serializes markdown records with typed
// front matter. It reads two historical envelope shapes — a fenced
// YAML block and a legacy HTML-comment block — and always writes the fenced
// form.
package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Document is the parsed result of a record file: a typed key/value mapping
// plus the remaining body text.
type Document struct {
	Fields map[string]any
	Body   string
}

// legacyCommentLine matches "<!-- key: value -->" lines from the historical
// HTML-comment envelope.
var legacyCommentLine = regexp.MustCompile(`(?m)^<!--\s*([A-Za-z0-9_]+):\s*(.*?)\s*-->\s*$`)

// Parse decodes a record file into a Document. A file with no recognizable
// envelope yields a Document with an empty Fields map and the whole content
// as Body — callers treat that as an active memory with auto-generated
// metadata.
func Parse(content []byte) (*Document, error) {
	str := string(content)

	if strings.HasPrefix(str, delimiter) {
		return parseFenced(str)
	}
	if legacyCommentLine.MatchString(str) {
		return parseLegacy(str), nil
	}
	return &Document{Fields: map[string]any{}, Body: str}, nil
}

func parseFenced(str string) (*Document, error) {
	rest := str[len(delimiter):]
	idx := strings.Index(rest, "\n"+delimiter)
	if idx == -1 {
		return nil, fmt.Errorf("frontmatter: unclosed fenced block")
	}

	fmYAML := rest[:idx]
	body := strings.TrimPrefix(rest[idx+len("\n"+delimiter):], "\n")

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(fmYAML), &raw); err != nil {
		return nil, fmt.Errorf("frontmatter: parsing yaml: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	normalize(raw)
	return &Document{Fields: raw, Body: body}, nil
}

func parseLegacy(str string) *Document {
	fields := map[string]any{}
	matches := legacyCommentLine.FindAllStringSubmatch(str, -1)
	for _, m := range matches {
		key, value := m[1], m[2]
		fields[key] = decodeLegacyValue(value)
	}
	body := legacyCommentLine.ReplaceAllString(str, "")
	body = strings.TrimLeft(body, "\n")
	normalize(fields)
	return &Document{Fields: fields, Body: body}
}

// decodeLegacyValue turns a legacy scalar into a list when it looks like
// "[ a, b ]"; otherwise it is left as-is (a bare comma-separated string is
// split later by normalize, for tags and related_memories only).
func decodeLegacyValue(value string) any {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
		return splitList(inner)
	}
	return trimmed
}

func splitList(inner string) []string {
	parts := strings.Split(inner, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// listKeys round-trip as sequences even when read from comma-separated
// legacy form.
var listKeys = map[string]bool{
	"tags":             true,
	"related_memories": true,
}

// normalize coerces known list-valued keys to []string regardless of the
// shape they were decoded in (YAML sequence, bare comma string, single scalar).
func normalize(fields map[string]any) {
	for key := range listKeys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		fields[key] = toStringList(v)
	}
}

func toStringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		if strings.Contains(t, ",") {
			return splitList(t)
		}
		if t == "" {
			return nil
		}
		return []string{t}
	default:
		return nil
	}
}

// Render combines fields and body into a fenced-frontmatter markdown document.
// Writing always emits the fenced form, even if the source was legacy.
func Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer

	if len(doc.Fields) > 0 {
		buf.WriteString(delimiter)
		buf.WriteString("\n")

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc.Fields); err != nil {
			return nil, fmt.Errorf("frontmatter: marshaling yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("frontmatter: closing yaml encoder: %w", err)
		}

		buf.WriteString(delimiter)
		buf.WriteString("\n")
	}

	buf.WriteString(doc.Body)
	return buf.Bytes(), nil
}

// StringField reads a string field, returning "" if absent or not a string.
func (d *Document) StringField(key string) string {
	v, ok := d.Fields[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// IntField reads an int field, tolerating YAML's int/float decoding.
func (d *Document) IntField(key string) int {
	v, ok := d.Fields[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// BoolField reads a bool field, returning false if absent or not a bool.
func (d *Document) BoolField(key string) bool {
	v, ok := d.Fields[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// StringListField reads a list-valued field, coercing scalars per normalize.
func (d *Document) StringListField(key string) []string {
	v, ok := d.Fields[key]
	if !ok {
		return nil
	}
	return toStringList(v)
}
