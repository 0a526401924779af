package memory

import (
	"time"

	"github.com/endlessblink/memstore/internal/frontmatter"
	"github.com/endlessblink/memstore/internal/model"
)

// knownFields are the front-matter keys this codec models explicitly; every
// other key is preserved round-trip in model.Memory.Extra.
var knownFields = map[string]bool{
	"id": true, "timestamp": true, "last_accessed": true, "access_count": true,
	"project": true, "category": true, "priority": true, "status": true,
	"tags": true, "related_memories": true, "complexity": true,
	"metadata": true, "connections": true,
}

func toDocument(m *model.Memory) *frontmatter.Document {
	fields := map[string]any{}
	for k, v := range m.Extra {
		fields[k] = v
	}

	fields["id"] = m.ID
	fields["timestamp"] = m.Timestamp.Format(time.RFC3339)
	fields["last_accessed"] = m.LastAccessed.Format(time.RFC3339)
	fields["access_count"] = m.AccessCount
	fields["project"] = m.Project
	if m.Category != "" {
		fields["category"] = m.Category
	}
	if m.Priority != "" {
		fields["priority"] = m.Priority
	}
	if m.Status != "" {
		fields["status"] = m.Status
	}
	if len(m.Tags) > 0 {
		fields["tags"] = m.Tags
	}
	if len(m.RelatedMemories) > 0 {
		fields["related_memories"] = m.RelatedMemories
	}
	if m.Complexity > 0 {
		fields["complexity"] = m.Complexity
	}
	fields["metadata"] = map[string]any{
		"content_type":    m.Metadata.ContentType,
		"language":        m.Metadata.Language,
		"size":            m.Metadata.Size,
		"mermaid_diagram": m.Metadata.MermaidDiagram,
	}
	if len(m.Connections) > 0 {
		conns := make([]map[string]any, 0, len(m.Connections))
		for _, c := range m.Connections {
			conns = append(conns, map[string]any{
				"task_id":         c.TaskID,
				"task_serial":     c.TaskSerial,
				"connection_type": c.ConnectionType,
			})
		}
		fields["connections"] = conns
	}

	return &frontmatter.Document{Fields: fields, Body: m.Content}
}

func fromDocument(doc *frontmatter.Document, path string) *model.Memory {
	m := &model.Memory{
		ID:              doc.StringField("id"),
		Content:         doc.Body,
		Project:         doc.StringField("project"),
		Category:        doc.StringField("category"),
		Priority:        doc.StringField("priority"),
		Status:          doc.StringField("status"),
		Tags:            doc.StringListField("tags"),
		RelatedMemories: doc.StringListField("related_memories"),
		Complexity:      doc.IntField("complexity"),
		Path:            path,
	}
	if ts, ok := parseTime(doc.StringField("timestamp")); ok {
		m.Timestamp = ts
	}
	if la, ok := parseTime(doc.StringField("last_accessed")); ok {
		m.LastAccessed = la
	} else {
		m.LastAccessed = m.Timestamp
	}
	m.AccessCount = doc.IntField("access_count")
	if m.Project == "" {
		m.Project = model.DefaultProject
	}
	if m.Status == "" {
		m.Status = model.StatusActive
	}

	if metaRaw, ok := doc.Fields["metadata"].(map[string]any); ok {
		meta := &frontmatter.Document{Fields: metaRaw}
		m.Metadata = model.Metadata{
			ContentType:    meta.StringField("content_type"),
			Language:       meta.StringField("language"),
			Size:           meta.IntField("size"),
			MermaidDiagram: meta.BoolField("mermaid_diagram"),
		}
	}
	if connsRaw, ok := doc.Fields["connections"].([]any); ok {
		for _, raw := range connsRaw {
			if cm, ok := raw.(map[string]any); ok {
				cd := &frontmatter.Document{Fields: cm}
				m.Connections = append(m.Connections, model.MemoryTaskLink{
					TaskID:         cd.StringField("task_id"),
					TaskSerial:     cd.StringField("task_serial"),
					ConnectionType: cd.StringField("connection_type"),
				})
			}
		}
	}

	m.Extra = map[string]any{}
	for k, v := range doc.Fields {
		if !knownFields[k] {
			m.Extra[k] = v
		}
	}

	return m
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
