package task

import (
	"time"

	"github.com/endlessblink/memstore/internal/frontmatter"
	"github.com/endlessblink/memstore/internal/model"
)

var knownFields = map[string]bool{
	"id": true, "serial": true, "title": true, "project": true, "category": true,
	"priority": true, "status": true, "parent_task": true, "subtasks": true,
	"tags": true, "memory_connections": true, "created": true, "updated": true,
	"completed": true, "history": true,
}

func toDocument(t *model.Task) *frontmatter.Document {
	fields := map[string]any{}
	for k, v := range t.Extra {
		fields[k] = v
	}

	fields["id"] = t.ID
	fields["serial"] = t.Serial
	fields["title"] = t.Title
	fields["project"] = t.Project
	if t.Category != "" {
		fields["category"] = t.Category
	}
	fields["priority"] = t.Priority
	fields["status"] = t.Status
	if t.ParentTask != "" {
		fields["parent_task"] = t.ParentTask
	}
	if len(t.Subtasks) > 0 {
		fields["subtasks"] = t.Subtasks
	}
	if len(t.Tags) > 0 {
		fields["tags"] = t.Tags
	}
	if len(t.MemoryConnections) > 0 {
		conns := make([]map[string]any, 0, len(t.MemoryConnections))
		for _, c := range t.MemoryConnections {
			conns = append(conns, map[string]any{
				"memory_id":       c.MemoryID,
				"memory_serial":   c.MemorySerial,
				"connection_type": c.ConnectionType,
				"relevance":       c.Relevance,
				"matched_terms":   c.MatchedTerms,
			})
		}
		fields["memory_connections"] = conns
	}
	fields["created"] = t.Created.Format(time.RFC3339)
	fields["updated"] = t.Updated.Format(time.RFC3339)
	if t.Completed != nil {
		fields["completed"] = t.Completed.Format(time.RFC3339)
	}
	if len(t.History) > 0 {
		hist := make([]map[string]any, 0, len(t.History))
		for _, h := range t.History {
			entry := map[string]any{
				"from": h.From,
				"to":   h.To,
				"at":   h.At.Format(time.RFC3339),
			}
			if h.Reason != "" {
				entry["reason"] = h.Reason
			}
			hist = append(hist, entry)
		}
		fields["history"] = hist
	}

	return &frontmatter.Document{Fields: fields, Body: t.Description}
}

func fromDocument(doc *frontmatter.Document, path string) *model.Task {
	t := &model.Task{
		ID:          doc.StringField("id"),
		Serial:      doc.StringField("serial"),
		Title:       doc.StringField("title"),
		Description: doc.Body,
		Project:     doc.StringField("project"),
		Category:    doc.StringField("category"),
		Priority:    doc.StringField("priority"),
		Status:      doc.StringField("status"),
		ParentTask:  doc.StringField("parent_task"),
		Subtasks:    doc.StringListField("subtasks"),
		Tags:        doc.StringListField("tags"),
		Path:        path,
	}
	if t.Priority == "" {
		t.Priority = model.TaskPriorityMedium
	}
	if t.Status == "" {
		t.Status = model.TaskStatusTodo
	}
	if created, ok := parseTime(doc.StringField("created")); ok {
		t.Created = created
	}
	if updated, ok := parseTime(doc.StringField("updated")); ok {
		t.Updated = updated
	} else {
		t.Updated = t.Created
	}
	if completed, ok := parseTime(doc.StringField("completed")); ok {
		t.Completed = &completed
	}

	if connsRaw, ok := doc.Fields["memory_connections"].([]any); ok {
		for _, raw := range connsRaw {
			if cm, ok := raw.(map[string]any); ok {
				cd := &frontmatter.Document{Fields: cm}
				t.MemoryConnections = append(t.MemoryConnections, model.MemoryConnection{
					MemoryID:       cd.StringField("memory_id"),
					MemorySerial:   cd.StringField("memory_serial"),
					ConnectionType: cd.StringField("connection_type"),
					Relevance:      floatField(cd, "relevance"),
					MatchedTerms:   cd.StringListField("matched_terms"),
				})
			}
		}
	}

	if histRaw, ok := doc.Fields["history"].([]any); ok {
		for _, raw := range histRaw {
			if hm, ok := raw.(map[string]any); ok {
				hd := &frontmatter.Document{Fields: hm}
				rec := model.TransitionRecord{
					From:   hd.StringField("from"),
					To:     hd.StringField("to"),
					Reason: hd.StringField("reason"),
				}
				if at, ok := parseTime(hd.StringField("at")); ok {
					rec.At = at
				}
				t.History = append(t.History, rec)
			}
		}
	}

	t.Extra = map[string]any{}
	for k, v := range doc.Fields {
		if !knownFields[k] {
			t.Extra[k] = v
		}
	}

	return t
}

func floatField(d *frontmatter.Document, key string) float64 {
	v, ok := d.Fields[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
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
