package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/endlessblink/memstore/internal/model"
)

type createMemoryRequest struct {
	Content  string   `json:"content"`
	Project  string   `json:"project,omitempty"`
	Category string   `json:"category,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	query := r.URL.Query().Get("q")

	var (
		all []*model.Memory
		err error
	)
	if query != "" {
		all, err = s.memories.Search(query, project)
	} else {
		all, err = s.memories.List(project, 0)
	}
	if err != nil {
		writeJSONError(w, err)
		return
	}

	page, limit := parsePageLimit(r)
	pageData, p := paginate(all, page, limit)
	writeJSON(w, http.StatusOK, pagedResponse{Data: pageData, Pagination: p})
}

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var req createMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	saved, err := s.memories.Add(&model.Memory{
		Content:  req.Content,
		Project:  req.Project,
		Category: req.Category,
		Priority: req.Priority,
		Tags:     req.Tags,
	})
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	m, err := s.memories.Touch(id)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteMemory(id); err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
