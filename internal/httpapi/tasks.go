package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/endlessblink/memstore/internal/model"
)

type createTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Project     string   `json:"project,omitempty"`
	Category    string   `json:"category,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	ParentTask  string   `json:"parent_task,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	AutoLink    bool     `json:"auto_link,omitempty"`
}

type updateTaskRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	status := r.URL.Query().Get("status")

	all, err := s.tasks.List(project, status, 0)
	if err != nil {
		writeJSONError(w, err)
		return
	}

	page, limit := parsePageLimit(r)
	pageData, p := paginate(all, page, limit)
	writeJSON(w, http.StatusOK, pagedResponse{Data: pageData, Pagination: p})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	saved, err := s.tasks.Add(&model.Task{
		Title:       req.Title,
		Description: req.Description,
		Project:     req.Project,
		Category:    req.Category,
		Priority:    req.Priority,
		ParentTask:  req.ParentTask,
		Tags:        req.Tags,
	})
	if err != nil {
		writeJSONError(w, err)
		return
	}

	if req.AutoLink {
		if _, err := s.svc.Linker.AutoLink(saved.ID); err != nil {
			s.logger.Warn("auto_link failed after task create", "task", saved.ID, "error", err)
		} else if refreshed, err := s.tasks.Get(saved.ID); err == nil {
			saved = refreshed
		}
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.tasks.Get(id)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	updated, err := s.tasks.Update(id, func(t *model.Task) {
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Category != nil {
			t.Category = *req.Category
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.Status != nil {
			t.Status = *req.Status
		}
		if req.Tags != nil {
			t.Tags = *req.Tags
		}
	})
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteTask(id); err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
