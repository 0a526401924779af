package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/endlessblink/memstore/internal/storeerr"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 500
)

// pagination mirrors the shape the HTTP surface wraps every list response
// in: {data, pagination:{hasNext, total?}}.
type pagination struct {
	HasNext bool `json:"hasNext"`
	Total   int  `json:"total,omitempty"`
}

type pagedResponse struct {
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
}

// parsePageLimit reads ?page and ?limit, defaulting to page 1, limit 100,
// capped at 500.
func parsePageLimit(r *http.Request) (page, limit int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	limit = defaultPageLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// paginate slices a full result set in memory. The record stores do not
// support offset-based reads, so pagination here is applied after a full
// list, matching the stores' existing limit-only List semantics.
func paginate[T any](all []T, page, limit int) ([]T, pagination) {
	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], pagination{HasNext: end < total, Total: total}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// response is already committed; nothing more to do but log
		// via the caller's own request logging middleware.
		_ = err
	}
}

func writeJSONError(w http.ResponseWriter, err error) {
	status := statusFor(storeerr.KindOf(err))
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func statusFor(kind storeerr.Kind) int {
	switch kind {
	case storeerr.InvalidInput:
		return http.StatusBadRequest
	case storeerr.NotFound:
		return http.StatusNotFound
	case storeerr.Conflict:
		return http.StatusConflict
	case storeerr.Forbidden:
		return http.StatusForbidden
	case storeerr.Timeout:
		return http.StatusGatewayTimeout
	case storeerr.External:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// withCORS applies the configured allowlist ("*" or a comma-separated list
// of origins) to every response and answers preflight requests directly.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
