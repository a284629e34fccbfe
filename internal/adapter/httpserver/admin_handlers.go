package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdminUsersHandler handles GET /v1/admin/users?q=.
func (s *Server) AdminUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.Admin.ListUsers(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	}
}

// AdminUserActivityHandler handles GET /v1/admin/users/{id}/activity.
func (s *Server) AdminUserActivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, activities, err := s.Admin.UserActivity(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": u, "activities": activities})
	}
}
