package httpserver

import (
	"fmt"
	"net/http"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// ProfileGetHandler handles GET /v1/me.
func (s *Server) ProfileGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Profiles.Get(r.Context(), userIDFrom(r.Context()))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// ProfileUpdateHandler handles PUT /v1/me/profile.
func (s *Server) ProfileUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.UserProfile
		if err := decodeJSON(r, &p); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := validateProfile(p); err != nil {
			writeError(w, r, err, nil)
			return
		}
		u, err := s.Profiles.Update(r.Context(), userIDFrom(r.Context()), p)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// HistoryListHandler handles GET /v1/me/assessments.
func (s *Server) HistoryListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := s.Assessments.ListHistory(r.Context(), userIDFrom(r.Context()))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}

// ActivityListHandler handles GET /v1/me/activity.
func (s *Server) ActivityListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activities, err := s.Activities.ListForUser(r.Context(), userIDFrom(r.Context()))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"activities": activities})
	}
}

type contactRequest struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// ContactHandler handles POST /v1/me/contact. It records the request in the
// activity log for admin follow-up.
func (s *Server) ContactHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		a, err := s.Activities.Record(r.Context(), userIDFrom(r.Context()), domain.ActivityContactRequest, map[string]any{
			"subject": req.Subject,
			"message": req.Message,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}
