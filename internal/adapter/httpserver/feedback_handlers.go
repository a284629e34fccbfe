package httpserver

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

type feedbackRequest struct {
	Message  string `json:"message" validate:"required"`
	Category string `json:"category"`
}

// FeedbackSubmitHandler handles POST /v1/feedback.
func (s *Server) FeedbackSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		f, err := s.Feedback.Submit(r.Context(), userIDFrom(r.Context()), req.Message, req.Category)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	}
}

// FeedbackListMineHandler handles GET /v1/feedback.
func (s *Server) FeedbackListMineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := s.Feedback.ListForUser(r.Context(), userIDFrom(r.Context()))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"feedback": tickets})
	}
}

// FeedbackListAllHandler handles GET /v1/admin/feedback.
func (s *Server) FeedbackListAllHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := s.Feedback.ListAll(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"feedback": tickets})
	}
}

type replyRequest struct {
	Message string `json:"message" validate:"required"`
}

// FeedbackReplyHandler handles POST /v1/admin/feedback/{id}/reply.
func (s *Server) FeedbackReplyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		id := chi.URLParam(r, "id")
		if err := s.Feedback.Reply(r.Context(), id, userIDFrom(r.Context()), req.Message); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "replied"})
	}
}

// FeedbackCloseHandler handles POST /v1/admin/feedback/{id}/close.
func (s *Server) FeedbackCloseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Feedback.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
	}
}
