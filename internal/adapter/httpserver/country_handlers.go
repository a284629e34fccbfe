package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// CountryListHandler handles GET /v1/countries.
func (s *Server) CountryListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		countries, err := s.Countries.ListActive(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"countries": countries})
	}
}

// CountryGetHandler handles GET /v1/countries/{id}. Views by signed-in users
// land in the activity log.
func (s *Server) CountryGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		c, err := s.Countries.Get(r.Context(), id, userIDFrom(r.Context()))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// CountryCreateHandler handles POST /v1/admin/countries.
func (s *Server) CountryCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c domain.Country
		if err := decodeJSON(r, &c); err != nil {
			writeError(w, r, err, nil)
			return
		}
		created, err := s.Countries.Create(r.Context(), c)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// CountryUpdateHandler handles PUT /v1/admin/countries/{id}.
func (s *Server) CountryUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c domain.Country
		if err := decodeJSON(r, &c); err != nil {
			writeError(w, r, err, nil)
			return
		}
		c.ID = chi.URLParam(r, "id")
		if err := s.Countries.Update(r.Context(), c); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// CountryDeactivateHandler handles DELETE /v1/admin/countries/{id}. The row
// survives; it only leaves the public list.
func (s *Server) CountryDeactivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Countries.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
	}
}
