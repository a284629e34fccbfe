// Package app wires configuration, adapters and routes into an HTTP handler.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/itnext-dev/visa-pathway/internal/adapter/httpserver"
	"github.com/itnext-dev/visa-pathway/internal/adapter/observability"
	"github.com/itnext-dev/visa-pathway/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(cfg.RequestTimeout))
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public routes
	r.Group(func(pr chi.Router) {
		pr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		pr.Post("/v1/auth/register", srv.RegisterHandler())
		pr.Post("/v1/auth/login", srv.LoginHandler())
		pr.Post("/v1/auth/verify/request", srv.RequestVerificationHandler())
		pr.Post("/v1/auth/verify", srv.VerifyEmailHandler())

		// Assessments work anonymously; a bearer token adds history and
		// activity tracking.
		pr.Group(func(ar chi.Router) {
			ar.Use(httpserver.OptionalAuth(srv.Auth))
			ar.Post("/v1/assessments", srv.AssessmentHandler())
			ar.Post("/v1/assessments/compare", srv.CompareHandler())
		})
	})

	r.Group(func(cr chi.Router) {
		cr.Use(httpserver.OptionalAuth(srv.Auth))
		cr.Get("/v1/countries", srv.CountryListHandler())
		cr.Get("/v1/countries/{id}", srv.CountryGetHandler())
	})

	// Authenticated routes
	r.Group(func(ur chi.Router) {
		ur.Use(httpserver.BearerAuth(srv.Auth))
		ur.Get("/v1/me", srv.ProfileGetHandler())
		ur.Put("/v1/me/profile", srv.ProfileUpdateHandler())
		ur.Get("/v1/me/assessments", srv.HistoryListHandler())
		ur.Get("/v1/me/activity", srv.ActivityListHandler())
		ur.Post("/v1/me/contact", srv.ContactHandler())
		ur.Post("/v1/feedback", srv.FeedbackSubmitHandler())
		ur.Get("/v1/feedback", srv.FeedbackListMineHandler())
	})

	// Admin routes
	r.Group(func(adm chi.Router) {
		adm.Use(httpserver.BearerAuth(srv.Auth))
		adm.Use(httpserver.RequireAdmin)
		adm.Get("/v1/admin/users", srv.AdminUsersHandler())
		adm.Get("/v1/admin/users/{id}/activity", srv.AdminUserActivityHandler())
		adm.Post("/v1/admin/countries", srv.CountryCreateHandler())
		adm.Put("/v1/admin/countries/{id}", srv.CountryUpdateHandler())
		adm.Delete("/v1/admin/countries/{id}", srv.CountryDeactivateHandler())
		adm.Get("/v1/admin/feedback", srv.FeedbackListAllHandler())
		adm.Post("/v1/admin/feedback/{id}/reply", srv.FeedbackReplyHandler())
		adm.Post("/v1/admin/feedback/{id}/close", srv.FeedbackCloseHandler())
	})

	// Health and metrics
	r.Get("/healthz", httpserver.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return httpserver.SecurityHeaders(r)
}
