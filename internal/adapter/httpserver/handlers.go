package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/itnext-dev/visa-pathway/internal/config"
	"github.com/itnext-dev/visa-pathway/internal/domain"
	"github.com/itnext-dev/visa-pathway/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Auth        usecase.AuthService
	Profiles    usecase.ProfileService
	Assessments usecase.AssessmentService
	Comparisons usecase.ComparisonService
	Countries   usecase.CountryService
	Feedback    usecase.FeedbackService
	Activities  usecase.ActivityService
	Admin       usecase.AdminService
	DBCheck     func(ctx context.Context) error
	RedisCheck  func(ctx context.Context) error
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body", domain.ErrInvalidArgument)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument)
	}
	return nil
}

func validationDetails(err error) any {
	if ve, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, fe.Namespace()+" failed "+fe.Tag())
		}
		return fields
	}
	return nil
}

type assessRequest struct {
	Profile     domain.UserProfile `json:"profile" validate:"required"`
	CountryName string             `json:"countryName" validate:"required"`
	UserID      string             `json:"userId"`
}

// validateProfile enforces the request-boundary rules on an input profile.
// The background text, when present, must carry enough substance to prompt on.
func validateProfile(p domain.UserProfile) error {
	if p.ProfessionalBackground != "" && len(p.ProfessionalBackground) < 40 {
		return fmt.Errorf("%w: professionalBackground must be at least 40 characters", domain.ErrInvalidArgument)
	}
	return nil
}

// AssessmentHandler handles POST /v1/assessments.
func (s *Server) AssessmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assessRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		if err := validateProfile(req.Profile); err != nil {
			writeError(w, r, err, nil)
			return
		}
		userID := userIDFrom(r.Context())
		if userID == "" {
			userID = req.UserID
		}
		res, err := s.Assessments.Generate(r.Context(), req.Profile, req.CountryName, userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if userID != "" {
			if err := s.Assessments.Save(r.Context(), userID, res); err != nil {
				LoggerFrom(r).Warn("history save failed", "error", err)
			}
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type compareRequest struct {
	Primary    domain.AssessmentResult `json:"primary" validate:"required"`
	CountryIDs []string                `json:"countryIds" validate:"required,min=1"`
	Profile    domain.UserProfile      `json:"profile" validate:"required"`
	UserID     string                  `json:"userId"`
}

type compareResponse struct {
	Results []domain.AssessmentResult `json:"results"`
}

// CompareHandler handles POST /v1/assessments/compare.
func (s *Server) CompareHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req compareRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		if req.Primary.ID == "" {
			writeError(w, r, fmt.Errorf("%w: primary assessment required", domain.ErrInvalidArgument), nil)
			return
		}
		userID := userIDFrom(r.Context())
		if userID == "" {
			userID = req.UserID
		}
		results, err := s.Comparisons.Compare(r.Context(), req.Primary, req.CountryIDs, req.Profile, userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, compareResponse{Results: results})
	}
}

// HealthzHandler is a liveness probe.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler checks downstream dependencies.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := map[string]string{}
		healthy := true
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks["db"] = err.Error()
				healthy = false
			} else {
				checks["db"] = "ok"
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, checks)
	}
}
