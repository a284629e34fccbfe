package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/itnext-dev/visa-pathway/internal/adapter/httpserver"
	"github.com/itnext-dev/visa-pathway/internal/app"
	"github.com/itnext-dev/visa-pathway/internal/config"
	"github.com/itnext-dev/visa-pathway/internal/domain"
	"github.com/itnext-dev/visa-pathway/internal/usecase"
)

type fakeModel struct {
	response string
	err      error
}

func (m *fakeModel) GenerateJSON(_ domain.Context, _, _ string, _ int) (string, error) {
	return m.response, m.err
}

type fakeUsers struct {
	byEmail map[string]domain.User
	nextID  int
}

func (m *fakeUsers) Create(_ domain.Context, u domain.User) (string, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return "", fmt.Errorf("%w: email taken", domain.ErrConflict)
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	m.byEmail[u.Email] = u
	return u.ID, nil
}

func (m *fakeUsers) GetByID(_ domain.Context, id string) (domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("%w: user", domain.ErrNotFound)
}

func (m *fakeUsers) GetByEmail(_ domain.Context, email string) (domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: email", domain.ErrNotFound)
	}
	return u, nil
}

func (m *fakeUsers) UpdateProfile(_ domain.Context, id string, p domain.UserProfile) error {
	for email, u := range m.byEmail {
		if u.ID == id {
			u.Profile = &p
			m.byEmail[email] = u
			return nil
		}
	}
	return fmt.Errorf("%w: user", domain.ErrNotFound)
}

func (m *fakeUsers) SetVerified(_ domain.Context, id string) error { return nil }

func (m *fakeUsers) List(_ domain.Context, _ string) ([]domain.User, error) {
	out := make([]domain.User, 0)
	for _, u := range m.byEmail {
		if u.Role == domain.RoleUser {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeHistory struct{ saved map[string][]domain.AssessmentResult }

func (h *fakeHistory) Append(_ domain.Context, userID string, r domain.AssessmentResult) error {
	h.saved[userID] = append(h.saved[userID], r)
	return nil
}

func (h *fakeHistory) ListByUser(_ domain.Context, userID string) ([]domain.AssessmentResult, error) {
	return h.saved[userID], nil
}

type fakeCountries struct{ byID map[string]domain.Country }

func (s *fakeCountries) GetByID(_ domain.Context, id string) (domain.Country, error) {
	c, ok := s.byID[id]
	if !ok {
		return domain.Country{}, fmt.Errorf("%w: country", domain.ErrNotFound)
	}
	return c, nil
}

func (s *fakeCountries) Upsert(_ domain.Context, c domain.Country) error {
	s.byID[c.ID] = c
	return nil
}

func (s *fakeCountries) Update(_ domain.Context, c domain.Country) error {
	if _, ok := s.byID[c.ID]; !ok {
		return fmt.Errorf("%w: country", domain.ErrNotFound)
	}
	s.byID[c.ID] = c
	return nil
}

func (s *fakeCountries) Deactivate(_ domain.Context, id string) error {
	c, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: country", domain.ErrNotFound)
	}
	c.IsActive = false
	s.byID[id] = c
	return nil
}

func (s *fakeCountries) ListActive(_ domain.Context) ([]domain.Country, error) {
	out := make([]domain.Country, 0)
	for _, c := range s.byID {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeCodes struct{ codes map[string]string }

func (c *fakeCodes) Put(_ domain.Context, email, code string, _ time.Duration) error {
	c.codes[email] = code
	return nil
}

func (c *fakeCodes) Get(_ domain.Context, email string) (string, error) {
	code, ok := c.codes[email]
	if !ok {
		return "", fmt.Errorf("%w: code", domain.ErrNotFound)
	}
	return code, nil
}

func (c *fakeCodes) Delete(_ domain.Context, email string) error {
	delete(c.codes, email)
	return nil
}

type noopCache struct{}

func (noopCache) GetList(domain.Context) ([]domain.Country, bool)               { return nil, false }
func (noopCache) SetList(domain.Context, []domain.Country, time.Duration) error { return nil }
func (noopCache) Invalidate(domain.Context) error                               { return nil }

type fakeActivities struct{ records []domain.Activity }

func (a *fakeActivities) Record(_ domain.Context, act domain.Activity) (string, error) {
	a.records = append(a.records, act)
	return "act", nil
}

func (a *fakeActivities) ListByUser(_ domain.Context, _ string) ([]domain.Activity, error) {
	return a.records, nil
}

type fakeFeedback struct{ byID map[string]domain.Feedback }

func (f *fakeFeedback) Create(_ domain.Context, fb domain.Feedback) (string, error) {
	if fb.ID == "" {
		fb.ID = fmt.Sprintf("fb-%d", len(f.byID)+1)
	}
	f.byID[fb.ID] = fb
	return fb.ID, nil
}

func (f *fakeFeedback) GetByID(_ domain.Context, id string) (domain.Feedback, error) {
	fb, ok := f.byID[id]
	if !ok {
		return domain.Feedback{}, fmt.Errorf("%w: feedback", domain.ErrNotFound)
	}
	return fb, nil
}

func (f *fakeFeedback) ListByUser(_ domain.Context, userID string) ([]domain.Feedback, error) {
	out := make([]domain.Feedback, 0)
	for _, fb := range f.byID {
		if fb.UserID == userID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (f *fakeFeedback) ListAll(_ domain.Context) ([]domain.Feedback, error) {
	out := make([]domain.Feedback, 0)
	for _, fb := range f.byID {
		out = append(out, fb)
	}
	return out, nil
}

func (f *fakeFeedback) AddReply(_ domain.Context, id string, reply domain.FeedbackReply) error {
	fb, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("%w: feedback", domain.ErrNotFound)
	}
	fb.Replies = append(fb.Replies, reply)
	f.byID[id] = fb
	return nil
}

func (f *fakeFeedback) UpdateStatus(_ domain.Context, id string, status domain.FeedbackStatus) error {
	fb, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("%w: feedback", domain.ErrNotFound)
	}
	fb.Status = status
	f.byID[id] = fb
	return nil
}

const fakeResponse = `{
	"overallScore": 72,
	"status": "Partially Eligible",
	"eligibleVisas": [{"visaName": "Express Entry", "matchScore": 85, "reason": "Strong profile.", "missingCriteria": [], "officialLink": "https://www.canada.ca"}],
	"roadmap": [],
	"matchBreakdown": {"strengths": [], "weaknesses": [], "improvementPoints": []}
}`

func testHandler(t *testing.T, model *fakeModel) (http.Handler, usecase.AuthService) {
	t.Helper()
	cfg := config.Config{
		AppEnv:          "dev",
		JWTSecret:       "test-secret",
		RateLimitPerMin: 1000,
		RequestTimeout:  10 * time.Second,
	}
	users := &fakeUsers{byEmail: map[string]domain.User{}}
	countries := &fakeCountries{byID: map[string]domain.Country{
		"ca": {ID: "ca", Name: "Canada", IsActive: true},
		"au": {ID: "au", Name: "Australia", IsActive: true},
	}}
	activities := &fakeActivities{}

	authSvc := usecase.NewAuthService(users, &fakeCodes{codes: map[string]string{}}, cfg.JWTSecret, time.Hour, time.Minute)
	assessSvc := usecase.NewAssessmentService(model, &fakeHistory{saved: map[string][]domain.AssessmentResult{}}, activities, nil, 0)
	srv := &httpserver.Server{
		Cfg:         cfg,
		Auth:        authSvc,
		Profiles:    usecase.NewProfileService(users),
		Assessments: assessSvc,
		Comparisons: usecase.NewComparisonService(assessSvc, countries),
		Countries:   usecase.NewCountryService(countries, noopCache{}, activities, time.Minute),
		Feedback:    usecase.NewFeedbackService(&fakeFeedback{byID: map[string]domain.Feedback{}}),
		Activities:  usecase.NewActivityService(activities, nil),
		Admin:       usecase.NewAdminService(users, activities),
	}
	return app.BuildRouter(cfg, srv), authSvc
}

func postJSON(t *testing.T, h http.Handler, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestAssessmentEndpoint_Success(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})
	body := `{"countryName": "Canada", "profile": {"firstName": "Amina", "lastName": "Diallo", "educationLevel": "Master's", "fieldOfStudy": "CS", "yearsOfExperience": 7}}`
	rec := postJSON(t, h, "/v1/assessments", body, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res domain.AssessmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 72, res.OverallScore)
	assert.Equal(t, "Express Entry", res.TargetVisaCategory)
	assert.Equal(t, "Canada", res.CountryName)
	assert.NotEmpty(t, res.ID)
}

func TestAssessmentEndpoint_MissingCountry(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})
	rec := postJSON(t, h, "/v1/assessments", `{"profile": {"firstName": "A"}}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, rec))
}

func TestAssessmentEndpoint_InvalidJSON(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})
	rec := postJSON(t, h, "/v1/assessments", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssessmentEndpoint_ShortBackgroundRejected(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})
	body := `{"countryName": "Canada", "profile": {"firstName": "A", "professionalBackground": "too short"}}`
	rec := postJSON(t, h, "/v1/assessments", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, rec))
}

func TestAssessmentEndpoint_GenerationFailure(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{err: fmt.Errorf("%w: status 503", domain.ErrUpstreamFailure)})
	body := `{"countryName": "Canada", "profile": {"firstName": "A"}}`
	rec := postJSON(t, h, "/v1/assessments", body, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "GENERATION_FAILED", errorCode(t, rec))
}

func TestAssessmentEndpoint_UnparseableModelOutput(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: "sorry, no json here {{{"})
	body := `{"countryName": "Canada", "profile": {"firstName": "A"}}`
	rec := postJSON(t, h, "/v1/assessments", body, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "GENERATION_FAILED", errorCode(t, rec))
}

func TestCompareEndpoint(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})
	body := `{
		"primary": {"id": "p1", "countryName": "Canada", "targetVisaCategory": "Express Entry"},
		"countryIds": ["au"],
		"profile": {"firstName": "A"}
	}`
	rec := postJSON(t, h, "/v1/assessments/compare", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Results []domain.AssessmentResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 2)
	assert.Equal(t, "p1", res.Results[0].ID)
}

func TestCompareEndpoint_MissingPrimary(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})
	body := `{"primary": {}, "countryIds": ["au"], "profile": {"firstName": "A"}}`
	rec := postJSON(t, h, "/v1/assessments/compare", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})

	rec := postJSON(t, h, "/v1/auth/register", `{"email": "a@b.com", "password": "hunter22", "fullName": "A B"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "a@b.com", reg.User.Email)

	rec = postJSON(t, h, "/v1/auth/register", `{"email": "a@b.com", "password": "hunter22", "fullName": "A B"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(t, h, "/v1/auth/login", `{"email": "a@b.com", "password": "wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, h, "/v1/auth/login", `{"email": "a@b.com", "password": "hunter22"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	reg := postJSON(t, h, "/v1/auth/register", `{"email": "me@b.com", "password": "hunter22", "fullName": "Me"}`, "")
	require.Equal(t, http.StatusCreated, reg.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(reg.Body.Bytes(), &out))

	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "me@b.com")
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "passwordhash")
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})

	reg := postJSON(t, h, "/v1/auth/register", `{"email": "u@b.com", "password": "hunter22", "fullName": "U"}`, "")
	require.Equal(t, http.StatusCreated, reg.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(reg.Body.Bytes(), &out))

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCountryEndpoints(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})

	req := httptest.NewRequest(http.MethodGet, "/v1/countries", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Canada")

	req = httptest.NewRequest(http.MethodGet, "/v1/countries/ca", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/countries/nope", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h, _ := testHandler(t, &fakeModel{response: fakeResponse})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
