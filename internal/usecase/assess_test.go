package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

type stubModel struct {
	response string
	err      error
	prompts  []string
}

func (m *stubModel) GenerateJSON(_ domain.Context, _ string, userPrompt string, _ int) (string, error) {
	m.prompts = append(m.prompts, userPrompt)
	return m.response, m.err
}

type memHistory struct {
	saved map[string][]domain.AssessmentResult
}

func newMemHistory() *memHistory {
	return &memHistory{saved: map[string][]domain.AssessmentResult{}}
}

func (h *memHistory) Append(_ domain.Context, userID string, r domain.AssessmentResult) error {
	h.saved[userID] = append(h.saved[userID], r)
	return nil
}

func (h *memHistory) ListByUser(_ domain.Context, userID string) ([]domain.AssessmentResult, error) {
	return h.saved[userID], nil
}

type memActivities struct {
	records []domain.Activity
	err     error
}

func (a *memActivities) Record(_ domain.Context, act domain.Activity) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.records = append(a.records, act)
	return "act-1", nil
}

func (a *memActivities) ListByUser(_ domain.Context, _ string) ([]domain.Activity, error) {
	return a.records, nil
}

func testProfile() domain.UserProfile {
	return domain.UserProfile{
		FirstName:              "Amina",
		LastName:               "Diallo",
		Country:                "Senegal",
		AgeRange:               "25-34",
		EducationLevel:         "Master's Degree",
		FieldOfStudy:           "Computer Science",
		JobTitle:               "Backend Engineer",
		ProfessionalBackground: "Seven years building distributed payment systems for fintech companies.",
		YearsOfExperience:      7,
		LanguageScores:         &domain.LanguageScore{Test: "IELTS", Score: "7.5"},
	}
}

const modelResponse = `{
	"overallScore": 72,
	"status": "Partially Eligible",
	"countryName": "Canada",
	"aiAdvice": "Retake IELTS to reach CLB 9 before applying.",
	"eligibleVisas": [
		{"visaName": "Express Entry", "matchScore": 85, "reason": "Strong skilled profile.", "missingCriteria": [], "officialLink": "https://www.canada.ca"}
	],
	"roadmap": [],
	"matchBreakdown": {"strengths": [], "weaknesses": ["CRS below cutoff"], "improvementPoints": ["Improve language score"]}
}`

func TestAssessmentService_Generate(t *testing.T) {
	t.Parallel()

	model := &stubModel{response: modelResponse}
	activities := &memActivities{}
	svc := NewAssessmentService(model, newMemHistory(), activities, nil, 0)

	res, err := svc.Generate(context.Background(), testProfile(), "Canada", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 72, res.OverallScore)
	assert.Equal(t, domain.StatusPartiallyEligible, res.Status)
	assert.Equal(t, "Express Entry", res.TargetVisaCategory)
	assert.Equal(t, "Canada", res.CountryName)
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, res.Roadmap)
	assert.Empty(t, res.MatchBreakdown.Strengths)

	require.Len(t, activities.records, 1)
	assert.Equal(t, domain.ActivityAssessmentGenerated, activities.records[0].Type)
	assert.Equal(t, "Canada", activities.records[0].Details["country"])
}

func TestAssessmentService_Generate_PromptContents(t *testing.T) {
	t.Parallel()

	model := &stubModel{response: modelResponse}
	svc := NewAssessmentService(model, newMemHistory(), nil, nil, 0)

	_, err := svc.Generate(context.Background(), testProfile(), "Canada", "")
	require.NoError(t, err)
	require.Len(t, model.prompts, 1)
	prompt := model.prompts[0]
	assert.Contains(t, prompt, "Canada")
	assert.Contains(t, prompt, "Amina Diallo")
	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "IELTS (Score: 7.5)")
	assert.Contains(t, prompt, "MATCH BREAKDOWN")
}

func TestAssessmentService_Generate_MissingCountry(t *testing.T) {
	t.Parallel()

	svc := NewAssessmentService(&stubModel{}, newMemHistory(), nil, nil, 0)
	_, err := svc.Generate(context.Background(), testProfile(), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAssessmentService_Generate_UpstreamError(t *testing.T) {
	t.Parallel()

	model := &stubModel{err: fmt.Errorf("%w: status 503", domain.ErrUpstreamFailure)}
	svc := NewAssessmentService(model, newMemHistory(), nil, nil, 0)

	_, err := svc.Generate(context.Background(), testProfile(), "Canada", "")
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestAssessmentService_Generate_EmptyResponse(t *testing.T) {
	t.Parallel()

	svc := NewAssessmentService(&stubModel{response: "   "}, newMemHistory(), nil, nil, 0)
	_, err := svc.Generate(context.Background(), testProfile(), "Canada", "")
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestAssessmentService_Generate_UnparseableResponse(t *testing.T) {
	t.Parallel()

	svc := NewAssessmentService(&stubModel{response: "I cannot produce JSON today {{{"}, newMemHistory(), nil, nil, 0)
	_, err := svc.Generate(context.Background(), testProfile(), "Canada", "")
	assert.ErrorIs(t, err, domain.ErrMalformedAIResponse)
	assert.Contains(t, err.Error(), "could not parse assessment data")
}

func TestAssessmentService_Generate_TruncatedResponseRecovered(t *testing.T) {
	t.Parallel()

	truncated := "```json\n" + `{"overallScore": 55, "status": "Partially Eligible", "eligibleVisas": [{"visaName": "Skilled Worker"`
	svc := NewAssessmentService(&stubModel{response: truncated}, newMemHistory(), nil, nil, 0)

	res, err := svc.Generate(context.Background(), testProfile(), "United Kingdom", "")
	require.NoError(t, err)
	assert.Equal(t, 55, res.OverallScore)
	require.Len(t, res.EligibleVisas, 1)
	assert.Equal(t, "Skilled Worker", res.EligibleVisas[0].VisaName)
	assert.Equal(t, "Matched based on credentials.", res.EligibleVisas[0].Reason)
}

func TestAssessmentService_Generate_ActivityFailureSwallowed(t *testing.T) {
	t.Parallel()

	activities := &memActivities{err: errors.New("db down")}
	svc := NewAssessmentService(&stubModel{response: modelResponse}, newMemHistory(), activities, nil, 0)

	_, err := svc.Generate(context.Background(), testProfile(), "Canada", "user-1")
	assert.NoError(t, err)
}

func TestAssessmentService_SaveAndListHistory(t *testing.T) {
	t.Parallel()

	history := newMemHistory()
	svc := NewAssessmentService(&stubModel{response: modelResponse}, history, nil, nil, 0)

	res, err := svc.Generate(context.Background(), testProfile(), "Canada", "")
	require.NoError(t, err)
	require.NoError(t, svc.Save(context.Background(), "user-1", res))

	got, err := svc.ListHistory(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, res.ID, got[0].ID)

	assert.ErrorIs(t, svc.Save(context.Background(), "", res), domain.ErrInvalidArgument)
	_, err = svc.ListHistory(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBuildPrompt_Fallbacks(t *testing.T) {
	t.Parallel()

	p := domain.UserProfile{
		FirstName:              "Lee",
		LastName:               "Chen",
		ProfessionalBackground: strings.Repeat("x", 200),
	}
	prompt := buildPrompt(p, "Australia")
	assert.Contains(t, prompt, strings.Repeat("x", 150))
	assert.NotContains(t, prompt, strings.Repeat("x", 151))
	assert.Contains(t, prompt, "Not specified (Score: N/A)")

	empty := buildPrompt(domain.UserProfile{}, "Australia")
	assert.Contains(t, empty, "Not provided")

	withIntent := testProfile()
	withIntent.VisaIntent = "Global Talent"
	assert.Contains(t, buildPrompt(withIntent, "Australia"), "Intended Visa Category: Global Talent")
}
