package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

type stubCountries struct {
	byID map[string]domain.Country
	err  error
}

func (s *stubCountries) GetByID(_ domain.Context, id string) (domain.Country, error) {
	if s.err != nil {
		return domain.Country{}, s.err
	}
	c, ok := s.byID[id]
	if !ok {
		return domain.Country{}, fmt.Errorf("%w: country %s", domain.ErrNotFound, id)
	}
	return c, nil
}

func (s *stubCountries) Upsert(_ domain.Context, _ domain.Country) error    { return nil }
func (s *stubCountries) Update(_ domain.Context, _ domain.Country) error    { return nil }
func (s *stubCountries) Deactivate(_ domain.Context, _ string) error        { return nil }
func (s *stubCountries) ListActive(_ domain.Context) ([]domain.Country, error) {
	return nil, nil
}

const legResponse = `{"overallScore": 60, "status": "Partially Eligible"}`

func primaryResult() domain.AssessmentResult {
	return domain.AssessmentResult{
		ID:                 "primary-1",
		CountryName:        "Canada",
		TargetCountry:      "Canada",
		TargetVisaCategory: "Express Entry",
		OverallScore:       72,
		Status:             domain.StatusPartiallyEligible,
	}
}

func compareFixture(model *stubModel, countries *stubCountries, activities *memActivities) ComparisonService {
	assess := NewAssessmentService(model, newMemHistory(), activities, nil, 0)
	return NewComparisonService(assess, countries)
}

func TestComparisonService_CapsAtThreeResults(t *testing.T) {
	t.Parallel()

	model := &stubModel{response: legResponse}
	countries := &stubCountries{byID: map[string]domain.Country{
		"au": {ID: "au", Name: "Australia"},
		"de": {ID: "de", Name: "Germany"},
		"uk": {ID: "uk", Name: "United Kingdom"},
		"nz": {ID: "nz", Name: "New Zealand"},
		"sg": {ID: "sg", Name: "Singapore"},
	}}
	svc := compareFixture(model, countries, nil)

	results, err := svc.Compare(context.Background(), primaryResult(),
		[]string{"au", "de", "uk", "nz", "sg"}, testProfile(), "")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "primary-1", results[0].ID)
	assert.Equal(t, "Australia", results[1].CountryName)
	assert.Equal(t, "Germany", results[2].CountryName)
	// Only two additional model calls were made.
	assert.Len(t, model.prompts, 2)
}

func TestComparisonService_SkipsPrimaryCountry(t *testing.T) {
	t.Parallel()

	model := &stubModel{response: legResponse}
	countries := &stubCountries{byID: map[string]domain.Country{
		"ca": {ID: "ca", Name: "Canada"},
		"au": {ID: "au", Name: "Australia"},
	}}
	svc := compareFixture(model, countries, nil)

	results, err := svc.Compare(context.Background(), primaryResult(),
		[]string{"ca", "au"}, testProfile(), "")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Australia", results[1].CountryName)
	assert.Len(t, model.prompts, 1)
}

func TestComparisonService_SkipsUnknownCountries(t *testing.T) {
	t.Parallel()

	model := &stubModel{response: legResponse}
	countries := &stubCountries{byID: map[string]domain.Country{
		"au": {ID: "au", Name: "Australia"},
	}}
	svc := compareFixture(model, countries, nil)

	results, err := svc.Compare(context.Background(), primaryResult(),
		[]string{"missing", "au"}, testProfile(), "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Australia", results[1].CountryName)
}

func TestComparisonService_LegCarriesPrimaryVisaCategory(t *testing.T) {
	t.Parallel()

	model := &stubModel{response: legResponse}
	countries := &stubCountries{byID: map[string]domain.Country{
		"au": {ID: "au", Name: "Australia"},
	}}
	svc := compareFixture(model, countries, nil)

	profile := testProfile()
	profile.LanguageScores = nil
	_, err := svc.Compare(context.Background(), primaryResult(), []string{"au"}, profile, "")
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Intended Visa Category: Express Entry")
	assert.Contains(t, model.prompts[0], "IELTS (Score: 7.0)")
}

func TestComparisonService_LegFailureFailsWhole(t *testing.T) {
	t.Parallel()

	model := &stubModel{err: fmt.Errorf("%w: status 503", domain.ErrUpstreamFailure)}
	countries := &stubCountries{byID: map[string]domain.Country{
		"au": {ID: "au", Name: "Australia"},
	}}
	svc := compareFixture(model, countries, nil)

	results, err := svc.Compare(context.Background(), primaryResult(), []string{"au"}, testProfile(), "")
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
	assert.Nil(t, results)
}

func TestComparisonService_RepoFailureFailsWhole(t *testing.T) {
	t.Parallel()

	countries := &stubCountries{err: errors.New("connection refused")}
	svc := compareFixture(&stubModel{response: legResponse}, countries, nil)

	_, err := svc.Compare(context.Background(), primaryResult(), []string{"au"}, testProfile(), "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestComparisonService_RequiresPrimary(t *testing.T) {
	t.Parallel()

	svc := compareFixture(&stubModel{}, &stubCountries{}, nil)
	_, err := svc.Compare(context.Background(), domain.AssessmentResult{}, []string{"au"}, testProfile(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestComparisonService_RecordsComparisonActivity(t *testing.T) {
	t.Parallel()

	model := &stubModel{response: legResponse}
	countries := &stubCountries{byID: map[string]domain.Country{
		"au": {ID: "au", Name: "Australia"},
	}}
	activities := &memActivities{}
	svc := compareFixture(model, countries, activities)

	_, err := svc.Compare(context.Background(), primaryResult(), []string{"au"}, testProfile(), "user-1")
	require.NoError(t, err)

	require.Len(t, activities.records, 1)
	assert.Equal(t, domain.ActivityComparisonMade, activities.records[0].Type)
	assert.Equal(t, []string{"Canada", "Australia"}, activities.records[0].Details["countries"])
}
