package usecase

import (
	"errors"
	"fmt"

	"github.com/itnext-dev/visa-pathway/internal/adapter/observability"
	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// maxComparisonResults caps a comparison set including the primary result.
const maxComparisonResults = 3

// ComparisonService runs additional assessments for side-by-side review.
type ComparisonService struct {
	Assessments AssessmentService
	Countries   domain.CountryRepository
}

// NewComparisonService constructs a ComparisonService.
func NewComparisonService(a AssessmentService, c domain.CountryRepository) ComparisonService {
	return ComparisonService{Assessments: a, Countries: c}
}

// Compare extends the primary result with assessments for up to two additional
// countries, reusing the primary's visa category and the profile's language
// context. Legs run sequentially, never concurrently: the model collaborator's
// rate limits are unknown, so latency scales linearly by design. Any leg
// failure fails the whole comparison; no partial set is returned. Countries
// matching the primary's display name, or unknown IDs, are skipped.
func (s ComparisonService) Compare(ctx domain.Context, primary domain.AssessmentResult, countryIDs []string, profile domain.UserProfile, userID string) ([]domain.AssessmentResult, error) {
	if primary.ID == "" {
		return nil, fmt.Errorf("%w: primary result required", domain.ErrInvalidArgument)
	}

	results := []domain.AssessmentResult{primary}
	for _, id := range countryIDs {
		if len(results) >= maxComparisonResults {
			break
		}
		country, err := s.Countries.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve country %s: %w", id, err)
		}
		if country.Name == primary.CountryName {
			continue
		}

		leg := profile
		leg.VisaIntent = primary.TargetVisaCategory
		if leg.LanguageScores == nil {
			leg.LanguageScores = &domain.LanguageScore{Test: "IELTS", Score: "7.0"}
		}
		// Legs are transient; only the primary was persisted, so no userID here.
		res, err := s.Assessments.Generate(ctx, leg, country.Name, "")
		if err != nil {
			return nil, fmt.Errorf("comparison leg %s: %w", country.Name, err)
		}
		observability.ComparisonLegsTotal.Inc()
		results = append(results, res)
	}

	if userID != "" {
		countries := make([]string, 0, len(results))
		for _, r := range results {
			countries = append(countries, r.CountryName)
		}
		s.Assessments.logActivity(ctx, userID, domain.ActivityComparisonMade, map[string]any{
			"countries": countries,
		})
	}
	return results, nil
}
