// Package usecase contains application business logic services.
package usecase

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

var assessmentEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // Not a security-sensitive identifier.

func newAssessmentID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), assessmentEntropy)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NormalizeAssessment turns a possibly partial parsed document into a complete
// AssessmentResult. Total: it never fails for any well-formed document,
// including an empty one — every missing field gets its default, every list is
// non-nil, and the ID and timestamp are always freshly generated, never taken
// from model output. visaHint, when non-empty, backs targetVisaCategory before
// the generic fallback applies.
func NormalizeAssessment(doc map[string]any, countryName, visaHint string) domain.AssessmentResult {
	country := strField(doc, "countryName", countryName)

	visas := make([]domain.VisaMatch, 0)
	for _, entry := range listField(doc, "eligibleVisas") {
		m, _ := entry.(map[string]any)
		visas = append(visas, domain.VisaMatch{
			VisaID:          uuid.NewString(),
			VisaName:        strField(m, "visaName", "Pathway"),
			MatchScore:      intField(m, "matchScore", 0),
			Reason:          strField(m, "reason", "Matched based on credentials."),
			MissingCriteria: stringListField(m, "missingCriteria"),
			OfficialLink:    strField(m, "officialLink", "#"),
		})
	}

	roadmap := make([]domain.RoadmapStep, 0)
	for _, entry := range listField(doc, "roadmap") {
		m, _ := entry.(map[string]any)
		roadmap = append(roadmap, domain.RoadmapStep{
			Title:        strField(m, "title", "Next Step"),
			Description:  strField(m, "description", "Action item for immigration."),
			Duration:     strField(m, "duration", "TBD"),
			Requirements: stringListField(m, "requirements"),
		})
	}

	category := "General Assessment"
	switch {
	case len(visas) > 0:
		category = visas[0].VisaName
	case visaHint != "":
		category = visaHint
	}

	breakdown, _ := doc["matchBreakdown"].(map[string]any)

	return domain.AssessmentResult{
		ID:                 newAssessmentID(),
		Date:               time.Now().UTC(),
		TargetCountry:      country,
		TargetVisaCategory: category,
		CountryName:        country,
		OverallScore:       intField(doc, "overallScore", 0),
		Status:             domain.EligibilityStatus(strField(doc, "status", string(domain.StatusNotEligible))),
		EligibleVisas:      visas,
		Roadmap:            roadmap,
		AIAdvice:           strField(doc, "aiAdvice", "Ensure all documents are verified before proceeding."),
		MatchBreakdown: domain.MatchBreakdown{
			Strengths:         stringListField(breakdown, "strengths"),
			Weaknesses:        stringListField(breakdown, "weaknesses"),
			ImprovementPoints: stringListField(breakdown, "improvementPoints"),
		},
	}
}

func strField(m map[string]any, key, def string) string {
	if m == nil {
		return def
	}
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

func intField(m map[string]any, key string, def int) int {
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func listField(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	l, _ := m[key].([]any)
	return l
}

func stringListField(m map[string]any, key string) []string {
	out := make([]string, 0)
	for _, v := range listField(m, key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
