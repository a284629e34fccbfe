package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeipuuv/gojsonschema"
)

func TestAssessmentSchemaCompiles(t *testing.T) {
	t.Parallel()

	require.NotNil(t, compiledSchema())
}

func TestAssessmentSchemaAcceptsCompleteDocument(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"countryName":  "Canada",
		"overallScore": 72,
		"status":       "Partially Eligible",
		"eligibleVisas": []any{map[string]any{
			"visaName":        "Express Entry",
			"matchScore":      85,
			"reason":          "Strong profile.",
			"missingCriteria": []any{},
			"officialLink":    "https://www.canada.ca",
		}},
		"roadmap": []any{map[string]any{
			"title":        "Land and settle",
			"description":  "Activate PR.",
			"duration":     "0-3 months",
			"requirements": []any{"COPR"},
		}},
		"aiAdvice": "Improve language score.",
		"matchBreakdown": map[string]any{
			"strengths":         []any{"Experience"},
			"weaknesses":        []any{},
			"improvementPoints": []any{},
		},
	}
	res, err := compiledSchema().Validate(gojsonschema.NewGoLoader(doc))
	require.NoError(t, err)
	assert.True(t, res.Valid(), "%v", res.Errors())
}

func TestReportSchemaDrift_NeverPanics(t *testing.T) {
	t.Parallel()

	// Drift reporting is diagnostics only; any input must be safe.
	ReportSchemaDrift(nil)
	ReportSchemaDrift(map[string]any{})
	ReportSchemaDrift(map[string]any{"status": 12, "eligibleVisas": "not an array"})
}
