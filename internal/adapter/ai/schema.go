package ai

import (
	"log/slog"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// assessmentSchema mirrors the output schema declared to the model. Recovered
// documents are checked against it for diagnostics only; a mismatch is never
// an error because the normalizer absorbs missing fields.
const assessmentSchema = `{
  "type": "object",
  "properties": {
    "countryName": {"type": "string"},
    "overallScore": {"type": "number"},
    "status": {"type": "string", "enum": ["Fully Eligible", "Partially Eligible", "Not Eligible"]},
    "eligibleVisas": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "visaName": {"type": "string"},
          "matchScore": {"type": "number"},
          "reason": {"type": "string"},
          "missingCriteria": {"type": "array", "items": {"type": "string"}},
          "officialLink": {"type": "string"}
        },
        "required": ["visaName", "matchScore", "reason", "missingCriteria", "officialLink"]
      }
    },
    "roadmap": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "duration": {"type": "string"},
          "requirements": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["title", "description", "duration", "requirements"]
      }
    },
    "aiAdvice": {"type": "string"},
    "matchBreakdown": {
      "type": "object",
      "properties": {
        "strengths": {"type": "array", "items": {"type": "string"}},
        "weaknesses": {"type": "array", "items": {"type": "string"}},
        "improvementPoints": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["strengths", "weaknesses", "improvementPoints"]
    }
  },
  "required": ["countryName", "overallScore", "status", "eligibleVisas", "roadmap", "aiAdvice", "matchBreakdown"]
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
)

func compiledSchema() *gojsonschema.Schema {
	schemaOnce.Do(func() {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(assessmentSchema))
		if err != nil {
			slog.Error("assessment schema failed to compile", slog.Any("error", err))
			return
		}
		schema = s
	})
	return schema
}

// ReportSchemaDrift logs fields of a recovered document that deviate from the
// declared output schema. Log-only: partial data is absorbed downstream.
func ReportSchemaDrift(doc map[string]any) {
	s := compiledSchema()
	if s == nil || doc == nil {
		return
	}
	res, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		slog.Warn("schema drift check failed", slog.Any("error", err))
		return
	}
	for _, e := range res.Errors() {
		slog.Debug("model output drifted from declared schema",
			slog.String("field", e.Field()),
			slog.String("detail", e.Description()))
	}
}
