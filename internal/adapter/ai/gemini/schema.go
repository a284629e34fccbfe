package gemini

// responseSchema is the structured-output declaration sent with every
// generateContent call. Field names match the AssessmentResult contract; the
// model is told the shape, the recovery parser and normalizer enforce it.
func responseSchema() map[string]any {
	stringArray := map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}}
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"countryName":  map[string]any{"type": "STRING"},
			"overallScore": map[string]any{"type": "NUMBER"},
			"status":       map[string]any{"type": "STRING"},
			"eligibleVisas": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"visaName":        map[string]any{"type": "STRING"},
						"matchScore":      map[string]any{"type": "NUMBER"},
						"reason":          map[string]any{"type": "STRING"},
						"missingCriteria": stringArray,
						"officialLink":    map[string]any{"type": "STRING"},
					},
					"required": []string{"visaName", "matchScore", "reason", "missingCriteria", "officialLink"},
				},
			},
			"roadmap": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"title":        map[string]any{"type": "STRING"},
						"description":  map[string]any{"type": "STRING"},
						"duration":     map[string]any{"type": "STRING"},
						"requirements": stringArray,
					},
					"required": []string{"title", "description", "duration", "requirements"},
				},
			},
			"aiAdvice": map[string]any{"type": "STRING"},
			"matchBreakdown": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"strengths":         stringArray,
					"weaknesses":        stringArray,
					"improvementPoints": stringArray,
				},
				"required": []string{"strengths", "weaknesses", "improvementPoints"},
			},
		},
		"required": []string{"countryName", "overallScore", "status", "eligibleVisas", "roadmap", "aiAdvice", "matchBreakdown"},
	}
}
