package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/itnext-dev/visa-pathway/internal/adapter/ai"
	"github.com/itnext-dev/visa-pathway/internal/adapter/observability"
	"github.com/itnext-dev/visa-pathway/internal/domain"
)

const systemInstruction = "You are an elite Global Immigration Strategist for ITNEXT. You provide data-driven, accurate pre-assessments. Your goal is to identify diverse pathways beyond just students and workers, including talent and innovation routes. You must provide official government URLs for all identified paths."

// AssessmentService runs one end-to-end assessment: prompt build, model call,
// recovery parse, normalization. At-most-once: no retries, no caching.
type AssessmentService struct {
	Model           domain.ModelClient
	History         domain.AssessmentRepository
	Activities      domain.ActivityRepository
	Events          domain.EventPublisher
	MaxOutputTokens int
}

// NewAssessmentService constructs an AssessmentService with its dependencies.
// Events may be nil when no stream is configured.
func NewAssessmentService(m domain.ModelClient, h domain.AssessmentRepository, a domain.ActivityRepository, e domain.EventPublisher, maxTokens int) AssessmentService {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return AssessmentService{Model: m, History: h, Activities: a, Events: e, MaxOutputTokens: maxTokens}
}

// Generate runs one assessment of the profile against countryName. When userID
// is non-empty an activity record is written fire-and-forget: a logging
// failure never fails the assessment.
func (s AssessmentService) Generate(ctx domain.Context, profile domain.UserProfile, countryName, userID string) (domain.AssessmentResult, error) {
	if countryName == "" {
		return domain.AssessmentResult{}, fmt.Errorf("%w: country name required", domain.ErrInvalidArgument)
	}

	raw, err := s.Model.GenerateJSON(ctx, systemInstruction, buildPrompt(profile, countryName), s.MaxOutputTokens)
	if err != nil {
		observability.ObserveAssessment("upstream_error", 0)
		return domain.AssessmentResult{}, fmt.Errorf("generate assessment: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		observability.ObserveAssessment("upstream_error", 0)
		return domain.AssessmentResult{}, fmt.Errorf("%w: empty model response", domain.ErrUpstreamFailure)
	}

	doc, ok := ai.RecoverJSON(raw)
	if !ok {
		observability.ObserveAssessment("parse_error", 0)
		return domain.AssessmentResult{}, fmt.Errorf("%w: could not parse assessment data", domain.ErrMalformedAIResponse)
	}
	ai.ReportSchemaDrift(doc)

	res := NormalizeAssessment(doc, countryName, profile.VisaIntent)
	observability.ObserveAssessment("success", res.OverallScore)

	if userID != "" {
		s.logActivity(ctx, userID, domain.ActivityAssessmentGenerated, map[string]any{
			"country": countryName,
			"score":   res.OverallScore,
			"status":  string(res.Status),
			"visa":    res.TargetVisaCategory,
		})
	}
	return res, nil
}

// Save appends a finished result to the user's history. Results are immutable
// once stored.
func (s AssessmentService) Save(ctx domain.Context, userID string, res domain.AssessmentResult) error {
	if userID == "" || res.ID == "" {
		return fmt.Errorf("%w: user id and assessment required", domain.ErrInvalidArgument)
	}
	return s.History.Append(ctx, userID, res)
}

// ListHistory returns the user's stored assessments, newest first.
func (s AssessmentService) ListHistory(ctx domain.Context, userID string) ([]domain.AssessmentResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	return s.History.ListByUser(ctx, userID)
}

// logActivity records and mirrors an activity, swallowing every failure.
func (s AssessmentService) logActivity(ctx domain.Context, userID string, typ domain.ActivityType, details map[string]any) {
	a := domain.Activity{UserID: userID, Type: typ, Details: details}
	if s.Activities != nil {
		if _, err := s.Activities.Record(ctx, a); err != nil {
			slog.Error("failed to record activity", slog.String("type", string(typ)), slog.Any("error", err))
		}
	}
	if s.Events != nil {
		if err := s.Events.PublishActivity(ctx, a); err != nil {
			observability.ActivityPublishFailures.Inc()
			slog.Warn("failed to publish activity event", slog.String("type", string(typ)), slog.Any("error", err))
		}
	}
}

// buildPrompt describes the seven required output facets for one country.
func buildPrompt(p domain.UserProfile, countryName string) string {
	summary := p.JobTitle
	if summary == "" {
		summary = p.ProfessionalBackground
		if len(summary) > 150 {
			summary = summary[:150]
		}
	}
	if summary == "" {
		summary = "Not provided"
	}
	langTest, langScore := "Not specified", "N/A"
	if p.LanguageScores != nil {
		if p.LanguageScores.Test != "" {
			langTest = p.LanguageScores.Test
		}
		if p.LanguageScores.Score != "" {
			langScore = p.LanguageScores.Score
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conduct a detailed visa eligibility assessment for %s based on the user's professional profile.\n\n", countryName)
	b.WriteString("USER PROFILE CONTEXT:\n")
	fmt.Fprintf(&b, "- Name: %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(&b, "- Education: %s in %s\n", p.EducationLevel, p.FieldOfStudy)
	fmt.Fprintf(&b, "- Experience: %d years\n", p.YearsOfExperience)
	fmt.Fprintf(&b, "- Current Professional Summary: %s\n", summary)
	fmt.Fprintf(&b, "- Language Proficiency: %s (Score: %s)\n", langTest, langScore)
	if p.VisaIntent != "" {
		fmt.Fprintf(&b, "- Intended Visa Category: %s\n", p.VisaIntent)
	}
	b.WriteString(`
OUTPUT REQUIREMENTS:
1. Overall eligibility score (0-100).
2. Status classification: 'Fully Eligible', 'Partially Eligible', or 'Not Eligible'.
3. Identify ALL applicable visa pathways including but not limited to Skilled Worker, Student, Global Talent, Innovator Founder, H1-B, Digital Nomad, or Start-up Visas.
4. For EACH pathway identified, provide an official government website URL (e.g., .gov, .gc.ca, .gov.uk, etc.) where the user can find more information.
5. Provide a 3-step Settlement Roadmap detailing the progression from landing to citizenship.
6. A concise piece of expert advice (max 20 words).
7. A DETAILED MATCH BREAKDOWN:
   - Strengths: List why the profile is a good match for the search criteria.
   - Weaknesses: List why it is NOT a match or where it falls short.
   - Improvement Points: List specific actions to boost the score.

STRICT CONSTRAINTS:
- Return ONLY valid JSON matching the schema provided.
`)
	return b.String()
}
