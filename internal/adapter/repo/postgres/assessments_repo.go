package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// AssessmentRepo stores finished assessment results per user, append-only.
type AssessmentRepo struct{ Pool PgxPool }

// NewAssessmentRepo constructs an AssessmentRepo with the given pool.
func NewAssessmentRepo(p PgxPool) *AssessmentRepo { return &AssessmentRepo{Pool: p} }

// Append inserts a result into the user's history. Stored results are never
// updated in place.
func (r *AssessmentRepo) Append(ctx domain.Context, userID string, res domain.AssessmentResult) error {
	tracer := otel.Tracer("repo.assessments")
	ctx, span := tracer.Start(ctx, "assessments.Append")
	defer span.End()

	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("op=assessment.append: %w", err)
	}
	q := `INSERT INTO assessments (id, user_id, payload, created_at) VALUES ($1,$2,$3,$4)`
	if _, err := r.Pool.Exec(ctx, q, res.ID, userID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=assessment.append: %w", err)
	}
	return nil
}

// ListByUser loads the user's history, newest first.
func (r *AssessmentRepo) ListByUser(ctx domain.Context, userID string) ([]domain.AssessmentResult, error) {
	tracer := otel.Tracer("repo.assessments")
	ctx, span := tracer.Start(ctx, "assessments.ListByUser")
	defer span.End()

	rows, err := r.Pool.Query(ctx, `SELECT payload FROM assessments WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("op=assessment.list: %w", err)
	}
	defer rows.Close()
	results := make([]domain.AssessmentResult, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("op=assessment.list: %w", err)
		}
		var res domain.AssessmentResult
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("op=assessment.list: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
