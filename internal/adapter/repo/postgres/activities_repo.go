package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// ActivityRepo persists the per-user activity log.
type ActivityRepo struct{ Pool PgxPool }

// NewActivityRepo constructs an ActivityRepo with the given pool.
func NewActivityRepo(p PgxPool) *ActivityRepo { return &ActivityRepo{Pool: p} }

// Record inserts one activity row and returns its id.
func (r *ActivityRepo) Record(ctx domain.Context, a domain.Activity) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	var details []byte
	if a.Details != nil {
		b, err := json.Marshal(a.Details)
		if err != nil {
			return "", fmt.Errorf("op=activity.record: %w", err)
		}
		details = b
	}
	q := `INSERT INTO activities (id, user_id, type, details, created_at) VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.Pool.Exec(ctx, q, a.ID, a.UserID, a.Type, details, a.CreatedAt); err != nil {
		return "", fmt.Errorf("op=activity.record: %w", err)
	}
	return a.ID, nil
}

// ListByUser returns the user's activities, newest first.
func (r *ActivityRepo) ListByUser(ctx domain.Context, userID string) ([]domain.Activity, error) {
	q := `SELECT id, user_id, type, details, created_at FROM activities WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("op=activity.list: %w", err)
	}
	defer rows.Close()
	activities := make([]domain.Activity, 0)
	for rows.Next() {
		var a domain.Activity
		var details []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=activity.list: %w", err)
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &a.Details)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
