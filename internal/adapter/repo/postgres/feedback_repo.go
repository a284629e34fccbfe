package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// FeedbackRepo persists feedback tickets and their reply threads.
type FeedbackRepo struct{ Pool PgxPool }

// NewFeedbackRepo constructs a FeedbackRepo with the given pool.
func NewFeedbackRepo(p PgxPool) *FeedbackRepo { return &FeedbackRepo{Pool: p} }

// Create inserts a new ticket and returns its id.
func (r *FeedbackRepo) Create(ctx domain.Context, f domain.Feedback) (string, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	replies, err := json.Marshal(f.Replies)
	if err != nil {
		return "", fmt.Errorf("op=feedback.create: %w", err)
	}
	q := `INSERT INTO feedback (id, user_id, message, category, status, replies, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$7)`
	if _, err := r.Pool.Exec(ctx, q, f.ID, f.UserID, f.Message, f.Category, f.Status, replies, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=feedback.create: %w", err)
	}
	return f.ID, nil
}

const feedbackColumns = `id, user_id, message, category, status, replies, created_at, updated_at`

func scanFeedback(row pgx.Row) (domain.Feedback, error) {
	var f domain.Feedback
	var replies []byte
	if err := row.Scan(&f.ID, &f.UserID, &f.Message, &f.Category, &f.Status, &replies, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return domain.Feedback{}, err
	}
	if len(replies) > 0 {
		_ = json.Unmarshal(replies, &f.Replies)
	}
	if f.Replies == nil {
		f.Replies = []domain.FeedbackReply{}
	}
	return f, nil
}

// GetByID loads one ticket.
func (r *FeedbackRepo) GetByID(ctx domain.Context, id string) (domain.Feedback, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE id=$1`, id)
	f, err := scanFeedback(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Feedback{}, fmt.Errorf("%w: feedback %s", domain.ErrNotFound, id)
		}
		return domain.Feedback{}, fmt.Errorf("op=feedback.get: %w", err)
	}
	return f, nil
}

func (r *FeedbackRepo) list(ctx domain.Context, q string, args ...any) ([]domain.Feedback, error) {
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=feedback.list: %w", err)
	}
	defer rows.Close()
	tickets := make([]domain.Feedback, 0)
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("op=feedback.list: %w", err)
		}
		tickets = append(tickets, f)
	}
	return tickets, rows.Err()
}

// ListByUser returns the user's tickets, newest first.
func (r *FeedbackRepo) ListByUser(ctx domain.Context, userID string) ([]domain.Feedback, error) {
	return r.list(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

// ListAll returns every ticket, newest first.
func (r *FeedbackRepo) ListAll(ctx domain.Context) ([]domain.Feedback, error) {
	return r.list(ctx, `SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC`)
}

// AddReply appends a reply to the ticket's thread.
func (r *FeedbackRepo) AddReply(ctx domain.Context, id string, reply domain.FeedbackReply) error {
	b, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("op=feedback.reply: %w", err)
	}
	q := `UPDATE feedback SET replies = replies || $2::jsonb, updated_at=$3 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, b, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=feedback.reply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: feedback %s", domain.ErrNotFound, id)
	}
	return nil
}

// UpdateStatus moves the ticket through its lifecycle.
func (r *FeedbackRepo) UpdateStatus(ctx domain.Context, id string, status domain.FeedbackStatus) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE feedback SET status=$2, updated_at=$3 WHERE id=$1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=feedback.status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: feedback %s", domain.ErrNotFound, id)
	}
	return nil
}
