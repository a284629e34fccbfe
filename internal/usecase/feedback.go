package usecase

import (
	"fmt"
	"time"

	"github.com/itnext-dev/visa-pathway/internal/domain"
	"github.com/itnext-dev/visa-pathway/pkg/textx"
)

// FeedbackService manages feedback tickets and their admin replies.
type FeedbackService struct {
	Feedback domain.FeedbackRepository
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(repo domain.FeedbackRepository) FeedbackService {
	return FeedbackService{Feedback: repo}
}

// Submit creates a new pending ticket.
func (s FeedbackService) Submit(ctx domain.Context, userID, message, category string) (domain.Feedback, error) {
	message = textx.SanitizeText(message)
	if userID == "" || message == "" {
		return domain.Feedback{}, fmt.Errorf("%w: user id and message required", domain.ErrInvalidArgument)
	}
	if category == "" {
		category = "general"
	}
	f := domain.Feedback{
		UserID:    userID,
		Message:   message,
		Category:  category,
		Status:    domain.FeedbackPending,
		Replies:   []domain.FeedbackReply{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	id, err := s.Feedback.Create(ctx, f)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("submit feedback: %w", err)
	}
	f.ID = id
	return f, nil
}

// ListForUser returns the user's own tickets, newest first.
func (s FeedbackService) ListForUser(ctx domain.Context, userID string) ([]domain.Feedback, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	return s.Feedback.ListByUser(ctx, userID)
}

// ListAll returns every ticket (admin operation).
func (s FeedbackService) ListAll(ctx domain.Context) ([]domain.Feedback, error) {
	return s.Feedback.ListAll(ctx)
}

// Reply appends an admin reply and moves the ticket to replied.
func (s FeedbackService) Reply(ctx domain.Context, feedbackID, adminID, message string) error {
	message = textx.SanitizeText(message)
	if feedbackID == "" || message == "" {
		return fmt.Errorf("%w: feedback id and message required", domain.ErrInvalidArgument)
	}
	reply := domain.FeedbackReply{AdminID: adminID, Message: message, CreatedAt: time.Now().UTC()}
	if err := s.Feedback.AddReply(ctx, feedbackID, reply); err != nil {
		return fmt.Errorf("reply feedback: %w", err)
	}
	return s.Feedback.UpdateStatus(ctx, feedbackID, domain.FeedbackReplied)
}

// Close marks a ticket closed.
func (s FeedbackService) Close(ctx domain.Context, feedbackID string) error {
	if feedbackID == "" {
		return fmt.Errorf("%w: feedback id required", domain.ErrInvalidArgument)
	}
	return s.Feedback.UpdateStatus(ctx, feedbackID, domain.FeedbackClosed)
}
