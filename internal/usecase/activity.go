package usecase

import (
	"fmt"
	"log/slog"

	"github.com/itnext-dev/visa-pathway/internal/adapter/observability"
	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// ActivityService records and lists user activities. The stream mirror is
// fire-and-forget: a publish failure never propagates.
type ActivityService struct {
	Activities domain.ActivityRepository
	Events     domain.EventPublisher
}

// NewActivityService constructs an ActivityService. Events may be nil.
func NewActivityService(repo domain.ActivityRepository, events domain.EventPublisher) ActivityService {
	return ActivityService{Activities: repo, Events: events}
}

// Record stores an activity and mirrors it to the stream.
func (s ActivityService) Record(ctx domain.Context, userID string, typ domain.ActivityType, details map[string]any) (domain.Activity, error) {
	if userID == "" || typ == "" {
		return domain.Activity{}, fmt.Errorf("%w: user id and type required", domain.ErrInvalidArgument)
	}
	a := domain.Activity{UserID: userID, Type: typ, Details: details}
	id, err := s.Activities.Record(ctx, a)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("record activity: %w", err)
	}
	a.ID = id
	if s.Events != nil {
		if err := s.Events.PublishActivity(ctx, a); err != nil {
			observability.ActivityPublishFailures.Inc()
			slog.Warn("failed to publish activity event", slog.Any("error", err))
		}
	}
	return a, nil
}

// ListForUser returns the user's activities, newest first.
func (s ActivityService) ListForUser(ctx domain.Context, userID string) ([]domain.Activity, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	return s.Activities.ListByUser(ctx, userID)
}
