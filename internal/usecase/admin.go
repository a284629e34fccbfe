package usecase

import (
	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// AdminService exposes user listing for the admin surface.
type AdminService struct {
	Users      domain.UserRepository
	Activities domain.ActivityRepository
}

// NewAdminService constructs an AdminService.
func NewAdminService(users domain.UserRepository, activities domain.ActivityRepository) AdminService {
	return AdminService{Users: users, Activities: activities}
}

// ListUsers returns regular users, optionally filtered by a name/email search.
func (s AdminService) ListUsers(ctx domain.Context, search string) ([]domain.User, error) {
	return s.Users.List(ctx, search)
}

// UserActivity returns one user together with their recorded activities.
func (s AdminService) UserActivity(ctx domain.Context, userID string) (domain.User, []domain.Activity, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, nil, err
	}
	acts, err := s.Activities.ListByUser(ctx, userID)
	if err != nil {
		return domain.User{}, nil, err
	}
	return u, acts, nil
}
