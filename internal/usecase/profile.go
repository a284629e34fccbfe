package usecase

import (
	"fmt"

	"github.com/itnext-dev/visa-pathway/internal/domain"
	"github.com/itnext-dev/visa-pathway/pkg/textx"
)

// ProfileService reads and updates a user's migration profile.
type ProfileService struct {
	Users domain.UserRepository
}

// NewProfileService constructs a ProfileService.
func NewProfileService(users domain.UserRepository) ProfileService {
	return ProfileService{Users: users}
}

// Get returns the user including their profile.
func (s ProfileService) Get(ctx domain.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	return s.Users.GetByID(ctx, userID)
}

// Update replaces the user's profile. Free-text fields are sanitized; the
// professional-background length gate lives at the request-validation
// boundary, not here.
func (s ProfileService) Update(ctx domain.Context, userID string, p domain.UserProfile) (domain.User, error) {
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	p.ProfessionalBackground = textx.SanitizeText(p.ProfessionalBackground)
	p.FieldOfStudy = textx.SanitizeText(p.FieldOfStudy)
	if err := s.Users.UpdateProfile(ctx, userID, p); err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return s.Users.GetByID(ctx, userID)
}
