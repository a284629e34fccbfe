package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// CountryService manages destination reference data with a read-through cache
// on the public list.
type CountryService struct {
	Countries  domain.CountryRepository
	Cache      domain.CountryCache
	Activities domain.ActivityRepository
	CacheTTL   time.Duration
}

// NewCountryService constructs a CountryService. Cache may be nil.
func NewCountryService(repo domain.CountryRepository, cache domain.CountryCache, activities domain.ActivityRepository, ttl time.Duration) CountryService {
	return CountryService{Countries: repo, Cache: cache, Activities: activities, CacheTTL: ttl}
}

// ListActive returns active countries, serving from cache when possible.
func (s CountryService) ListActive(ctx domain.Context) ([]domain.Country, error) {
	if s.Cache != nil {
		if cached, ok := s.Cache.GetList(ctx); ok {
			return cached, nil
		}
	}
	countries, err := s.Countries.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.SetList(ctx, countries, s.CacheTTL); err != nil {
			slog.Warn("country cache write failed", slog.Any("error", err))
		}
	}
	return countries, nil
}

// Get returns one country and records a view activity when userID is known.
func (s CountryService) Get(ctx domain.Context, id, userID string) (domain.Country, error) {
	c, err := s.Countries.GetByID(ctx, id)
	if err != nil {
		return domain.Country{}, err
	}
	if userID != "" && s.Activities != nil {
		a := domain.Activity{UserID: userID, Type: domain.ActivityCountryViewed, Details: map[string]any{"country": c.Name}}
		if _, err := s.Activities.Record(ctx, a); err != nil {
			slog.Warn("failed to record country view", slog.Any("error", err))
		}
	}
	return c, nil
}

// Create adds a new country (admin operation).
func (s CountryService) Create(ctx domain.Context, c domain.Country) (domain.Country, error) {
	if c.Name == "" {
		return domain.Country{}, fmt.Errorf("%w: country name required", domain.ErrInvalidArgument)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.IsActive = true
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	if err := s.Countries.Upsert(ctx, c); err != nil {
		return domain.Country{}, fmt.Errorf("create country: %w", err)
	}
	s.invalidate(ctx)
	return c, nil
}

// Update replaces a country's reference data (admin operation).
func (s CountryService) Update(ctx domain.Context, c domain.Country) error {
	if c.ID == "" {
		return fmt.Errorf("%w: country id required", domain.ErrInvalidArgument)
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.Countries.Update(ctx, c); err != nil {
		return fmt.Errorf("update country: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// Deactivate hides a country from the public list (admin operation).
func (s CountryService) Deactivate(ctx domain.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: country id required", domain.ErrInvalidArgument)
	}
	if err := s.Countries.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate country: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s CountryService) invalidate(ctx domain.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		slog.Warn("country cache invalidate failed", slog.Any("error", err))
	}
}
