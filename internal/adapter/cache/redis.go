// Package cache provides the Redis-backed cache and short-lived code store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

const (
	countryListKey = "countries:active"
	codeKeyPrefix  = "verify:"
)

// Redis wraps a go-redis client behind the cache and code-store ports.
type Redis struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("op=redis.ping: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewFromClient wraps an existing client. Used by tests.
func NewFromClient(client *redis.Client) *Redis { return &Redis{client: client} }

// Close releases the underlying client.
func (r *Redis) Close() error { return r.client.Close() }

// Ping reports connection health for readiness checks.
func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// GetList returns the cached active country list. A miss or a decode failure
// both report absent so callers fall through to the repository.
func (r *Redis) GetList(ctx domain.Context) ([]domain.Country, bool) {
	raw, err := r.client.Get(ctx, countryListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("country cache read failed", slog.Any("error", err))
		}
		return nil, false
	}
	var countries []domain.Country
	if err := json.Unmarshal(raw, &countries); err != nil {
		slog.Warn("country cache decode failed", slog.Any("error", err))
		return nil, false
	}
	return countries, true
}

// SetList stores the active country list with a TTL.
func (r *Redis) SetList(ctx domain.Context, countries []domain.Country, ttl time.Duration) error {
	b, err := json.Marshal(countries)
	if err != nil {
		return fmt.Errorf("op=cache.set_list: %w", err)
	}
	if err := r.client.Set(ctx, countryListKey, b, ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.set_list: %w", err)
	}
	return nil
}

// Invalidate drops the cached country list.
func (r *Redis) Invalidate(ctx domain.Context) error {
	if err := r.client.Del(ctx, countryListKey).Err(); err != nil {
		return fmt.Errorf("op=cache.invalidate: %w", err)
	}
	return nil
}

// Put stores a verification code for the email with a TTL.
func (r *Redis) Put(ctx domain.Context, email, code string, ttl time.Duration) error {
	if err := r.client.Set(ctx, codeKeyPrefix+email, code, ttl).Err(); err != nil {
		return fmt.Errorf("op=codes.put: %w", err)
	}
	return nil
}

// Get returns the stored code for the email. Expired or absent codes map to
// ErrNotFound.
func (r *Redis) Get(ctx domain.Context, email string) (string, error) {
	code, err := r.client.Get(ctx, codeKeyPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: verification code", domain.ErrNotFound)
		}
		return "", fmt.Errorf("op=codes.get: %w", err)
	}
	return code, nil
}

// Delete removes the code after a successful verification.
func (r *Redis) Delete(ctx domain.Context, email string) error {
	if err := r.client.Del(ctx, codeKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("op=codes.delete: %w", err)
	}
	return nil
}
