package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// UserRepo persists accounts and their embedded profiles.
type UserRepo struct{ Pool PgxPool }

// NewUserRepo constructs a UserRepo with the given pool.
func NewUserRepo(p PgxPool) *UserRepo { return &UserRepo{Pool: p} }

// Create inserts a new user and returns its id.
func (r *UserRepo) Create(ctx domain.Context, u domain.User) (string, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.Create")
	defer span.End()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	var profile []byte
	if u.Profile != nil {
		b, err := json.Marshal(u.Profile)
		if err != nil {
			return "", fmt.Errorf("op=user.create: %w", err)
		}
		profile = b
	}
	q := `INSERT INTO users (id, email, password_hash, full_name, provider, role, is_verified, avatar, profile, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)`
	_, err := r.Pool.Exec(ctx, q, u.ID, u.Email, u.PasswordHash, u.FullName, u.Provider, u.Role, u.IsVerified, u.Avatar, profile, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", fmt.Errorf("%w: email taken", domain.ErrConflict)
		}
		return "", fmt.Errorf("op=user.create: %w", err)
	}
	return u.ID, nil
}

const userColumns = `id, email, password_hash, full_name, provider, role, is_verified, avatar, profile, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var profile []byte
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Provider, &u.Role, &u.IsVerified, &u.Avatar, &profile, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	if len(profile) > 0 {
		var p domain.UserProfile
		if err := json.Unmarshal(profile, &p); err == nil {
			u.Profile = &p
		}
	}
	return u, nil
}

// GetByID loads a user by id.
func (r *UserRepo) GetByID(ctx domain.Context, id string) (domain.User, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
		}
		return domain.User{}, fmt.Errorf("op=user.get: %w", err)
	}
	return u, nil
}

// GetByEmail loads a user by email.
func (r *UserRepo) GetByEmail(ctx domain.Context, email string) (domain.User, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("%w: email", domain.ErrNotFound)
		}
		return domain.User{}, fmt.Errorf("op=user.get_by_email: %w", err)
	}
	return u, nil
}

// UpdateProfile replaces the embedded profile document.
func (r *UserRepo) UpdateProfile(ctx domain.Context, id string, p domain.UserProfile) error {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.UpdateProfile")
	defer span.End()

	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("op=user.update_profile: %w", err)
	}
	tag, err := r.Pool.Exec(ctx, `UPDATE users SET profile=$2, updated_at=$3 WHERE id=$1`, id, b, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=user.update_profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return nil
}

// SetVerified marks the account as email-verified.
func (r *UserRepo) SetVerified(ctx domain.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE users SET is_verified=TRUE, updated_at=$2 WHERE id=$1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=user.set_verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return nil
}

// List returns regular users, optionally filtered by name or email.
func (r *UserRepo) List(ctx domain.Context, search string) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE role='user'`
	args := []any{}
	if search != "" {
		q += ` AND (full_name ILIKE $1 OR email ILIKE $1)`
		args = append(args, "%"+search+"%")
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=user.list: %w", err)
	}
	defer rows.Close()
	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("op=user.list: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
