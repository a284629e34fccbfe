package usecase

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// AuthService handles registration, login, token issuance and email
// verification codes.
type AuthService struct {
	Users     domain.UserRepository
	Codes     domain.CodeStore
	JWTSecret []byte
	TokenTTL  time.Duration
	CodeTTL   time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(users domain.UserRepository, codes domain.CodeStore, secret string, tokenTTL, codeTTL time.Duration) AuthService {
	return AuthService{Users: users, Codes: codes, JWTSecret: []byte(secret), TokenTTL: tokenTTL, CodeTTL: codeTTL}
}

// Register creates a new account. Password may be empty for the google
// provider; google accounts are verified on creation.
func (s AuthService) Register(ctx domain.Context, email, password, fullName, provider, avatar string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || fullName == "" {
		return domain.User{}, "", fmt.Errorf("%w: email and full name required", domain.ErrInvalidArgument)
	}
	if provider == "" {
		provider = domain.ProviderEmail
	}
	if provider == domain.ProviderEmail && password == "" {
		return domain.User{}, "", fmt.Errorf("%w: password required", domain.ErrInvalidArgument)
	}

	if existing, err := s.Users.GetByEmail(ctx, email); err == nil && existing.ID != "" {
		return domain.User{}, "", fmt.Errorf("%w: user already exists", domain.ErrConflict)
	}

	u := domain.User{
		Email:      email,
		FullName:   fullName,
		Provider:   provider,
		Role:       domain.RoleUser,
		Avatar:     avatar,
		IsVerified: provider == domain.ProviderGoogle,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			return domain.User{}, "", fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	id, err := s.Users.Create(ctx, u)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}
	u.ID = id

	token, err := s.issueToken(u)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// Login authenticates by email and, for email-provider accounts, password.
func (s AuthService) Login(ctx domain.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
	}
	if u.Provider == domain.ProviderEmail {
		if !VerifyPassword(password, u.PasswordHash) {
			return domain.User{}, "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
	}
	token, err := s.issueToken(u)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// IssueVerificationCode stores a short-lived 6-digit code for the email.
// Delivery is a mail collaborator's concern; the code is returned to the
// caller for that purpose.
func (s AuthService) IssueVerificationCode(ctx domain.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email required", domain.ErrInvalidArgument)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.Codes.Put(ctx, email, code, s.CodeTTL); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// VerifyEmail checks the code and marks the account verified.
func (s AuthService) VerifyEmail(ctx domain.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	stored, err := s.Codes.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: no pending verification", domain.ErrUnauthorized)
	}
	if stored != code {
		return fmt.Errorf("%w: wrong verification code", domain.ErrUnauthorized)
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if err := s.Users.SetVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	_ = s.Codes.Delete(ctx, email)
	return nil
}

// Claims carried in issued bearer tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s AuthService) issueToken(u domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates a bearer token and returns its claims.
func (s AuthService) ParseToken(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.JWTSecret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return claims, nil
}
