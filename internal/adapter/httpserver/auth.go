package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/itnext-dev/visa-pathway/internal/domain"
	"github.com/itnext-dev/visa-pathway/internal/usecase"
)

type userIDKey struct{}
type roleKey struct{}

func userIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey{}).(string); ok {
		return v
	}
	return ""
}

func roleFrom(ctx context.Context) string {
	if v, ok := ctx.Value(roleKey{}).(string); ok {
		return v
	}
	return ""
}

// BearerAuth validates the Authorization header and puts the caller's
// identity on the context.
func BearerAuth(auth usecase.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, r, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized), nil)
				return
			}
			claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, r, err, nil)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey{}, claims.Subject)
			ctx = context.WithValue(ctx, roleKey{}, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth parses a bearer token when one is present but lets anonymous
// requests through.
func OptionalAuth(auth usecase.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				if claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer ")); err == nil {
					ctx := context.WithValue(r.Context(), userIDKey{}, claims.Subject)
					ctx = context.WithValue(ctx, roleKey{}, claims.Role)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route group to admin callers. Must run after BearerAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if roleFrom(r.Context()) != domain.RoleAdmin {
			writeError(w, r, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
