package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/taba-id/taba/internal/rbac"
)

// JWTMiddleware authenticates the bearer token and puts its subject and role
// into the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer")
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "bad token")
				return
			}
			ctx := rbac.WithSubject(r.Context(), c.Sub)
			ctx = rbac.WithRole(ctx, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleSource looks up the current role of a user.
type RoleSource interface {
	Role(ctx context.Context, userID string) (string, error)
}

// AttachRole replaces the token's role with the stored one, so role changes
// apply before the token expires. A user without a profile keeps the claim
// role only when allowClaimFallback is set (dev); lookup failures deny.
func AttachRole(src RoleSource, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := rbac.SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			role, err := src.Role(ctx, sub)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, ErrProfileNotFound) && allowClaimFallback && claimRole != "":
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrProfileNotFound):
				writeError(w, http.StatusForbidden, "forbidden")
			default:
				writeError(w, http.StatusServiceUnavailable, "profile lookup failed")
			}
		})
	}
}
