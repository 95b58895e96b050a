package auth

import (
	"context"
	"net/http"
)

type ctxKey int

const claimsKey ctxKey = 1

// ClaimsFromContext extracts the session claims attached by Middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}

// WithClaims attaches session claims to a context.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// FromRequest reads and verifies the session cookie.
// Returns (claims, true) when a valid session is present.
func FromRequest(r *http.Request, j JWT) (Claims, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return Claims{}, false
	}
	claims, err := j.Verify(cookie.Value)
	if err != nil {
		return Claims{}, false
	}
	return claims, true
}

// errorWriter decouples the middleware from the handlers package's JSON
// error helper.
type errorWriter func(w http.ResponseWriter, statusCode int, message string) error

// RequireRole wraps a handler so only sessions with one of the allowed
// roles pass. Missing or invalid sessions get 401, valid sessions with the
// wrong role get 403.
func RequireRole(j JWT, writeError errorWriter, roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromRequest(r, j)
			if !ok {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !allowed[claims.Role] {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next(w, r.WithContext(WithClaims(r.Context(), claims)))
		}
	}
}
