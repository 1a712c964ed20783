// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carterperez-dev/templates/storefront/internal/core"
)

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
)

// SessionClaims is the identity carried by a valid session cookie.
type SessionClaims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionReader validates the session credential on a request. It returns
// nil for anonymous callers and never fails.
type SessionReader interface {
	GetSession(r *http.Request) *SessionClaims
}

// AdminGate decides whether the caller of r holds the admin role.
type AdminGate interface {
	RequireAdmin(r *http.Request) error
}

func Authenticator(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := sessions.GetSession(r)
			if claims == nil {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func OptionalAuth(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := sessions.GetSession(r); claims != nil {
				r = r.WithContext(withClaims(r.Context(), claims))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin runs the gate before every handler it wraps. Denials are
// uniform: 401 without a session, 403 with a non-admin session.
func RequireAdmin(gate AdminGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.RequireAdmin(r); err != nil {
				handleGateError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func handleGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		core.JSONError(w, core.UnauthorizedError("authentication required"))
	case errors.Is(err, core.ErrForbidden):
		core.JSONError(w, core.ForbiddenError("admin access required"))
	default:
		core.InternalServerError(w, err)
	}
}

func withClaims(ctx context.Context, claims *SessionClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	return ctx
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
