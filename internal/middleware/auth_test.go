// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/storefront/internal/core"
)

type stubSessions struct {
	claims *SessionClaims
}

func (s stubSessions) GetSession(*http.Request) *SessionClaims {
	return s.claims
}

type stubGate struct {
	err   error
	calls int
}

func (g *stubGate) RequireAdmin(*http.Request) error {
	g.calls++
	return g.err
}

func TestAuthenticator(t *testing.T) {
	var seenUser, seenEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = GetUserID(r.Context())
		seenEmail = GetUserEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Authenticator(stubSessions{})(next).ServeHTTP(
			rec,
			httptest.NewRequest(http.MethodGet, "/v1/orders", nil),
		)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("session identity reaches handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		sessions := stubSessions{claims: &SessionClaims{
			UserID: "u-1",
			Email:  "alice@example.com",
		}}
		Authenticator(sessions)(next).ServeHTTP(
			rec,
			httptest.NewRequest(http.MethodGet, "/v1/orders", nil),
		)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u-1", seenUser)
		assert.Equal(t, "alice@example.com", seenEmail)
	})
}

func TestOptionalAuth(t *testing.T) {
	var authed bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed = IsAuthenticated(r.Context())
	})

	OptionalAuth(stubSessions{})(next).ServeHTTP(
		httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/", nil),
	)
	assert.False(t, authed)

	OptionalAuth(stubSessions{claims: &SessionClaims{UserID: "u-2"}})(next).ServeHTTP(
		httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/", nil),
	)
	assert.True(t, authed)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		gateErr    error
		wantStatus int
		wantCalled bool
	}{
		{name: "admin passes", gateErr: nil, wantStatus: http.StatusOK, wantCalled: true},
		{
			name:       "no session",
			gateErr:    fmt.Errorf("require admin: %w", core.ErrUnauthorized),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not an admin",
			gateErr:    fmt.Errorf("require admin: %w", core.ErrForbidden),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "role lookup failed",
			gateErr:    fmt.Errorf("load role: connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			gate := &stubGate{err: tt.gateErr}
			rec := httptest.NewRecorder()
			RequireAdmin(gate)(next).ServeHTTP(
				rec,
				httptest.NewRequest(http.MethodGet, "/v1/admin/orders", nil),
			)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, 1, gate.calls)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}
