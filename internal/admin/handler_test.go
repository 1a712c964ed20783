// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/middleware"
)

type fixedSession struct {
	claims *middleware.SessionClaims
}

func (s fixedSession) GetSession(*http.Request) *middleware.SessionClaims {
	return s.claims
}

type roleGate struct {
	role string
}

func (g roleGate) RequireAdmin(r *http.Request) error {
	switch {
	case middleware.GetUserID(r.Context()) == "":
		return core.ErrUnauthorized
	case g.role != "admin":
		return core.ErrForbidden
	}
	return nil
}

type staticStats map[string]int

func (s staticStats) Stats(context.Context) (map[string]int, error) {
	return s, nil
}

type failingStats struct{}

func (failingStats) Stats(context.Context) (map[string]int, error) {
	return nil, errors.New("db down")
}

type fakeDB struct {
	pingErr error
}

func (f fakeDB) Ping(context.Context) error { return f.pingErr }

func (fakeDB) Stats() sql.DBStats {
	return sql.DBStats{MaxOpenConnections: 25, OpenConnections: 3, InUse: 1, Idle: 2}
}

type fakeRedis struct {
	pingErr error
}

func (f fakeRedis) Ping(context.Context) error { return f.pingErr }

func (fakeRedis) PoolStats() *redis.PoolStats {
	return &redis.PoolStats{Hits: 7, TotalConns: 4, IdleConns: 3}
}

func newRouter(claims *middleware.SessionClaims, role string, orders OrderStats) chi.Router {
	return newConsole(claims, role, HandlerConfig{Orders: orders})
}

func newConsole(claims *middleware.SessionClaims, role string, cfg HandlerConfig) chi.Router {
	h := NewHandler(cfg)

	r := chi.NewRouter()
	h.RegisterRoutes(r,
		middleware.OptionalAuth(fixedSession{claims: claims}),
		middleware.RequireAdmin(roleGate{role: role}),
		func(r chi.Router) {
			r.Get("/mounted", func(w http.ResponseWriter, _ *http.Request) {
				core.OK(w, "reached")
			})
		},
	)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestAdminRoutesAreGated(t *testing.T) {
	user := &middleware.SessionClaims{UserID: "u1", Email: "u1@example.com"}
	stats := staticStats{"pending": 2}

	tests := []struct {
		name     string
		claims   *middleware.SessionClaims
		role     string
		wantCode int
	}{
		{name: "anonymous", claims: nil, role: "", wantCode: http.StatusUnauthorized},
		{name: "customer", claims: user, role: "user", wantCode: http.StatusForbidden},
		{name: "admin", claims: user, role: "admin", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(tt.claims, tt.role, stats)
			for _, path := range []string{"/admin/mounted", "/admin/stats/orders", "/admin/stats/runtime"} {
				assert.Equal(t, tt.wantCode, get(r, path).Code, path)
			}
		})
	}
}

func TestOrderStats(t *testing.T) {
	admin := &middleware.SessionClaims{UserID: "a1"}

	rec := get(newRouter(admin, "admin", staticStats{"pending": 2, "paid": 1}), "/admin/stats/orders")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Data["pending"])
	assert.Equal(t, 1, body.Data["paid"])

	rec = get(newRouter(admin, "admin", failingStats{}), "/admin/stats")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = get(newRouter(admin, "admin", nil), "/admin/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOverviewReportsStores(t *testing.T) {
	admin := &middleware.SessionClaims{UserID: "a1"}

	r := newConsole(admin, "admin", HandlerConfig{
		Database: fakeDB{},
		Redis:    fakeRedis{pingErr: errors.New("connection refused")},
		Orders:   staticStats{"paid": 4},
	})

	rec := get(r, "/admin/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data OverviewResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.Equal(t, 4, body.Data.Orders["paid"])
	assert.True(t, body.Data.Database.Healthy)
	require.NotNil(t, body.Data.Database.Pool)
	assert.Equal(t, 25, body.Data.Database.Pool.MaxOpen)
	assert.Equal(t, 1, body.Data.Database.Pool.InUse)
	assert.False(t, body.Data.Redis.Healthy)
	require.NotNil(t, body.Data.Redis.Pool)
	assert.Equal(t, uint32(7), body.Data.Redis.Pool.Hits)
	assert.NotEmpty(t, body.Data.Runtime.GoVersion)
}

func TestPoolViewsWithoutStores(t *testing.T) {
	admin := &middleware.SessionClaims{UserID: "a1"}
	r := newConsole(admin, "admin", HandlerConfig{})

	for _, path := range []string{"/admin/stats/db", "/admin/stats/redis"} {
		rec := get(r, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
