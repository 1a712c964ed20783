// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(setupTestRedis(t), RateLimitConfig{
		Limit:    PerMinute(2, 2),
		FailOpen: true,
	})
	handler := rl.Handler(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	rl := NewRateLimiter(setupTestRedis(t), RateLimitConfig{
		Limit: PerMinute(1, 1),
	})
	handler := rl.Handler(okHandler())

	for _, addr := range []string{"198.51.100.1:1", "198.51.100.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, addr)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiterBypass(t *testing.T) {
	rl := NewRateLimiter(setupTestRedis(t), RateLimitConfig{
		Limit:      PerMinute(1, 1),
		BypassFunc: func(r *http.Request) bool { return r.URL.Path == "/healthz" },
	})
	handler := rl.Handler(okHandler())

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestKeyFunctions(t *testing.T) {
	req := httptest.NewRequest(
		http.MethodGet,
		"/v1/orders/6f1c2b9e-8d7a-4c3b-9e2f-1a2b3c4d5e6f",
		nil,
	)
	req.RemoteAddr = "192.0.2.10:4000"

	assert.Equal(t, "ratelimit:ip:192.0.2.10", KeyByIP(req))
	assert.Equal(
		t,
		"ratelimit:ip:192.0.2.10:endpoint:/v1/orders/{id}",
		KeyByIPAndEndpoint(req),
	)

	req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.9")
	assert.Equal(t, "ratelimit:ip:172.16.0.9", KeyByIP(req))
}
