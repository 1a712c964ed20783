// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/storefront/internal/core"
)

// OrderStats counts orders per lifecycle status.
type OrderStats interface {
	Stats(ctx context.Context) (map[string]int, error)
}

// DatabaseProbe is satisfied by *core.Database.
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// RedisProbe is satisfied by *core.Redis.
type RedisProbe interface {
	Ping(ctx context.Context) error
	PoolStats() *redis.PoolStats
}

type HandlerConfig struct {
	Database DatabaseProbe
	Redis    RedisProbe
	Orders   OrderStats
}

type Handler struct {
	db     DatabaseProbe
	redis  RedisProbe
	orders OrderStats
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		db:     cfg.Database,
		redis:  cfg.Redis,
		orders: cfg.Orders,
	}
}

// RegisterRoutes mounts /admin behind the session check and the admin
// gate. Every registrar in mounts receives the gated router, so nothing
// under /admin can be reached without passing the gate.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
	mounts ...func(chi.Router),
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", h.Overview)
			r.Get("/orders", h.OrderCounts)
			r.Get("/db", h.DatabasePool)
			r.Get("/redis", h.RedisPool)
			r.Get("/runtime", h.Runtime)
		})

		for _, mount := range mounts {
			mount(r)
		}
	})
}

// Overview is the console landing view: order counts first, then the
// backing stores and the process.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := h.orderCounts(ctx)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, OverviewResponse{
		Orders: counts,
		Database: StoreStatus[DBPoolStats]{
			Healthy: h.db != nil && h.db.Ping(ctx) == nil,
			Pool:    h.dbPool(),
		},
		Redis: StoreStatus[RedisPoolStats]{
			Healthy: h.redis != nil && h.redis.Ping(ctx) == nil,
			Pool:    h.redisPool(),
		},
		Runtime: readRuntime(),
	})
}

func (h *Handler) OrderCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.orderCounts(r.Context())
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "order"))
		return
	}

	core.OK(w, counts)
}

func (h *Handler) DatabasePool(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.dbPool())
}

func (h *Handler) RedisPool(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.redisPool())
}

func (h *Handler) Runtime(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntime())
}

func (h *Handler) orderCounts(ctx context.Context) (map[string]int, error) {
	if h.orders == nil {
		return map[string]int{}, nil
	}
	return h.orders.Stats(ctx)
}

func (h *Handler) dbPool() *DBPoolStats {
	if h.db == nil {
		return nil
	}

	s := h.db.Stats()
	return &DBPoolStats{
		MaxOpen:    s.MaxOpenConnections,
		Open:       s.OpenConnections,
		InUse:      s.InUse,
		Idle:       s.Idle,
		WaitCount:  s.WaitCount,
		WaitTime:   s.WaitDuration.String(),
		IdleClosed: s.MaxIdleClosed + s.MaxIdleTimeClosed,
		AgedClosed: s.MaxLifetimeClosed,
	}
}

func (h *Handler) redisPool() *RedisPoolStats {
	if h.redis == nil {
		return nil
	}

	s := h.redis.PoolStats()
	return &RedisPoolStats{
		Hits:     s.Hits,
		Misses:   s.Misses,
		Timeouts: s.Timeouts,
		Total:    s.TotalConns,
		Idle:     s.IdleConns,
		Stale:    s.StaleConns,
	}
}

func readRuntime() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapAlloc:  m.HeapAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}
