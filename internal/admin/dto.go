// AngelaMos | 2026
// dto.go

package admin

type OverviewResponse struct {
	Orders   map[string]int              `json:"orders"`
	Database StoreStatus[DBPoolStats]    `json:"database"`
	Redis    StoreStatus[RedisPoolStats] `json:"redis"`
	Runtime  RuntimeStats                `json:"runtime"`
}

type StoreStatus[T any] struct {
	Healthy bool `json:"healthy"`
	Pool    *T   `json:"pool,omitempty"`
}

type DBPoolStats struct {
	MaxOpen    int    `json:"max_open"`
	Open       int    `json:"open"`
	InUse      int    `json:"in_use"`
	Idle       int    `json:"idle"`
	WaitCount  int64  `json:"wait_count"`
	WaitTime   string `json:"wait_time"`
	IdleClosed int64  `json:"idle_closed"`
	AgedClosed int64  `json:"aged_closed"`
}

type RedisPoolStats struct {
	Hits     uint32 `json:"hits"`
	Misses   uint32 `json:"misses"`
	Timeouts uint32 `json:"timeouts"`
	Total    uint32 `json:"total"`
	Idle     uint32 `json:"idle"`
	Stale    uint32 `json:"stale"`
}

type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	HeapAlloc  uint64 `json:"heap_alloc_bytes"`
	Sys        uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
}
