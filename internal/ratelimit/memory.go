package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps counters in process memory. All keys share aligned windows, so the
// whole table is dropped when a new window starts.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu     sync.Mutex
	start  time.Time
	counts map[string]int64
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return NewMemoryLimiterWithClock(cfg, time.Now)
}

func NewMemoryLimiterWithClock(cfg Config, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{cfg: cfg, now: now, counts: make(map[string]int64)}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	start := windowStart(m.now(), m.cfg.Window)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !start.Equal(m.start) {
		m.start = start
		clear(m.counts)
	}
	m.counts[key]++
	return result(m.counts[key], m.cfg, start), nil
}

var _ Limiter = (*MemoryLimiter)(nil)
