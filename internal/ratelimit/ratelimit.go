// Package ratelimit implements fixed-window request counting per client key.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the state of a key's window after one hit.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts one hit for key and reports whether it stays within the limit.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type Config struct {
	Max    int
	Window time.Duration
}

// windowStart aligns now to the start of its fixed window.
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

func result(count int64, cfg Config, start time.Time) Result {
	remaining := cfg.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(cfg.Max),
		Limit:     cfg.Max,
		Remaining: remaining,
		ResetAt:   start.Add(cfg.Window),
	}
}
