package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/skintellect/storefront/internal/core/error"
	logx "github.com/skintellect/storefront/pkg/logger"
)

const defaultKeyPrefix = "ratelimit"

// RedisLimiter shares counters between server instances. Each window has its own key,
// created by the first INCR and expired once the window is over.
type RedisLimiter struct {
	rdb    redis.Cmdable
	cfg    Config
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(rdb redis.Cmdable, cfg Config) *RedisLimiter {
	return NewRedisLimiterWithClock(rdb, cfg, time.Now)
}

func NewRedisLimiterWithClock(rdb redis.Cmdable, cfg Config, now func() time.Time) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, cfg: cfg, prefix: defaultKeyPrefix, now: now}
}

func (r *RedisLimiter) key(client string, start time.Time) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, client, strconv.FormatInt(start.UnixMilli(), 10))
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	start := windowStart(r.now(), r.cfg.Window)
	k := r.key(key, start)

	count, err := r.rdb.Incr(ctx, k).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", k).Msg("failed to increment rate limit counter")
		return Result{}, errx.WrapRedis(err)
	}
	if count == 1 {
		if err := r.rdb.PExpire(ctx, k, r.cfg.Window).Err(); err != nil {
			logx.Warn().Err(err).Str("key", k).Msg("failed to set rate limit expiry")
		}
	}
	return result(count, r.cfg, start), nil
}

var _ Limiter = (*RedisLimiter)(nil)
