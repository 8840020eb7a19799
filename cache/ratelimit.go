package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	rdb redis.Cmdable
}

func NewRateLimiter(rdb redis.Cmdable) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// Allow counts one hit against key. When the window is exhausted it returns
// false and how long until the window resets.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	k := rateLimitKey(key)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	// first hit of a window, or a key that lost its expiry
	remaining := ttl.Val()
	if remaining < 0 {
		if err := l.rdb.Expire(ctx, k, window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
		}
		remaining = window
	}

	if incr.Val() > int64(limit) {
		return false, remaining, nil
	}
	return true, 0, nil
}
