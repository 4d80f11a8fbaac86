// Package ratelimit implements a fixed-window request counter per client
// key stored in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 190
	DefaultKeyPrefix   = "rate_limit:"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed bool
	// Count is the counter value after this request was admitted.
	Count int64
	// RemainingTime is the number of seconds until the window resets. It is
	// only set on rejection.
	RemainingTime int64
}

// Limiter counts requests per key in a fixed window. The check and the
// increment are separate round trips, so concurrent requests from the same
// key may slightly overshoot the limit.
type Limiter struct {
	rdb         redis.Cmdable
	window      time.Duration
	maxRequests int64
	prefix      string
}

func New(rdb redis.Cmdable, window time.Duration, maxRequests int, prefix string) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Limiter{rdb: rdb, window: window, maxRequests: int64(maxRequests), prefix: prefix}
}

func NewFromConfig(rdb redis.Cmdable, cfg config.RateLimitConfig) *Limiter {
	return New(rdb, cfg.Window, cfg.MaxRequests, cfg.KeyPrefix)
}

func (l *Limiter) Window() time.Duration { return l.window }

func (l *Limiter) MaxRequests() int64 { return l.maxRequests }

// Key returns the Redis key used for client.
func (l *Limiter) Key(client string) string {
	return l.prefix + client
}

// Allow records one request for client unless the window is exhausted.
// Any Redis error is returned and the request must not be admitted.
func (l *Limiter) Allow(ctx context.Context, client string) (Decision, error) {
	key := l.Key(client)

	count, err := l.rdb.Get(ctx, key).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Decision{}, fmt.Errorf("read counter %s: %w", key, err)
	}

	if count >= l.maxRequests {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil {
			return Decision{}, fmt.Errorf("read ttl %s: %w", key, err)
		}
		// a counter without expiry would never reset
		if ttl == -1 {
			if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
				return Decision{}, fmt.Errorf("expire counter %s: %w", key, err)
			}
			ttl = l.window
		}
		remaining := int64(0)
		if ttl > 0 {
			remaining = int64((ttl + time.Second - 1) / time.Second)
		}
		return Decision{Allowed: false, Count: count, RemainingTime: remaining}, nil
	}

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("increment counter %s: %w", key, err)
	}
	// INCR created the key, whatever GET saw
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("expire counter %s: %w", key, err)
		}
	}
	return Decision{Allowed: true, Count: n}, nil
}
