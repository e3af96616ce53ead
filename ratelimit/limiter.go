// Package ratelimit throttles identity verification attempts per client so a
// stolen identifier cannot be brute-forced through the public verify endpoint.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter answers whether one more attempt is allowed for a key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// fixedWindowScript counts attempts in the current window atomically.
// KEYS[1] = counter key, ARGV[1] = window seconds, ARGV[2] = limit
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
    return 0
end
return 1
`)

// RedisLimiter is a fixed-window counter in Redis. A Redis outage fails open:
// verification availability beats strict throttling, and the attempt still
// lands in the audit timeline either way.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(addr string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		limit:  limit,
		window: window,
		prefix: "verify_attempts",
	}
}

// Allow counts one attempt for the key and reports whether it is within the
// window's limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	counter := fmt.Sprintf("%s:%s", l.prefix, key)
	res, err := fixedWindowScript.Run(ctx, l.client, []string{counter}, int(l.window.Seconds()), l.limit).Int()
	if err != nil {
		return true, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return res == 1, nil
}

// Unlimited is the no-op limiter used when no Redis address is configured.
type Unlimited struct{}

func (Unlimited) Allow(ctx context.Context, key string) (bool, error) { return true, nil }
