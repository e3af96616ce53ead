package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestUnlimitedAlwaysAllows(t *testing.T) {
	var l Unlimited
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(context.Background(), "any")
		if err != nil || !ok {
			t.Fatalf("unlimited must allow, got ok=%v err=%v", ok, err)
		}
	}
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping redis-backed test")
	}

	l := NewRedisLimiter(addr, 3, time.Minute)
	key := "test-" + time.Now().Format("150405.000000000")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, key)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("attempt %d must be within the window", i)
		}
	}

	ok, err := l.Allow(ctx, key)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if ok {
		t.Fatal("fourth attempt must be throttled")
	}
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	// Nothing listens on this port; the limiter must allow and surface the
	// error for logging.
	l := NewRedisLimiter("127.0.0.1:1", 1, time.Minute)
	ok, err := l.Allow(context.Background(), "any")
	if err == nil {
		t.Fatal("expected a redis error")
	}
	if !ok {
		t.Fatal("redis outage must fail open")
	}
}
