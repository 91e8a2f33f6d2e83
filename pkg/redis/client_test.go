package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	return NewFromAddr(srv.Addr()), srv
}

func TestIncrWithTTLSetsWindowOnce(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	count, err := client.IncrWithTTL(ctx, "slx:rate_limit:test", time.Minute)
	if err != nil {
		t.Fatalf("incr failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected first increment to return 1, got %d", count)
	}
	if ttl := srv.TTL("slx:rate_limit:test"); ttl != time.Minute {
		t.Fatalf("expected ttl to be set on first increment, got %v", ttl)
	}

	srv.FastForward(30 * time.Second)
	if _, err := client.IncrWithTTL(ctx, "slx:rate_limit:test", time.Minute); err != nil {
		t.Fatalf("second incr failed: %v", err)
	}
	if ttl := srv.TTL("slx:rate_limit:test"); ttl != 30*time.Second {
		t.Fatalf("subsequent increments must not reset the window, got %v", ttl)
	}
}

func TestFixedWindowAllow(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := client.FixedWindowAllow(ctx, "webhook:10.0.0.1", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow failed: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, count, err := client.FixedWindowAllow(ctx, "webhook:10.0.0.1", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if allowed {
		t.Fatalf("request over the limit must be denied (count=%d)", count)
	}

	srv.FastForward(time.Minute + time.Second)
	allowed, _, err = client.FixedWindowAllow(ctx, "webhook:10.0.0.1", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow failed after window: %v", err)
	}
	if !allowed {
		t.Fatal("window expiry should reset the counter")
	}
}

func TestBuildKeyNamespacing(t *testing.T) {
	client, _ := newTestClient(t)
	if got := client.RateLimitKey("webhook:ip"); got != "slx:rate_limit:webhook:ip" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := client.CounterKey(""); got != "slx:counter" {
		t.Fatalf("unexpected key %q", got)
	}
}
