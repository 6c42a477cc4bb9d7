package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterExhaustsWindow(t *testing.T) {
	l := NewMemoryLimiter(time.Minute, 100)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		res, err := l.Allow(ctx, "RBXG-key")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d rejected before limit reached", i+1)
		}
		if want := 100 - (i + 1); res.Remaining != want {
			t.Fatalf("request %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res, err := l.Allow(ctx, "RBXG-key")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("101st request allowed")
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", res.Remaining)
	}
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	l := NewMemoryLimiter(time.Minute, 100)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 101; i++ {
		l.Allow(ctx, "RBXG-key")
	}

	now = now.Add(61 * time.Second)
	res, err := l.Allow(ctx, "RBXG-key")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Allowed {
		t.Fatal("request after window expiry rejected")
	}
	if res.Remaining != 99 {
		t.Fatalf("remaining = %d, want 99", res.Remaining)
	}
	if got := res.ResetAt; !got.Equal(now.Add(time.Minute)) {
		t.Fatalf("resetAt = %v, want %v", got, now.Add(time.Minute))
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(time.Minute, 2)
	ctx := context.Background()

	l.Allow(ctx, "RBXG-a")
	l.Allow(ctx, "RBXG-a")
	if res, _ := l.Allow(ctx, "RBXG-a"); res.Allowed {
		t.Fatal("key a should be exhausted")
	}
	if res, _ := l.Allow(ctx, "RBXG-b"); !res.Allowed {
		t.Fatal("key b should be unaffected")
	}
}
