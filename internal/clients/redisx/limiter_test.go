package redisx

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "user-a:start", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d denied under limit", i+1)
		}
		if want := 3 - (i + 1); res.Remaining != want {
			t.Errorf("request %d Remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	res, err := l.Allow(ctx, "user-a:start", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if res.Allowed {
		t.Error("request over limit was allowed")
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want in (0, 1m]", res.RetryAfter)
	}
}

func TestMemoryLimiterIsolatesKeys(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "user-a:message", 1, time.Minute); !res.Allowed {
		t.Fatal("first request for user-a denied")
	}
	if res, _ := l.Allow(ctx, "user-a:message", 1, time.Minute); res.Allowed {
		t.Fatal("second request for user-a allowed over limit")
	}
	if res, _ := l.Allow(ctx, "user-b:message", 1, time.Minute); !res.Allowed {
		t.Fatal("user-b blocked by user-a's window")
	}
}

func TestMemoryLimiterWindowResets(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "user-a:analysis", 1, 10*time.Millisecond); !res.Allowed {
		t.Fatal("first request denied")
	}
	if res, _ := l.Allow(ctx, "user-a:analysis", 1, 10*time.Millisecond); res.Allowed {
		t.Fatal("over-limit request allowed")
	}

	time.Sleep(15 * time.Millisecond)

	if res, _ := l.Allow(ctx, "user-a:analysis", 1, 10*time.Millisecond); !res.Allowed {
		t.Fatal("request denied after window reset")
	}
}
