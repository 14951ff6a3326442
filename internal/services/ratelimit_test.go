package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/clients/redisx"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
)

func TestRateLimitServiceDeniesOverLimit(t *testing.T) {
	svc := NewRateLimitService(redisx.NewMemoryLimiter(), testLogger(t))
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < rateLimitRules[ActionConversationStart].Limit; i++ {
		if _, err := svc.Check(ctx, userID, ActionConversationStart); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}

	res, err := svc.Check(ctx, userID, ActionConversationStart)
	if !errors.Is(err, apperrors.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", res.RetryAfter)
	}

	// Other actions and other users keep their own windows.
	if _, err := svc.Check(ctx, userID, ActionAnalysis); err != nil {
		t.Errorf("analysis action blocked by start window: %v", err)
	}
	if _, err := svc.Check(ctx, uuid.New(), ActionConversationStart); err != nil {
		t.Errorf("other user blocked: %v", err)
	}
}

func TestRateLimitServiceUnknownAction(t *testing.T) {
	svc := NewRateLimitService(redisx.NewMemoryLimiter(), testLogger(t))
	if _, err := svc.Check(context.Background(), uuid.New(), "bogus"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (redisx.Result, error) {
	return redisx.Result{}, errors.New("redis down")
}

func TestRateLimitServiceFailsOpen(t *testing.T) {
	svc := NewRateLimitService(failingLimiter{}, testLogger(t))
	res, err := svc.Check(context.Background(), uuid.New(), ActionConversationMessage)
	if err != nil {
		t.Fatalf("Check should fail open: %v", err)
	}
	if !res.Allowed {
		t.Error("limiter outage should allow the request")
	}
}

func TestRateLimitRules(t *testing.T) {
	tests := []struct {
		action string
		limit  int
		window time.Duration
	}{
		{ActionConversationStart, 6, 15 * time.Minute},
		{ActionConversationMessage, 60, 5 * time.Minute},
		{ActionAnalysis, 10, 15 * time.Minute},
	}
	for _, tc := range tests {
		rule, ok := rateLimitRules[tc.action]
		if !ok {
			t.Errorf("missing rule for %s", tc.action)
			continue
		}
		if rule.Limit != tc.limit || rule.Window != tc.window {
			t.Errorf("%s = %d/%v, want %d/%v", tc.action, rule.Limit, rule.Window, tc.limit, tc.window)
		}
	}
}
