package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/clients/redisx"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// Rate-limited actions.
const (
	ActionConversationStart   = "conversation_start"
	ActionConversationMessage = "conversation_message"
	ActionAnalysis            = "analysis"
)

type rateLimitRule struct {
	Limit  int
	Window time.Duration
}

// Per-user fixed windows per action.
var rateLimitRules = map[string]rateLimitRule{
	ActionConversationStart:   {Limit: 6, Window: 15 * time.Minute},
	ActionConversationMessage: {Limit: 60, Window: 5 * time.Minute},
	ActionAnalysis:            {Limit: 10, Window: 15 * time.Minute},
}

// RateLimitService enforces per-user action limits.
type RateLimitService interface {
	// Check returns the limiter result; a denied result comes back with
	// ErrRateLimited so callers can branch on the sentinel.
	Check(ctx context.Context, userID uuid.UUID, action string) (redisx.Result, error)
}

type rateLimitService struct {
	limiter redisx.Limiter
	log     *logger.Logger
}

func NewRateLimitService(limiter redisx.Limiter, log *logger.Logger) RateLimitService {
	return &rateLimitService{limiter: limiter, log: log.With("service", "RateLimitService")}
}

func (s *rateLimitService) Check(ctx context.Context, userID uuid.UUID, action string) (redisx.Result, error) {
	rule, ok := rateLimitRules[action]
	if !ok {
		return redisx.Result{}, fmt.Errorf("unknown rate limit action %q", action)
	}
	key := userID.String() + ":" + action
	res, err := s.limiter.Allow(ctx, key, rule.Limit, rule.Window)
	if err != nil {
		// Limiter outages must not take the API down.
		s.log.Warn("rate limit check failed, allowing request", "action", action, "error", err)
		return redisx.Result{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit}, nil
	}
	if !res.Allowed {
		return res, &apperrors.RateLimitError{
			Action:            action,
			Limit:             res.Limit,
			Remaining:         res.Remaining,
			RetryAfterSeconds: int(res.RetryAfter / time.Second),
		}
	}
	return res, nil
}
