package app

import (
	"github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/startupai/startupai-backend/internal/clients/openai"
	"github.com/startupai/startupai-backend/internal/clients/redisx"
	"github.com/startupai/startupai-backend/internal/platform/logger"
	"github.com/startupai/startupai-backend/internal/temporalx"
)

// Clients are the external dependencies. All of them are optional: the
// OpenAI client degrades to heuristics, Redis to an in-memory limiter, and
// Temporal to the in-process poll worker.
type Clients struct {
	OpenAI   openai.Client
	Redis    *redis.Client
	Limiter  redisx.Limiter
	Temporal temporalsdkclient.Client
}

func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	var c Clients

	oc, err := openai.New(log)
	if err != nil {
		log.Warn("OpenAI client disabled; heuristic assessment and fallback analysis in use", "error", err)
	} else {
		c.OpenAI = oc
	}

	rdb, err := redisx.NewClient(log)
	if err != nil {
		log.Warn("Redis unavailable; rate limiting falls back to in-memory windows", "error", err)
	}
	c.Redis = rdb
	c.Limiter = redisx.NewLimiter(rdb, log)

	tc, err := temporalx.NewClient(log)
	if err != nil {
		log.Warn("Temporal client init failed; jobs run on the in-process worker", "error", err)
	} else {
		c.Temporal = tc
	}

	return c
}
