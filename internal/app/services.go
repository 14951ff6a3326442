package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/jobs"
	"github.com/startupai/startupai-backend/internal/onboarding"
	"github.com/startupai/startupai-backend/internal/platform/logger"
	"github.com/startupai/startupai-backend/internal/services"
	"github.com/startupai/startupai-backend/internal/temporalx"
	"github.com/startupai/startupai-backend/internal/temporalx/temporalworker"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Project    services.ProjectService
	Onboarding services.OnboardingService
	Gate       services.GateService
	Approval   services.ApprovalService
	Analysis   services.AnalysisService
	Job        services.JobService
	RateLimit  services.RateLimitService

	JobRegistry    *jobs.Registry
	JobWorker      *jobs.Worker
	TemporalWorker *temporalworker.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r *repos.Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	authService, err := services.NewAuthService(db, r, log)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	rateLimits := services.NewRateLimitService(clients.Limiter, log)
	userService := services.NewUserService(r, log)
	projectService := services.NewProjectService(r, log)

	stageRegistry, err := onboarding.LoadRegistry()
	if err != nil {
		return Services{}, fmt.Errorf("load stage registry: %w", err)
	}
	assessor := services.NewModelAssessor(clients.OpenAI, log)
	onboardingService := services.NewOnboardingService(db, r, stageRegistry, assessor, rateLimits, log)

	gateService := services.NewGateService(db, r, log)
	analysisService := services.NewAnalysisService(db, r, clients.OpenAI, rateLimits, log)

	tcfg := temporalx.LoadConfig()
	jobService := services.NewJobService(r, clients.Temporal, tcfg.TaskQueue, log)
	approvalService := services.NewApprovalService(r, jobService, log)

	registry := jobs.NewRegistry()
	if err := registry.Register(jobs.NewAnalysisRunHandler(analysisService, log)); err != nil {
		return Services{}, err
	}

	svc := Services{
		Auth:        authService,
		User:        userService,
		Project:     projectService,
		Onboarding:  onboardingService,
		Gate:        gateService,
		Approval:    approvalService,
		Analysis:    analysisService,
		Job:         jobService,
		RateLimit:   rateLimits,
		JobRegistry: registry,
	}

	if cfg.RunWorker {
		if clients.Temporal != nil {
			runner, err := temporalworker.NewRunner(log, clients.Temporal, db, r.JobRun, registry)
			if err != nil {
				return Services{}, fmt.Errorf("init temporal worker: %w", err)
			}
			svc.TemporalWorker = runner
		} else {
			svc.JobWorker = jobs.NewWorker(db, log, r.JobRun, registry)
		}
	}

	return svc, nil
}
