package app

import (
	"github.com/startupai/startupai-backend/internal/http"
	httpH "github.com/startupai/startupai-backend/internal/http/handlers"
	httpMW "github.com/startupai/startupai-backend/internal/http/middleware"
	"github.com/startupai/startupai-backend/internal/observability"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	User       *httpH.UserHandler
	Project    *httpH.ProjectHandler
	Onboarding *httpH.OnboardingHandler
	Gate       *httpH.GateHandler
	Approval   *httpH.ApprovalHandler
	Analysis   *httpH.AnalysisHandler
	Job        *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Auth:       httpH.NewAuthHandler(services.Auth),
		User:       httpH.NewUserHandler(services.User),
		Project:    httpH.NewProjectHandler(services.Project),
		Onboarding: httpH.NewOnboardingHandler(services.Onboarding, services.User),
		Gate:       httpH.NewGateHandler(services.Gate),
		Approval:   httpH.NewApprovalHandler(services.Approval),
		Analysis:   httpH.NewAnalysisHandler(services.Analysis, services.Job),
		Job:        httpH.NewJobHandler(services.Job),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:     log,
		Metrics: metrics,

		AuthMiddleware: middleware.Auth,

		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		UserHandler:       handlers.User,
		ProjectHandler:    handlers.Project,
		OnboardingHandler: handlers.Onboarding,
		GateHandler:       handlers.Gate,
		ApprovalHandler:   handlers.Approval,
		AnalysisHandler:   handlers.Analysis,
		JobHandler:        handlers.Job,
	})
}
