package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/startupai/startupai-backend/internal/http/handlers"
	httpMW "github.com/startupai/startupai-backend/internal/http/middleware"
	"github.com/startupai/startupai-backend/internal/observability"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	AuthHandler       *httpH.AuthHandler
	UserHandler       *httpH.UserHandler
	ProjectHandler    *httpH.ProjectHandler
	OnboardingHandler *httpH.OnboardingHandler
	GateHandler       *httpH.GateHandler
	ApprovalHandler   *httpH.ApprovalHandler
	AnalysisHandler   *httpH.AnalysisHandler
	JobHandler        *httpH.JobHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("startupai-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
			protected.PUT("/me/plan", cfg.UserHandler.UpdatePlan)
		}

		// Projects + evidence
		if cfg.ProjectHandler != nil {
			protected.POST("/projects", cfg.ProjectHandler.Create)
			protected.GET("/projects", cfg.ProjectHandler.List)
			protected.GET("/projects/:id", cfg.ProjectHandler.Get)
			protected.PATCH("/projects/:id", cfg.ProjectHandler.Update)
			protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
			protected.POST("/projects/:id/evidence", cfg.ProjectHandler.AddEvidence)
			protected.GET("/projects/:id/evidence", cfg.ProjectHandler.ListEvidence)
		}

		// Onboarding conversation
		if cfg.OnboardingHandler != nil {
			protected.POST("/onboarding/sessions", cfg.OnboardingHandler.StartSession)
			protected.GET("/onboarding/sessions/:id", cfg.OnboardingHandler.GetSession)
			protected.POST("/onboarding/sessions/:id/messages", cfg.OnboardingHandler.SendMessage)
		}

		// Gates
		if cfg.GateHandler != nil {
			protected.POST("/projects/:id/gate/evaluate", cfg.GateHandler.Evaluate)
			protected.GET("/projects/:id/gate/history", cfg.GateHandler.History)
			protected.POST("/projects/:id/gate/progress", cfg.GateHandler.Progress)
		}

		// Approvals
		if cfg.ApprovalHandler != nil {
			protected.POST("/projects/:id/approvals", cfg.ApprovalHandler.Request)
			protected.GET("/projects/:id/approvals", cfg.ApprovalHandler.List)
			protected.POST("/approvals/:id/decide", cfg.ApprovalHandler.Decide)
		}

		// Strategic analysis
		if cfg.AnalysisHandler != nil {
			protected.POST("/analysis", cfg.AnalysisHandler.Request)
			protected.GET("/analysis", cfg.AnalysisHandler.List)
			protected.GET("/analysis/:id", cfg.AnalysisHandler.Get)
		}

		// Jobs
		if cfg.JobHandler != nil {
			protected.GET("/jobs/:id", cfg.JobHandler.GetJob)
			protected.POST("/jobs/:id/cancel", cfg.JobHandler.CancelJob)
		}
	}

	return r
}
