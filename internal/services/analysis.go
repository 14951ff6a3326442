package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/analysis"
	"github.com/startupai/startupai-backend/internal/clients/openai"
	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/dbctx"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// JobTypeAnalysisRun is the background job that produces a strategic
// analysis report.
const JobTypeAnalysisRun = "analysis_run"

// Analysis depths. Premium depth is gated behind a human checkpoint.
const (
	AnalysisDepthStandard = "standard"
	AnalysisDepthPremium  = "premium"
)

// CheckpointAnalysisDepth is the approval checkpoint that unlocks premium
// analysis depth for a project.
const CheckpointAnalysisDepth = "analysis_depth"

// AnalysisRequest asks for a strategic analysis of a session or project.
type AnalysisRequest struct {
	StrategicQuestion string     `json:"strategic_question"`
	Depth             string     `json:"depth,omitempty"`
	SessionID         *uuid.UUID `json:"session_id,omitempty"`
	ProjectID         *uuid.UUID `json:"project_id,omitempty"`
}

type AnalysisService interface {
	// Request creates a pending report and queues the background run.
	Request(ctx context.Context, userID uuid.UUID, req AnalysisRequest) (*domain.Report, error)
	Get(ctx context.Context, userID, reportID uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error)
	// Run executes the analysis for a pending report. It is invoked by the
	// job worker, not by handlers.
	Run(ctx context.Context, reportID uuid.UUID) error
	// DepthApproved reports whether the report's project holds an approved
	// analysis_depth checkpoint. The job handler consults it before running
	// a premium-depth report.
	DepthApproved(ctx context.Context, reportID uuid.UUID) (bool, error)
}

type analysisService struct {
	db     *gorm.DB
	repos  *repos.Repos
	client openai.Client
	limits RateLimitService
	log    *logger.Logger
}

func NewAnalysisService(db *gorm.DB, r *repos.Repos, client openai.Client, limits RateLimitService, log *logger.Logger) AnalysisService {
	return &analysisService{
		db:     db,
		repos:  r,
		client: client,
		limits: limits,
		log:    log.With("service", "AnalysisService"),
	}
}

func (s *analysisService) Request(ctx context.Context, userID uuid.UUID, req AnalysisRequest) (*domain.Report, error) {
	if strings.TrimSpace(req.StrategicQuestion) == "" {
		return nil, fmt.Errorf("%w: strategic_question required", apperrors.ErrInvalidArgument)
	}
	depth := req.Depth
	if depth == "" {
		depth = AnalysisDepthStandard
	}
	if depth != AnalysisDepthStandard && depth != AnalysisDepthPremium {
		return nil, fmt.Errorf("%w: unknown depth %q", apperrors.ErrInvalidArgument, req.Depth)
	}
	if depth == AnalysisDepthPremium {
		if req.ProjectID == nil {
			return nil, fmt.Errorf("%w: premium depth requires a project", apperrors.ErrInvalidArgument)
		}
		// A checkpoint must at least exist. A pending one lets the run queue
		// and park until the reviewer decides; a missing or rejected one is a
		// hard stop.
		approval, err := s.repos.Approval.LatestForCheckpoint(ctx, nil, *req.ProjectID, CheckpointAnalysisDepth)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if approval == nil || approval.Status == ApprovalStatusRejected {
			return nil, fmt.Errorf("%w: premium depth needs an %s checkpoint", apperrors.ErrApprovalRequired, CheckpointAnalysisDepth)
		}
	}
	if _, err := s.limits.Check(ctx, userID, ActionAnalysis); err != nil {
		return nil, err
	}

	var report *domain.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		report, txErr = s.repos.Report.Create(ctx, tx, &domain.Report{
			ID:        uuid.New(),
			UserID:    userID,
			SessionID: req.SessionID,
			ProjectID: req.ProjectID,
			Kind:      "strategic_analysis",
			Status:    "pending",
		})
		if txErr != nil {
			return txErr
		}

		payload, txErr := json.Marshal(map[string]any{
			"report_id":          report.ID.String(),
			"strategic_question": req.StrategicQuestion,
			"depth":              depth,
		})
		if txErr != nil {
			return txErr
		}
		reportID := report.ID
		_, txErr = s.repos.JobRun.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*domain.JobRun{{
			ID:          uuid.New(),
			OwnerUserID: userID,
			JobType:     JobTypeAnalysisRun,
			EntityType:  "report",
			EntityID:    &reportID,
			Status:      domain.JobStatusQueued,
			Payload:     datatypes.JSON(payload),
		}})
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("analysis queued", "user_id", userID.String(), "report", report.ID.String())
	return report, nil
}

func (s *analysisService) Get(ctx context.Context, userID, reportID uuid.UUID) (*domain.Report, error) {
	report, err := s.repos.Report.GetByID(ctx, nil, reportID)
	if err != nil {
		return nil, err
	}
	if report.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return report, nil
}

func (s *analysisService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Report, error) {
	return s.repos.Report.ListByUser(ctx, nil, userID)
}

func (s *analysisService) DepthApproved(ctx context.Context, reportID uuid.UUID) (bool, error) {
	report, err := s.repos.Report.GetByID(ctx, nil, reportID)
	if err != nil {
		return false, err
	}
	if report.ProjectID == nil {
		return false, nil
	}
	approval, err := s.repos.Approval.LatestForCheckpoint(ctx, nil, *report.ProjectID, CheckpointAnalysisDepth)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return approval.Status == ApprovalStatusApproved, nil
}

func (s *analysisService) Run(ctx context.Context, reportID uuid.UUID) error {
	report, err := s.repos.Report.GetByID(ctx, nil, reportID)
	if err != nil {
		return fmt.Errorf("load report %s: %w", reportID, err)
	}
	if report.Status == "completed" {
		return nil
	}

	inputs, err := s.buildInputs(ctx, report)
	if err != nil {
		return err
	}

	text, model, usedFallback := s.generateText(ctx, inputs)
	payload := analysis.BuildPayload(text, inputs, report.UserID.String(), report.ID.String(), model, time.Now())

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode analysis payload: %w", err)
	}
	if err := s.repos.Report.MarkCompleted(ctx, nil, reportID, text, datatypes.JSON(encoded), usedFallback, time.Now()); err != nil {
		return err
	}

	s.log.Info("analysis completed",
		"report", reportID.String(),
		"fallback", usedFallback,
		"insights", len(payload.Insights),
	)
	return nil
}

// buildInputs recovers the question from the queued job payload and folds in
// brief context when the report points at a session. The two lookups are
// independent, so they run concurrently.
func (s *analysisService) buildInputs(ctx context.Context, report *domain.Report) (analysis.Inputs, error) {
	var (
		in             analysis.Inputs
		question       string
		projectContext string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		job, err := s.repos.JobRun.GetLatestByEntity(
			dbctx.Context{Ctx: gctx},
			report.UserID, "report", report.ID, JobTypeAnalysisRun,
		)
		if err != nil {
			return err
		}
		if job != nil && len(job.Payload) > 0 {
			var payload struct {
				StrategicQuestion string `json:"strategic_question"`
			}
			if err := json.Unmarshal(job.Payload, &payload); err == nil {
				question = payload.StrategicQuestion
			}
		}
		return nil
	})

	g.Go(func() error {
		if report.SessionID != nil {
			brief, err := s.repos.Brief.GetBySession(gctx, nil, *report.SessionID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if brief != nil && len(brief.Fields) > 0 {
				projectContext = string(brief.Fields)
				return nil
			}
		}
		if report.ProjectID != nil {
			project, err := s.repos.Project.GetByID(gctx, nil, *report.ProjectID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if project != nil {
				projectContext = project.Name + ": " + project.Description
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return in, err
	}
	in.StrategicQuestion = question
	in.ProjectContext = projectContext
	return in, nil
}

var analysisSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"analysis_text": map[string]any{"type": "string"},
	},
	"required":             []string{"analysis_text"},
	"additionalProperties": false,
}

// generateText asks the model for the narrative and falls back to the
// deterministic renderer on any failure.
func (s *analysisService) generateText(ctx context.Context, in analysis.Inputs) (text, model string, usedFallback bool) {
	if s.client == nil {
		return analysis.FallbackText(in), "fallback", true
	}

	system := "You are a startup strategy analyst. Produce a concise strategic analysis: " +
		"a short narrative followed by a bulleted list of concrete, evidence-seeking recommendations."
	user := "Strategic question: " + in.StrategicQuestion
	if in.ProjectContext != "" {
		user += "\n\nProject context:\n" + in.ProjectContext
	}

	out, err := s.client.GenerateJSON(ctx, system, user, "strategic_analysis", analysisSchema)
	if err != nil {
		s.log.Warn("model analysis failed, using fallback", "error", err)
		return analysis.FallbackText(in), "fallback", true
	}
	raw, _ := out["analysis_text"].(string)
	if strings.TrimSpace(raw) == "" {
		return analysis.FallbackText(in), "fallback", true
	}
	return raw, s.client.Model(), false
}
