package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/gates"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// GateService evaluates project validation gates and moves projects between
// validation stages. Advancing requires both a passed gate and an approved
// human checkpoint for the current stage.
type GateService interface {
	Evaluate(ctx context.Context, ownerUserID, projectID uuid.UUID, stage string) (*gates.Result, error)
	History(ctx context.Context, ownerUserID, projectID uuid.UUID) ([]*domain.GateReview, error)
	Progress(ctx context.Context, ownerUserID, projectID uuid.UUID) (string, error)
}

type gateService struct {
	db    *gorm.DB
	repos *repos.Repos
	log   *logger.Logger
}

func NewGateService(db *gorm.DB, r *repos.Repos, log *logger.Logger) GateService {
	return &gateService{db: db, repos: r, log: log.With("service", "GateService")}
}

func (s *gateService) Evaluate(ctx context.Context, ownerUserID, projectID uuid.UUID, stage string) (*gates.Result, error) {
	canonical := gates.NormalizeStage(stage)
	if canonical == "" {
		return nil, fmt.Errorf("%w: invalid stage %q", apperrors.ErrInvalidArgument, stage)
	}

	project, err := s.ownedProject(ctx, ownerUserID, projectID)
	if err != nil {
		return nil, err
	}

	evidence, err := s.repos.Evidence.ListByProject(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	items := make([]gates.Item, 0, len(evidence))
	for _, e := range evidence {
		items = append(items, gates.Item{
			Type:         e.Type,
			Strength:     e.Strength,
			QualityScore: e.QualityScore,
		})
	}

	result := gates.Evaluate(canonical, items, nil)
	result.ReadinessScore = math.Round(result.ReadinessScore*1000) / 1000

	reasons, _ := json.Marshal(result.Reasons)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, txErr := s.repos.GateReview.Create(ctx, tx, &domain.GateReview{
			ID:               uuid.New(),
			ProjectID:        projectID,
			Stage:            canonical,
			Status:           result.Status,
			Reasons:          datatypes.JSON(reasons),
			ReadinessScore:   result.ReadinessScore,
			EvidenceCount:    result.EvidenceCount,
			ExperimentsCount: result.ExperimentsCount,
		}); txErr != nil {
			return txErr
		}
		return s.repos.Project.UpdateGateMetrics(ctx, tx, projectID,
			result.Status, result.ReadinessScore, result.EvidenceCount, result.ExperimentsCount)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("gate evaluated",
		"project", project.ID.String(),
		"stage", canonical,
		"status", result.Status,
		"readiness", result.ReadinessScore,
	)
	return &result, nil
}

func (s *gateService) History(ctx context.Context, ownerUserID, projectID uuid.UUID) ([]*domain.GateReview, error) {
	if _, err := s.ownedProject(ctx, ownerUserID, projectID); err != nil {
		return nil, err
	}
	return s.repos.GateReview.ListByProject(ctx, nil, projectID)
}

// Progress advances the project to the next validation stage. The latest
// gate review for the current stage must be Passed and the stage's approval
// checkpoint must be approved.
func (s *gateService) Progress(ctx context.Context, ownerUserID, projectID uuid.UUID) (string, error) {
	project, err := s.ownedProject(ctx, ownerUserID, projectID)
	if err != nil {
		return "", err
	}

	next := gates.NextStage(project.ValidationStage)
	if next == "" {
		return "", fmt.Errorf("%w: project is already at the final validation stage", apperrors.ErrInvalidArgument)
	}

	review, err := s.repos.GateReview.LatestForStage(ctx, nil, projectID, project.ValidationStage)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: evaluate the %s gate first", apperrors.ErrInvalidArgument, project.ValidationStage)
		}
		return "", err
	}
	if !gates.CanProgress(project.ValidationStage, review.Status) {
		return "", fmt.Errorf("%w: %s gate is %s", apperrors.ErrInvalidArgument, project.ValidationStage, review.Status)
	}

	approval, err := s.repos.Approval.LatestForCheckpoint(ctx, nil, projectID, project.ValidationStage)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrApprovalRequired
		}
		return "", err
	}
	if approval.Status != ApprovalStatusApproved {
		return "", apperrors.ErrApprovalRequired
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if txErr := s.repos.Project.UpdateValidationStage(ctx, tx, projectID, next); txErr != nil {
			return txErr
		}
		// Fresh stage starts with a pending gate.
		return s.repos.Project.Update(ctx, tx, projectID, map[string]any{
			"gate_status": gates.StatusPending,
		})
	})
	if err != nil {
		return "", err
	}

	approvedAt := ""
	if approval.DecidedAt != nil {
		approvedAt = approval.DecidedAt.Format(time.RFC3339)
	}
	s.log.Info("project advanced",
		"project", projectID.String(),
		"from", project.ValidationStage,
		"to", next,
		"approved_at", approvedAt,
	)
	return next, nil
}

func (s *gateService) ownedProject(ctx context.Context, ownerUserID, projectID uuid.UUID) (*domain.Project, error) {
	p, err := s.repos.Project.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerUserID != ownerUserID {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}
