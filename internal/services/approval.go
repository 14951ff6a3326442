package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/gates"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/dbctx"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// Approval statuses.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// ApprovalService manages the human checkpoints that gate validation stage
// transitions.
type ApprovalService interface {
	Request(ctx context.Context, ownerUserID, projectID uuid.UUID, checkpoint string) (*domain.Approval, error)
	Decide(ctx context.Context, ownerUserID, approvalID uuid.UUID, approve bool, note string) (*domain.Approval, error)
	List(ctx context.Context, ownerUserID, projectID uuid.UUID) ([]*domain.Approval, error)
}

type approvalService struct {
	repos *repos.Repos
	jobs  JobService
	log   *logger.Logger
}

func NewApprovalService(r *repos.Repos, jobs JobService, log *logger.Logger) ApprovalService {
	return &approvalService{repos: r, jobs: jobs, log: log.With("service", "ApprovalService")}
}

func (s *approvalService) Request(ctx context.Context, ownerUserID, projectID uuid.UUID, checkpoint string) (*domain.Approval, error) {
	canonical := gates.NormalizeStage(checkpoint)
	if canonical == "" && checkpoint == CheckpointAnalysisDepth {
		canonical = CheckpointAnalysisDepth
	}
	if canonical == "" {
		return nil, fmt.Errorf("%w: invalid checkpoint %q", apperrors.ErrInvalidArgument, checkpoint)
	}
	if _, err := s.ownedProject(ctx, ownerUserID, projectID); err != nil {
		return nil, err
	}

	created, err := s.repos.Approval.Create(ctx, nil, &domain.Approval{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Checkpoint: canonical,
		Status:     ApprovalStatusPending,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("approval requested", "project", projectID.String(), "checkpoint", canonical)
	return created, nil
}

func (s *approvalService) Decide(ctx context.Context, ownerUserID, approvalID uuid.UUID, approve bool, note string) (*domain.Approval, error) {
	approval, err := s.repos.Approval.GetByID(ctx, nil, approvalID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedProject(ctx, ownerUserID, approval.ProjectID); err != nil {
		return nil, err
	}
	if approval.Status != ApprovalStatusPending {
		return nil, fmt.Errorf("%w: approval already %s", apperrors.ErrInvalidArgument, approval.Status)
	}

	status := ApprovalStatusRejected
	if approve {
		status = ApprovalStatusApproved
	}
	now := time.Now()
	if err := s.repos.Approval.Decide(ctx, nil, approvalID, status, ownerUserID, note, now); err != nil {
		return nil, err
	}

	approval.Status = status
	approval.ReviewerUserID = &ownerUserID
	approval.Note = note
	approval.DecidedAt = &now

	if status == ApprovalStatusApproved && approval.Checkpoint == CheckpointAnalysisDepth {
		s.resumeParkedAnalysisRuns(ctx, ownerUserID)
	}

	s.log.Info("approval decided",
		"approval", approvalID.String(),
		"project", approval.ProjectID.String(),
		"status", status,
	)
	return approval, nil
}

// resumeParkedAnalysisRuns requeues the owner's analysis runs that parked
// waiting for the analysis_depth checkpoint. Best-effort: a run left parked
// is picked up once its workflow polls again.
func (s *approvalService) resumeParkedAnalysisRuns(ctx context.Context, ownerUserID uuid.UUID) {
	if s.jobs == nil {
		return
	}
	waiting, err := s.repos.JobRun.ListByOwnerStatus(dbctx.Context{Ctx: ctx}, ownerUserID, JobTypeAnalysisRun, domain.JobStatusWaitingUser)
	if err != nil {
		s.log.Warn("list parked analysis runs", "error", err)
		return
	}
	for _, job := range waiting {
		if _, err := s.jobs.Resume(ctx, ownerUserID, job.ID); err != nil {
			s.log.Warn("resume analysis run", "job_id", job.ID.String(), "error", err)
		}
	}
}

func (s *approvalService) List(ctx context.Context, ownerUserID, projectID uuid.UUID) ([]*domain.Approval, error) {
	if _, err := s.ownedProject(ctx, ownerUserID, projectID); err != nil {
		return nil, err
	}
	return s.repos.Approval.ListByProject(ctx, nil, projectID)
}

func (s *approvalService) ownedProject(ctx context.Context, ownerUserID, projectID uuid.UUID) (*domain.Project, error) {
	p, err := s.repos.Project.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerUserID != ownerUserID {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}
