package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	enums "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/dbctx"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// JobService exposes job_run rows to their owners and, when Temporal is
// configured, starts the workflow that drives them. Without Temporal the
// in-process worker claims queued rows on its own and Dispatch is a no-op.
type JobService interface {
	Get(ctx context.Context, userID, jobID uuid.UUID) (*domain.JobRun, error)
	GetLatestByEntity(ctx context.Context, userID uuid.UUID, entityType string, entityID uuid.UUID, jobType string) (*domain.JobRun, error)
	Cancel(ctx context.Context, userID, jobID uuid.UUID) (*domain.JobRun, error)
	Dispatch(ctx context.Context, jobID uuid.UUID) error
	// Resume requeues a waiting_user run so the next tick (or the poll
	// worker's next claim) dispatches it again. Any other status is a no-op.
	Resume(ctx context.Context, userID, jobID uuid.UUID) (*domain.JobRun, error)
}

type jobService struct {
	repos     *repos.Repos
	temporal  temporalsdkclient.Client
	taskQueue string
	log       *logger.Logger
}

func NewJobService(r *repos.Repos, tc temporalsdkclient.Client, taskQueue string, log *logger.Logger) JobService {
	return &jobService{
		repos:     r,
		temporal:  tc,
		taskQueue: strings.TrimSpace(taskQueue),
		log:       log.With("service", "JobService"),
	}
}

func (s *jobService) Get(ctx context.Context, userID, jobID uuid.UUID) (*domain.JobRun, error) {
	job, err := s.loadOwned(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) GetLatestByEntity(ctx context.Context, userID uuid.UUID, entityType string, entityID uuid.UUID, jobType string) (*domain.JobRun, error) {
	job, err := s.repos.JobRun.GetLatestByEntity(dbctx.Context{Ctx: ctx}, userID, entityType, entityID, jobType)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperrors.ErrNotFound
	}
	return job, nil
}

func (s *jobService) Cancel(ctx context.Context, userID, jobID uuid.UUID) (*domain.JobRun, error) {
	job, err := s.loadOwned(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case domain.JobStatusSucceeded, domain.JobStatusFailed, domain.JobStatusCanceled:
		return job, nil
	}

	now := time.Now()
	ok, err := s.repos.JobRun.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, jobID,
		[]string{domain.JobStatusSucceeded, domain.JobStatusFailed, domain.JobStatusCanceled},
		map[string]any{
			"status":     domain.JobStatusCanceled,
			"locked_at":  nil,
			"updated_at": now,
		})
	if err != nil {
		return nil, err
	}
	if ok && s.temporal != nil {
		// Best-effort: the workflow observes the canceled row on its next tick
		// anyway.
		if cerr := s.temporal.CancelWorkflow(ctx, jobID.String(), ""); cerr != nil {
			s.log.Warn("cancel workflow", "job_id", jobID.String(), "error", cerr)
		}
	}

	rows, err := s.repos.JobRun.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{jobID})
	if err != nil || len(rows) == 0 {
		return job, err
	}
	return rows[0], nil
}

func (s *jobService) Resume(ctx context.Context, userID, jobID uuid.UUID) (*domain.JobRun, error) {
	job, err := s.loadOwned(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusWaitingUser {
		return job, nil
	}

	now := time.Now()
	ok, err := s.repos.JobRun.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, jobID,
		[]string{domain.JobStatusQueued, domain.JobStatusRunning, domain.JobStatusSucceeded, domain.JobStatusFailed, domain.JobStatusCanceled},
		map[string]any{
			"status":     domain.JobStatusQueued,
			"locked_at":  nil,
			"updated_at": now,
		})
	if err != nil {
		return nil, err
	}
	if ok && s.temporal != nil {
		// Best-effort: without the signal the workflow still re-ticks the
		// requeued row on its waiting poll.
		if serr := s.temporal.SignalWorkflow(ctx, jobID.String(), "", "job_resume", nil); serr != nil {
			s.log.Warn("signal workflow resume", "job_id", jobID.String(), "error", serr)
		}
	}

	rows, err := s.repos.JobRun.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{jobID})
	if err != nil || len(rows) == 0 {
		return job, err
	}
	return rows[0], nil
}

func (s *jobService) Dispatch(ctx context.Context, jobID uuid.UUID) error {
	if s.temporal == nil {
		return nil
	}
	if jobID == uuid.Nil {
		return fmt.Errorf("%w: job id required", apperrors.ErrInvalidArgument)
	}
	tq := s.taskQueue
	if tq == "" {
		tq = "startupai"
	}
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    jobID.String(),
		TaskQueue:             tq,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    30 * time.Second,
			BackoffCoefficient: 1.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	}
	// The workflow name is registered by the Temporal worker; the workflow ID
	// doubles as the job_run ID.
	if _, err := s.temporal.ExecuteWorkflow(ctx, opts, "job_run"); err != nil {
		return fmt.Errorf("start temporal workflow: %w", err)
	}
	return nil
}

func (s *jobService) loadOwned(ctx context.Context, userID, jobID uuid.UUID) (*domain.JobRun, error) {
	rows, err := s.repos.JobRun.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{jobID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, apperrors.ErrNotFound
	}
	job := rows[0]
	if job.OwnerUserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return job, nil
}
