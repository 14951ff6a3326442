package jobs

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/platform/dbctx"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// Worker polls job_run for claimable work and dispatches it to registered
// handlers. Claims use SKIP LOCKED so multiple workers can run side by side.
type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *Registry
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *Registry) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		const maxAttempts = 5
		retryDelay := 30 * time.Second
		staleRunning := 2 * time.Minute
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job, err := w.repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, maxAttempts, retryDelay, staleRunning)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "error", err)
					continue
				}
				if job == nil {
					continue
				}
				h, ok := w.registry.Get(job.JobType)
				if !ok {
					w.log.Warn("No handler registered for job_type", "job_type", job.JobType, "job_id", job.ID)
					jc := NewContext(ctx, w.db, job, w.repo)
					jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
					continue
				}
				jc := NewContext(ctx, w.db, job, w.repo)
				// A panicking handler must not take the worker loop down.
				func() {
					defer func() {
						if r := recover(); r != nil {
							w.log.Error("Job handler panic", "job_id", job.ID, "job_type", job.JobType, "panic", r)
							jc.Fail("panic", fmt.Errorf("panic: %v", r))
						}
					}()
					if err := h.Run(jc); err != nil {
						w.log.Warn("Job handler failed", "job_id", job.ID, "job_type", job.JobType, "error", err)
						jc.Fail(job.Stage, err)
					}
				}()
			}
		}
	}()
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}
