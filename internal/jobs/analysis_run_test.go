package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/clients/redisx"
	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/data/repos/testutil"
	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/dbctx"
	"github.com/startupai/startupai-backend/internal/services"
)

// Premium-depth runs must park until the analysis_depth checkpoint is
// approved, and the approval decision must requeue them.
func TestPremiumAnalysisParksUntilApproved(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)

	r := repos.New(db, log)
	limits := services.NewRateLimitService(redisx.NewMemoryLimiter(), log)
	analysisSvc := services.NewAnalysisService(db, r, nil, limits, log)
	jobSvc := services.NewJobService(r, nil, "", log)
	approvalSvc := services.NewApprovalService(r, jobSvc, log)
	projectSvc := services.NewProjectService(r, log)
	handler := NewAnalysisRunHandler(analysisSvc, log)
	ctx := context.Background()

	userID := uuid.New()
	if err := db.Create(&domain.User{ID: userID, Email: uuid.NewString() + "@example.com", Password: "pw"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	project, err := projectSvc.Create(ctx, userID, "Premium Depth Project", "depth gating")
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM job_run WHERE owner_user_id = ?`, userID)
		db.Exec(`DELETE FROM report WHERE user_id = ?`, userID)
		db.Exec(`DELETE FROM approval WHERE project_id = ?`, project.ID)
		db.Exec(`DELETE FROM project WHERE id = ?`, project.ID)
		db.Exec(`DELETE FROM "user" WHERE id = ?`, userID)
	})

	req := services.AnalysisRequest{
		StrategicQuestion: "Is a premium tier viable?",
		Depth:             services.AnalysisDepthPremium,
		ProjectID:         &project.ID,
	}

	t.Run("premium without checkpoint is refused", func(t *testing.T) {
		if _, err := analysisSvc.Request(ctx, userID, req); !errors.Is(err, apperrors.ErrApprovalRequired) {
			t.Fatalf("err = %v, want ErrApprovalRequired", err)
		}
	})

	approval, err := approvalSvc.Request(ctx, userID, project.ID, services.CheckpointAnalysisDepth)
	if err != nil {
		t.Fatalf("Request checkpoint: %v", err)
	}

	report, err := analysisSvc.Request(ctx, userID, req)
	if err != nil {
		t.Fatalf("Request analysis with pending checkpoint: %v", err)
	}

	job, err := r.JobRun.GetLatestByEntity(dbctx.Context{Ctx: ctx}, userID, "report", report.ID, services.JobTypeAnalysisRun)
	if err != nil || job == nil {
		t.Fatalf("queued job = %v, err %v", job, err)
	}

	jc := NewContext(ctx, db, job, r.JobRun)
	if err := handler.Run(jc); err != nil {
		t.Fatalf("Run (pending checkpoint): %v", err)
	}
	if jc.Job.Status != domain.JobStatusWaitingUser {
		t.Fatalf("job status = %q, want waiting_user", jc.Job.Status)
	}
	if got, _ := analysisSvc.Get(ctx, userID, report.ID); got.Status != "pending" {
		t.Fatalf("report status = %q, want still pending", got.Status)
	}

	if _, err := approvalSvc.Decide(ctx, userID, approval.ID, true, "premium unlocked"); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	rows, err := r.JobRun.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{job.ID})
	if err != nil || len(rows) == 0 {
		t.Fatalf("reload job: %v", err)
	}
	if rows[0].Status != domain.JobStatusQueued {
		t.Fatalf("job status after approval = %q, want queued", rows[0].Status)
	}

	jc = NewContext(ctx, db, rows[0], r.JobRun)
	if err := handler.Run(jc); err != nil {
		t.Fatalf("Run (approved checkpoint): %v", err)
	}
	if jc.Job.Status != domain.JobStatusSucceeded {
		t.Fatalf("job status = %q, want succeeded", jc.Job.Status)
	}
	done, err := analysisSvc.Get(ctx, userID, report.ID)
	if err != nil {
		t.Fatalf("Get report: %v", err)
	}
	if done.Status != "completed" || !done.Fallback {
		t.Fatalf("report = %q fallback=%v, want completed fallback report", done.Status, done.Fallback)
	}
}
