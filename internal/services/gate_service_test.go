package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/data/repos/testutil"
	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/gates"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
)

func seedPassingEvidence(t *testing.T, svc ProjectService, userID, projectID uuid.UUID) {
	t.Helper()
	items := []*domain.Evidence{
		{Type: "interview", Strength: gates.StrengthStrong, QualityScore: 0.9},
		{Type: "interview", Strength: gates.StrengthStrong, QualityScore: 0.85},
		{Type: "interview", Strength: gates.StrengthMedium, QualityScore: 0.8},
		{Type: "analytics", Strength: gates.StrengthMedium, QualityScore: 0.75},
		{Type: "analytics", Strength: gates.StrengthMedium, QualityScore: 0.8},
		{Type: "experiment", Strength: gates.StrengthStrong, QualityScore: 0.9},
		{Type: "experiment", Strength: gates.StrengthMedium, QualityScore: 0.75},
		{Type: "experiment", Strength: gates.StrengthMedium, QualityScore: 0.7},
		{Type: "experiment", Strength: gates.StrengthMedium, QualityScore: 0.72},
		{Type: "experiment", Strength: gates.StrengthMedium, QualityScore: 0.71},
		{Type: "desk", Strength: gates.StrengthWeak, QualityScore: 0.6},
	}
	if _, err := svc.AddEvidence(context.Background(), userID, projectID, items); err != nil {
		t.Fatalf("AddEvidence: %v", err)
	}
}

func TestGateServiceFlow(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)

	r := repos.New(db, log)
	projectSvc := NewProjectService(r, log)
	gateSvc := NewGateService(db, r, log)
	approvalSvc := NewApprovalService(r, nil, log)
	ctx := context.Background()

	userID := uuid.New()
	if err := db.Create(&domain.User{ID: userID, Email: uuid.NewString() + "@example.com", Password: "pw"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	project, err := projectSvc.Create(ctx, userID, "Meal Kit Startup", "meal kits for climbers")
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM gate_review WHERE project_id = ?`, project.ID)
		db.Exec(`DELETE FROM approval WHERE project_id = ?`, project.ID)
		db.Exec(`DELETE FROM evidence WHERE project_id = ?`, project.ID)
		db.Exec(`DELETE FROM project WHERE id = ?`, project.ID)
		db.Exec(`DELETE FROM "user" WHERE id = ?`, userID)
	})
	if project.ValidationStage != gates.StageDesirability {
		t.Fatalf("new project stage = %q, want desirability", project.ValidationStage)
	}

	t.Run("no evidence evaluates pending", func(t *testing.T) {
		res, err := gateSvc.Evaluate(ctx, userID, project.ID, "DESIRABILITY")
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if res.Status != gates.StatusPending {
			t.Fatalf("Status = %s, want Pending", res.Status)
		}
	})

	t.Run("progress blocked without passed gate", func(t *testing.T) {
		if _, err := gateSvc.Progress(ctx, userID, project.ID); err == nil {
			t.Fatal("expected progress to be blocked")
		}
	})

	seedPassingEvidence(t, projectSvc, userID, project.ID)

	res, err := gateSvc.Evaluate(ctx, userID, project.ID, gates.StageDesirability)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Status != gates.StatusPassed {
		t.Fatalf("Status = %s (reasons %v), want Passed", res.Status, res.Reasons)
	}

	t.Run("passed gate still needs approval", func(t *testing.T) {
		_, err := gateSvc.Progress(ctx, userID, project.ID)
		if !errors.Is(err, apperrors.ErrApprovalRequired) {
			t.Fatalf("err = %v, want ErrApprovalRequired", err)
		}
	})

	approval, err := approvalSvc.Request(ctx, userID, project.ID, gates.StageDesirability)
	if err != nil {
		t.Fatalf("Request approval: %v", err)
	}

	t.Run("pending approval still blocks", func(t *testing.T) {
		_, err := gateSvc.Progress(ctx, userID, project.ID)
		if !errors.Is(err, apperrors.ErrApprovalRequired) {
			t.Fatalf("err = %v, want ErrApprovalRequired", err)
		}
	})

	if _, err := approvalSvc.Decide(ctx, userID, approval.ID, true, "evidence looks solid"); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	// decided_at is nullable; progression must tolerate approved rows
	// that lack it.
	if err := db.Exec(`UPDATE approval SET decided_at = NULL WHERE id = ?`, approval.ID).Error; err != nil {
		t.Fatalf("clear decided_at: %v", err)
	}

	next, err := gateSvc.Progress(ctx, userID, project.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if next != gates.StageFeasibility {
		t.Fatalf("next = %q, want feasibility", next)
	}

	updated, err := projectSvc.Get(ctx, userID, project.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if updated.ValidationStage != gates.StageFeasibility {
		t.Errorf("stage = %q, want feasibility", updated.ValidationStage)
	}
	if updated.GateStatus != gates.StatusPending {
		t.Errorf("gate status = %q, want reset to Pending", updated.GateStatus)
	}

	history, err := gateSvc.History(ctx, userID, project.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history = %d reviews, want 2", len(history))
	}
}
