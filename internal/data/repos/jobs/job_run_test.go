package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/data/repos/testutil"
	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/platform/dbctx"
)

func TestJobRunRepoClaim(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewJobRunRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	owner := uuid.New()
	entity := uuid.New()

	created, err := repo.Create(dbc, []*domain.JobRun{
		{
			ID:          uuid.New(),
			OwnerUserID: owner,
			JobType:     "analysis_run",
			EntityType:  "report",
			EntityID:    &entity,
			Status:      domain.JobStatusQueued,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 job, got %d", len(created))
	}

	exists, err := repo.ExistsRunnable(dbc, owner, "analysis_run", "report", &entity)
	if err != nil {
		t.Fatalf("ExistsRunnable: %v", err)
	}
	if !exists {
		t.Fatal("ExistsRunnable: expected true for queued job")
	}

	claimed, err := repo.ClaimNextRunnable(dbc, 3, time.Minute, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != created[0].ID {
		t.Fatalf("ClaimNextRunnable: got %+v", claimed)
	}

	// Job is now running with a fresh heartbeat; nothing else to claim.
	again, err := repo.ClaimNextRunnable(dbc, 3, time.Minute, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable (second): %v", err)
	}
	if again != nil {
		t.Fatalf("ClaimNextRunnable (second): expected nil, got %+v", again)
	}

	if err := repo.Heartbeat(dbc, claimed.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	ok, err := repo.UpdateFieldsUnlessStatus(dbc, claimed.ID, []string{domain.JobStatusCanceled}, map[string]any{
		"status":   domain.JobStatusSucceeded,
		"progress": 1.0,
	})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus: %v", err)
	}
	if !ok {
		t.Fatal("UpdateFieldsUnlessStatus: expected update to land")
	}

	latest, err := repo.GetLatestByEntity(dbc, owner, "report", entity, "analysis_run")
	if err != nil {
		t.Fatalf("GetLatestByEntity: %v", err)
	}
	if latest == nil || latest.Status != domain.JobStatusSucceeded {
		t.Fatalf("GetLatestByEntity: got %+v", latest)
	}
}
