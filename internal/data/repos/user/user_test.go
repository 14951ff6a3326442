package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/data/repos/testutil"
	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*domain.User{
		{
			ID:        uuid.New(),
			Email:     "userrepo@example.com",
			Password:  "pw",
			FirstName: "A",
			LastName:  "B",
			PlanType:  "trial",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	got, err := repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != created[0].Email {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	byEmail, err := repo.GetByEmail(ctx, tx, created[0].Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: unexpected result: %+v", byEmail)
	}

	if _, err := repo.GetByEmail(ctx, tx, "missing@example.com"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("GetByEmail (missing): err = %v, want ErrNotFound", err)
	}

	exists, err := repo.EmailExists(ctx, tx, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	if err := repo.UpdatePlanType(ctx, tx, created[0].ID, "founder"); err != nil {
		t.Fatalf("UpdatePlanType: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.PlanType != "founder" {
		t.Fatalf("PlanType = %q, want founder", got.PlanType)
	}
}
