package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/startupai/startupai-backend/internal/data/repos/testutil"
	"github.com/startupai/startupai-backend/internal/domain"
)

func TestSessionRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	log := testutil.Logger(t)
	sessions := NewSessionRepo(db, log)
	turns := NewTurnRepo(db, log)
	briefs := NewBriefRepo(db, log)
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), Email: "sessionrepo@example.com", Password: "pw"}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	sess, err := sessions.Create(ctx, tx, &domain.OnboardingSession{
		ID:           uuid.New(),
		UserID:       user.ID,
		PlanType:     "trial",
		PersonaName:  "Alex",
		CurrentStage: 1,
		Status:       "active",
	})
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}

	t.Run("seq allocation is monotone", func(t *testing.T) {
		first, err := sessions.AllocateSeq(ctx, tx, sess.ID)
		if err != nil {
			t.Fatalf("AllocateSeq: %v", err)
		}
		second, err := sessions.AllocateSeq(ctx, tx, sess.ID)
		if err != nil {
			t.Fatalf("AllocateSeq: %v", err)
		}
		if second != first+1 {
			t.Fatalf("seq = %d then %d, want consecutive", first, second)
		}
	})

	t.Run("turns ordered by seq", func(t *testing.T) {
		_, err := turns.Create(ctx, tx, []*domain.ConversationTurn{
			{ID: uuid.New(), SessionID: sess.ID, UserID: user.ID, Seq: 10, Role: "user", Content: "hi", Stage: 1},
			{ID: uuid.New(), SessionID: sess.ID, UserID: user.ID, Seq: 11, Role: "assistant", Content: "hello", Stage: 1},
		})
		if err != nil {
			t.Fatalf("Create turns: %v", err)
		}
		got, err := turns.ListBySession(ctx, tx, sess.ID, 0)
		if err != nil {
			t.Fatalf("ListBySession: %v", err)
		}
		if len(got) != 2 || got[0].Seq != 10 || got[1].Seq != 11 {
			t.Fatalf("ListBySession: unexpected order: %+v", got)
		}

		count, err := turns.CountUserTurnsInStage(ctx, tx, sess.ID, 1)
		if err != nil {
			t.Fatalf("CountUserTurnsInStage: %v", err)
		}
		if count != 1 {
			t.Fatalf("CountUserTurnsInStage = %d, want 1", count)
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		if err := sessions.UpdateProgress(ctx, tx, sess.ID, 2, 0, 0.14); err != nil {
			t.Fatalf("UpdateProgress: %v", err)
		}
		if err := sessions.TouchLastMessage(ctx, tx, sess.ID, time.Now()); err != nil {
			t.Fatalf("TouchLastMessage: %v", err)
		}
		got, err := sessions.GetByID(ctx, tx, sess.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.CurrentStage != 2 || got.StageMessageCount != 0 {
			t.Fatalf("progress not applied: %+v", got)
		}
	})

	t.Run("brief upsert merges on session", func(t *testing.T) {
		fields, _ := json.Marshal(map[string]any{"business_concept": "an app"})
		if _, err := briefs.Upsert(ctx, tx, &domain.Brief{
			ID:        uuid.New(),
			SessionID: sess.ID,
			UserID:    user.ID,
			Fields:    datatypes.JSON(fields),
		}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}

		updated, _ := json.Marshal(map[string]any{"business_concept": "an app", "inspiration": "a trip"})
		if _, err := briefs.Upsert(ctx, tx, &domain.Brief{
			ID:        uuid.New(),
			SessionID: sess.ID,
			UserID:    user.ID,
			Fields:    datatypes.JSON(updated),
		}); err != nil {
			t.Fatalf("Upsert again: %v", err)
		}

		got, err := briefs.GetBySession(ctx, tx, sess.ID)
		if err != nil {
			t.Fatalf("GetBySession: %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(got.Fields, &decoded); err != nil {
			t.Fatalf("decode fields: %v", err)
		}
		if decoded["inspiration"] != "a trip" {
			t.Fatalf("fields not updated: %v", decoded)
		}
	})
}
