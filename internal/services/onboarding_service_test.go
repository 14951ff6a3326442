package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/startupai/startupai-backend/internal/clients/redisx"
	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/data/repos/testutil"
	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/onboarding"
)

func TestOnboardingServiceFlow(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)

	r := repos.New(db, log)
	registry := onboarding.MustLoadRegistry()
	limits := NewRateLimitService(redisx.NewMemoryLimiter(), log)
	svc := NewOnboardingService(db, r, registry, onboarding.HeuristicAssessor{}, limits, log)
	ctx := context.Background()

	userID := uuid.New()
	if err := db.Create(&domain.User{ID: userID, Email: uuid.NewString() + "@example.com", Password: "pw"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM conversation_turn WHERE user_id = ?`, userID)
		db.Exec(`DELETE FROM brief WHERE user_id = ?`, userID)
		db.Exec(`DELETE FROM onboarding_session WHERE user_id = ?`, userID)
		db.Exec(`DELETE FROM "user" WHERE id = ?`, userID)
	})

	view, err := svc.StartSession(ctx, userID, nil, "founder")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if view.Session.PersonaName != "Morgan" {
		t.Errorf("persona = %q, want Morgan for founder plan", view.Session.PersonaName)
	}
	if view.Session.CurrentStage != 1 {
		t.Errorf("stage = %d, want 1", view.Session.CurrentStage)
	}
	if len(view.Turns) != 1 || view.Turns[0].Role != "assistant" {
		t.Fatalf("expected one assistant greeting, got %+v", view.Turns)
	}

	sessionID := view.Session.ID

	res, err := svc.SendMessage(ctx, userID, sessionID,
		"The business idea is a meal planning app. I was inspired by my own struggle. I'm at the prototype stage so far.")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !res.Advanced {
		t.Fatalf("full stage-1 coverage should advance, got %+v", res)
	}
	if res.Stage != 2 {
		t.Errorf("Stage = %d, want 2", res.Stage)
	}
	if _, ok := res.Brief["business_concept"]; !ok {
		t.Error("brief missing business_concept")
	}

	got, err := svc.GetSession(ctx, userID, sessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Session.CurrentStage != 2 {
		t.Errorf("persisted stage = %d, want 2", got.Session.CurrentStage)
	}
	if got.Session.StageMessageCount != 0 {
		t.Errorf("StageMessageCount = %d, want reset to 0", got.Session.StageMessageCount)
	}
	// greeting + user + assistant
	if len(got.Turns) != 3 {
		t.Errorf("turns = %d, want 3", len(got.Turns))
	}

	t.Run("foreign session is invisible", func(t *testing.T) {
		if _, err := svc.GetSession(ctx, uuid.New(), sessionID); err == nil {
			t.Error("expected not-found for other user")
		}
	})

	t.Run("empty message rejected", func(t *testing.T) {
		if _, err := svc.SendMessage(ctx, userID, sessionID, "   "); err == nil {
			t.Error("expected invalid-argument for empty message")
		}
	})
}
