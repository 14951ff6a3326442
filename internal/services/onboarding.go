package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/onboarding"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// Session statuses.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// SessionView is a session with its transcript and brief.
type SessionView struct {
	Session *domain.OnboardingSession  `json:"session"`
	Turns   []*domain.ConversationTurn `json:"turns,omitempty"`
	Brief   map[string]any             `json:"brief"`
}

// MessageResult is the outcome of one founder message.
type MessageResult struct {
	Reply           string         `json:"reply"`
	Stage           int            `json:"stage"`
	StageName       string         `json:"stage_name"`
	Advanced        bool           `json:"advanced"`
	Completed       bool           `json:"completed"`
	CoverageRatio   float64        `json:"coverage_ratio"`
	OverallCoverage float64        `json:"overall_coverage"`
	MissingTopics   []string       `json:"missing_topics,omitempty"`
	Brief           map[string]any `json:"brief"`
}

type OnboardingService interface {
	StartSession(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID, planType string) (*SessionView, error)
	SendMessage(ctx context.Context, userID, sessionID uuid.UUID, message string) (*MessageResult, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error)
}

type onboardingService struct {
	db       *gorm.DB
	repos    *repos.Repos
	registry *onboarding.Registry
	assessor onboarding.Assessor
	limits   RateLimitService
	log      *logger.Logger
}

func NewOnboardingService(db *gorm.DB, r *repos.Repos, registry *onboarding.Registry, assessor onboarding.Assessor, limits RateLimitService, log *logger.Logger) OnboardingService {
	return &onboardingService{
		db:       db,
		repos:    r,
		registry: registry,
		assessor: assessor,
		limits:   limits,
		log:      log.With("service", "OnboardingService"),
	}
}

func (s *onboardingService) StartSession(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID, planType string) (*SessionView, error) {
	if _, err := s.limits.Check(ctx, userID, ActionConversationStart); err != nil {
		return nil, err
	}

	persona := onboarding.PersonaForPlan(planType)
	firstStage, _ := s.registry.Stage(1)
	greeting := persona.Greeting + " " + firstStage.OpeningQuestion

	var view *SessionView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sess, txErr := s.repos.Session.Create(ctx, tx, &domain.OnboardingSession{
			ID:            uuid.New(),
			UserID:        userID,
			ProjectID:     projectID,
			PlanType:      planType,
			PersonaName:   persona.Name,
			CurrentStage:  1,
			Status:        SessionStatusActive,
			LastMessageAt: time.Now(),
		})
		if txErr != nil {
			return txErr
		}

		seq, txErr := s.repos.Session.AllocateSeq(ctx, tx, sess.ID)
		if txErr != nil {
			return txErr
		}
		turns, txErr := s.repos.Turn.Create(ctx, tx, []*domain.ConversationTurn{{
			ID:        uuid.New(),
			SessionID: sess.ID,
			UserID:    userID,
			Seq:       seq,
			Role:      "assistant",
			Content:   greeting,
			Stage:     1,
		}})
		if txErr != nil {
			return txErr
		}

		if _, txErr = s.repos.Brief.Upsert(ctx, tx, &domain.Brief{
			ID:        uuid.New(),
			SessionID: sess.ID,
			UserID:    userID,
			Fields:    datatypes.JSON([]byte(`{}`)),
		}); txErr != nil {
			return txErr
		}

		view = &SessionView{Session: sess, Turns: turns, Brief: map[string]any{}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("session started",
		"user_id", userID.String(),
		"session_id", view.Session.ID.String(),
		"persona", persona.Name,
	)
	return view, nil
}

func (s *onboardingService) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, message string) (*MessageResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message required", apperrors.ErrInvalidArgument)
	}
	if _, err := s.limits.Check(ctx, userID, ActionConversationMessage); err != nil {
		return nil, err
	}

	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != SessionStatusActive {
		return nil, fmt.Errorf("%w: session is %s", apperrors.ErrInvalidArgument, sess.Status)
	}

	stage, ok := s.registry.Stage(sess.CurrentStage)
	if !ok {
		return nil, fmt.Errorf("session %s on unknown stage %d", sessionID, sess.CurrentStage)
	}

	fields, err := s.briefFields(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Assessment runs outside the transaction: it may call the model and
	// must not hold row locks while it waits.
	assessment, err := s.assessor.Assess(ctx, onboarding.AssessRequest{
		Stage:       stage,
		Message:     message,
		Fields:      fields,
		PersonaName: sess.PersonaName,
	})
	if err != nil {
		return nil, fmt.Errorf("assess message: %w", err)
	}

	merged := onboarding.MergeFields(fields, assessment.Topics)
	stageMessages := sess.StageMessageCount + 1
	decision := s.registry.Decide(sess.CurrentStage, merged, stageMessages)
	overall := s.registry.OverallCoverage(merged)

	reply := assessment.Reply
	nextStageNum := sess.CurrentStage
	nextStageMessages := stageMessages
	status := sess.Status

	switch {
	case decision.Completed:
		status = SessionStatusCompleted
		reply = "That's everything I needed. I'll pull your answers together into your founder brief now."
	case decision.Advance:
		nextStageNum = decision.NextStage
		nextStageMessages = 0
		if next, ok := s.registry.Stage(nextStageNum); ok {
			reply = "Thanks, that gives me a good picture of " + strings.ToLower(stage.Name) + ". " + next.OpeningQuestion
		}
	}

	now := time.Now()
	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode brief: %w", err)
	}
	metadata, _ := json.Marshal(map[string]any{
		"coverage_ratio":   decision.CoverageRatio,
		"overall_coverage": overall,
		"advanced":         decision.Advance,
		"reason":           decision.Reason,
	})

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userSeq, txErr := s.repos.Session.AllocateSeq(ctx, tx, sessionID)
		if txErr != nil {
			return txErr
		}
		assistantSeq, txErr := s.repos.Session.AllocateSeq(ctx, tx, sessionID)
		if txErr != nil {
			return txErr
		}

		if _, txErr = s.repos.Turn.Create(ctx, tx, []*domain.ConversationTurn{
			{
				ID:        uuid.New(),
				SessionID: sessionID,
				UserID:    userID,
				Seq:       userSeq,
				Role:      "user",
				Content:   message,
				Stage:     sess.CurrentStage,
			},
			{
				ID:        uuid.New(),
				SessionID: sessionID,
				UserID:    userID,
				Seq:       assistantSeq,
				Role:      "assistant",
				Content:   reply,
				Stage:     nextStageNum,
				Metadata:  datatypes.JSON(metadata),
			},
		}); txErr != nil {
			return txErr
		}

		if _, txErr = s.repos.Brief.Upsert(ctx, tx, &domain.Brief{
			ID:        uuid.New(),
			SessionID: sessionID,
			UserID:    userID,
			Fields:    datatypes.JSON(mergedJSON),
		}); txErr != nil {
			return txErr
		}

		if txErr = s.repos.Session.UpdateProgress(ctx, tx, sessionID, nextStageNum, nextStageMessages, overall); txErr != nil {
			return txErr
		}
		if status != sess.Status {
			if txErr = s.repos.Session.UpdateStatus(ctx, tx, sessionID, status); txErr != nil {
				return txErr
			}
		}
		return s.repos.Session.TouchLastMessage(ctx, tx, sessionID, now)
	})
	if err != nil {
		return nil, err
	}

	if decision.Advance {
		s.log.Info("stage transition",
			"session_id", sessionID.String(),
			"from", sess.CurrentStage,
			"to", nextStageNum,
			"reason", decision.Reason,
			"completed", decision.Completed,
		)
	}

	return &MessageResult{
		Reply:           reply,
		Stage:           nextStageNum,
		StageName:       s.stageName(nextStageNum),
		Advanced:        decision.Advance,
		Completed:       decision.Completed,
		CoverageRatio:   decision.CoverageRatio,
		OverallCoverage: overall,
		MissingTopics:   decision.MissingTopics,
		Brief:           merged,
	}, nil
}

func (s *onboardingService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*SessionView, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	turns, err := s.repos.Turn.ListBySession(ctx, nil, sessionID, 0)
	if err != nil {
		return nil, err
	}
	fields, err := s.briefFields(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: sess, Turns: turns, Brief: fields}, nil
}

func (s *onboardingService) ownedSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.OnboardingSession, error) {
	sess, err := s.repos.Session.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return sess, nil
}

func (s *onboardingService) briefFields(ctx context.Context, sessionID uuid.UUID) (map[string]any, error) {
	brief, err := s.repos.Brief.GetBySession(ctx, nil, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	fields := map[string]any{}
	if len(brief.Fields) > 0 {
		if err := json.Unmarshal(brief.Fields, &fields); err != nil {
			return nil, fmt.Errorf("decode brief fields: %w", err)
		}
	}
	return fields, nil
}

func (s *onboardingService) stageName(number int) string {
	if st, ok := s.registry.Stage(number); ok {
		return st.Name
	}
	return ""
}
