package session

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type TurnRepo interface {
	Create(ctx context.Context, tx *gorm.DB, turns []*domain.ConversationTurn) ([]*domain.ConversationTurn, error)
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, limit int) ([]*domain.ConversationTurn, error)
	CountUserTurnsInStage(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, stage int) (int64, error)
}

type turnRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTurnRepo(db *gorm.DB, baseLog *logger.Logger) TurnRepo {
	return &turnRepo{db: db, log: baseLog.With("repo", "TurnRepo")}
}

func (r *turnRepo) Create(ctx context.Context, tx *gorm.DB, turns []*domain.ConversationTurn) ([]*domain.ConversationTurn, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(turns) == 0 {
		return []*domain.ConversationTurn{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&turns).Error; err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *turnRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, limit int) ([]*domain.ConversationTurn, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*domain.ConversationTurn
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *turnRepo) CountUserTurnsInStage(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, stage int) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.ConversationTurn{}).
		Where("session_id = ? AND stage = ? AND role = ?", sessionID, stage, "user").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
