package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type BriefRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, b *domain.Brief) (*domain.Brief, error)
	GetBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*domain.Brief, error)
}

type briefRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBriefRepo(db *gorm.DB, baseLog *logger.Logger) BriefRepo {
	return &briefRepo{db: db, log: baseLog.With("repo", "BriefRepo")}
}

func (r *briefRepo) Upsert(ctx context.Context, tx *gorm.DB, b *domain.Brief) (*domain.Brief, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_at"}),
		}).
		Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *briefRepo) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*domain.Brief, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result domain.Brief
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}
