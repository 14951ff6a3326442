// Package session persists onboarding sessions, their conversation turns,
// and the accumulated founder brief.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *domain.OnboardingSession) (*domain.OnboardingSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*domain.OnboardingSession, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.OnboardingSession, error)
	// AllocateSeq hands out the next per-session turn sequence number.
	AllocateSeq(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error)
	UpdateProgress(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, stage, stageMessageCount int, overallCoverage float64) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, status string) error
	TouchLastMessage(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, at time.Time) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, s *domain.OnboardingSession) (*domain.OnboardingSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*domain.OnboardingSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result domain.OnboardingSession
	if err := transaction.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *sessionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.OnboardingSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.OnboardingSession
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sessionRepo) AllocateSeq(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var seq int64
	err := transaction.WithContext(ctx).
		Raw(`UPDATE "onboarding_session" SET next_seq = next_seq + 1, updated_at = now() WHERE id = ? RETURNING next_seq - 1`, sessionID).
		Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *sessionRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, stage, stageMessageCount int, overallCoverage float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.OnboardingSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"current_stage":       stage,
			"stage_message_count": stageMessageCount,
			"overall_coverage":    overallCoverage,
		}).Error
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.OnboardingSession{}).
		Where("id = ?", sessionID).
		Update("status", status).Error
}

func (r *sessionRepo) TouchLastMessage(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.OnboardingSession{}).
		Where("id = ?", sessionID).
		Update("last_message_at", at).Error
}
