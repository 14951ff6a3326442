package validation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type GateReviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, review *domain.GateReview) (*domain.GateReview, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*domain.GateReview, error)
	LatestForStage(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, stage string) (*domain.GateReview, error)
}

type gateReviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGateReviewRepo(db *gorm.DB, baseLog *logger.Logger) GateReviewRepo {
	return &gateReviewRepo{db: db, log: baseLog.With("repo", "GateReviewRepo")}
}

func (r *gateReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *domain.GateReview) (*domain.GateReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *gateReviewRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*domain.GateReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.GateReview
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gateReviewRepo) LatestForStage(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, stage string) (*domain.GateReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result domain.GateReview
	if err := transaction.WithContext(ctx).
		Where("project_id = ? AND stage = ?", projectID, stage).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}
