package validation

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

type ApprovalRepo interface {
	Create(ctx context.Context, tx *gorm.DB, a *domain.Approval) (*domain.Approval, error)
	GetByID(ctx context.Context, tx *gorm.DB, approvalID uuid.UUID) (*domain.Approval, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*domain.Approval, error)
	LatestForCheckpoint(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, checkpoint string) (*domain.Approval, error)
	Decide(ctx context.Context, tx *gorm.DB, approvalID uuid.UUID, status string, reviewerUserID uuid.UUID, note string, at time.Time) error
}

type approvalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApprovalRepo(db *gorm.DB, baseLog *logger.Logger) ApprovalRepo {
	return &approvalRepo{db: db, log: baseLog.With("repo", "ApprovalRepo")}
}

func (r *approvalRepo) Create(ctx context.Context, tx *gorm.DB, a *domain.Approval) (*domain.Approval, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *approvalRepo) GetByID(ctx context.Context, tx *gorm.DB, approvalID uuid.UUID) (*domain.Approval, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result domain.Approval
	if err := transaction.WithContext(ctx).
		Where("id = ?", approvalID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *approvalRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*domain.Approval, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Approval
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *approvalRepo) LatestForCheckpoint(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, checkpoint string) (*domain.Approval, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result domain.Approval
	if err := transaction.WithContext(ctx).
		Where("project_id = ? AND checkpoint = ?", projectID, checkpoint).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *approvalRepo) Decide(ctx context.Context, tx *gorm.DB, approvalID uuid.UUID, status string, reviewerUserID uuid.UUID, note string, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Approval{}).
		Where("id = ?", approvalID).
		Updates(map[string]any{
			"status":           status,
			"reviewer_user_id": reviewerUserID,
			"note":             note,
			"decided_at":       at,
		}).Error
}
