package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type ReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rep *domain.Report) (*domain.Report, error)
	GetByID(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*domain.Report, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Report, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, reportID uuid.UUID, text string, payload datatypes.JSON, fallback bool, at time.Time) error
	MarkFailed(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{db: db, log: baseLog.With("repo", "ReportRepo")}
}

func (r *reportRepo) Create(ctx context.Context, tx *gorm.DB, rep *domain.Report) (*domain.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(rep).Error; err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *reportRepo) GetByID(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*domain.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result domain.Report
	if err := transaction.WithContext(ctx).
		Where("id = ?", reportID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *reportRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Report
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reportRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, reportID uuid.UUID, text string, payload datatypes.JSON, fallback bool, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]any{
			"status":       "completed",
			"text":         text,
			"payload":      payload,
			"fallback":     fallback,
			"completed_at": at,
		}).Error
}

func (r *reportRepo) MarkFailed(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Report{}).
		Where("id = ?", reportID).
		Update("status", "failed").Error
}
