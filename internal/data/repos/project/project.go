package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/domain"
	apperrors "github.com/startupai/startupai-backend/internal/pkg/errors"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type ProjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, p *domain.Project) (*domain.Project, error)
	GetByID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*domain.Project, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*domain.Project, error)
	Update(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, updates map[string]any) error
	UpdateValidationStage(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, stage string) error
	UpdateGateMetrics(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, status string, quality float64, evidenceCount, experimentsCount int) error
	Delete(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(ctx context.Context, tx *gorm.DB, p *domain.Project) (*domain.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*domain.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result domain.Project
	if err := transaction.WithContext(ctx).
		Where("id = ?", projectID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *projectRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*domain.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Project
	if err := transaction.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *projectRepo) Update(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", projectID).
		Updates(updates).Error
}

func (r *projectRepo) UpdateValidationStage(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, stage string) error {
	return r.Update(ctx, tx, projectID, map[string]any{"validation_stage": stage})
}

func (r *projectRepo) UpdateGateMetrics(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, status string, quality float64, evidenceCount, experimentsCount int) error {
	return r.Update(ctx, tx, projectID, map[string]any{
		"gate_status":       status,
		"evidence_quality":  quality,
		"evidence_count":    evidenceCount,
		"experiments_count": experimentsCount,
	})
}

func (r *projectRepo) Delete(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", projectID).
		Delete(&domain.Project{}).Error
}
