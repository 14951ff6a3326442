// Package validation persists project evidence, gate reviews, and
// human-in-the-loop approvals.
package validation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type EvidenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*domain.Evidence) ([]*domain.Evidence, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*domain.Evidence, error)
	Delete(ctx context.Context, tx *gorm.DB, evidenceID uuid.UUID) error
}

type evidenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvidenceRepo(db *gorm.DB, baseLog *logger.Logger) EvidenceRepo {
	return &evidenceRepo{db: db, log: baseLog.With("repo", "EvidenceRepo")}
}

func (r *evidenceRepo) Create(ctx context.Context, tx *gorm.DB, items []*domain.Evidence) ([]*domain.Evidence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return []*domain.Evidence{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *evidenceRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*domain.Evidence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*domain.Evidence
	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *evidenceRepo) Delete(ctx context.Context, tx *gorm.DB, evidenceID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", evidenceID).
		Delete(&domain.Evidence{}).Error
}
