package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GateReview is one recorded evaluation of a project against a validation
// stage's gate criteria.
type GateReview struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	Stage          string         `gorm:"column:stage;not null;index" json:"stage"`
	Status         string         `gorm:"column:status;not null;index" json:"status"`
	Reasons        datatypes.JSON `gorm:"type:jsonb;column:reasons;not null;default:'[]'" json:"reasons"`
	ReadinessScore float64        `gorm:"column:readiness_score;not null;default:0" json:"readiness_score"`

	EvidenceCount    int `gorm:"column:evidence_count;not null;default:0" json:"evidence_count"`
	ExperimentsCount int `gorm:"column:experiments_count;not null;default:0" json:"experiments_count"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (GateReview) TableName() string { return "gate_review" }
