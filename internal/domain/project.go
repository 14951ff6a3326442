package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is one business idea moving through the evidence-led validation
// stages (desirability -> feasibility -> viability -> scale).
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`

	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"column:description;type:text;not null;default:''" json:"description,omitempty"`

	ValidationStage string `gorm:"column:validation_stage;not null;default:'desirability';index" json:"validation_stage"`

	// Denormalized results of the most recent gate evaluation.
	GateStatus       string  `gorm:"column:gate_status;not null;default:'Pending';index" json:"gate_status"`
	EvidenceQuality  float64 `gorm:"column:evidence_quality;not null;default:0" json:"evidence_quality"`
	EvidenceCount    int     `gorm:"column:evidence_count;not null;default:0" json:"evidence_count"`
	ExperimentsCount int     `gorm:"column:experiments_count;not null;default:0" json:"experiments_count"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }
