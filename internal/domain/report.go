package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is one generated strategic analysis for a session or project.
// Payload carries the structured breakdown; Text the rendered narrative.
type Report struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID *uuid.UUID `gorm:"type:uuid;column:session_id;index" json:"session_id,omitempty"`
	ProjectID *uuid.UUID `gorm:"type:uuid;column:project_id;index" json:"project_id,omitempty"`

	Kind   string `gorm:"column:kind;not null;default:'strategic_analysis';index" json:"kind"`
	Status string `gorm:"column:status;not null;default:'pending';index" json:"status"`

	Text    string         `gorm:"column:text;type:text;not null;default:''" json:"text,omitempty"`
	Payload datatypes.JSON `gorm:"type:jsonb;column:payload;not null;default:'{}'" json:"payload,omitempty"`

	// Set when the model path failed and the deterministic renderer produced
	// the report instead.
	Fallback bool `gorm:"column:fallback;not null;default:false" json:"fallback"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Report) TableName() string { return "report" }
