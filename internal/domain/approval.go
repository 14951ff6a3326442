package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Approval is a human-in-the-loop checkpoint. A project cannot advance its
// validation stage without an approved checkpoint for the current stage.
type Approval struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	Checkpoint string `gorm:"column:checkpoint;not null;index" json:"checkpoint"`
	Status     string `gorm:"column:status;not null;default:'pending';index" json:"status"`

	ReviewerUserID *uuid.UUID `gorm:"type:uuid;column:reviewer_user_id;index" json:"reviewer_user_id,omitempty"`
	Note           string     `gorm:"column:note;type:text;not null;default:''" json:"note,omitempty"`

	DecidedAt *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Approval) TableName() string { return "approval" }
