package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Brief is the accumulated founder record extracted across all onboarding
// stages. Fields holds the merged topic values keyed by topic name; array
// topics are JSON arrays, scalar topics strings (including the literal
// "uncertain" for topics the founder could not answer).
type Brief struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Fields datatypes.JSON `gorm:"type:jsonb;column:fields;not null;default:'{}'" json:"fields"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Brief) TableName() string { return "brief" }
