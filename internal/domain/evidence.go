package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Evidence is one validation artifact attached to a project: an interview,
// analytics pull, experiment result, or desk research note.
type Evidence struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	Type         string  `gorm:"column:type;not null;index" json:"type"`
	Strength     string  `gorm:"column:strength;not null;default:'weak';index" json:"strength"`
	QualityScore float64 `gorm:"column:quality_score;not null;default:0" json:"quality_score"`

	Title   string         `gorm:"column:title;not null;default:''" json:"title,omitempty"`
	Content string         `gorm:"column:content;type:text;not null;default:''" json:"content,omitempty"`
	Source  string         `gorm:"column:source;not null;default:''" json:"source,omitempty"`
	Tags    datatypes.JSON `gorm:"type:jsonb;column:tags;not null;default:'[]'" json:"tags,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Evidence) TableName() string { return "evidence" }
