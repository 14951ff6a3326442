package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OnboardingSession is one guided founder interview. CurrentStage walks the
// seven-stage registry; StageMessageCount resets on every advancement.
type OnboardingSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectID *uuid.UUID `gorm:"type:uuid;column:project_id;index" json:"project_id,omitempty"`

	PlanType    string `gorm:"column:plan_type;not null;default:'trial'" json:"plan_type"`
	PersonaName string `gorm:"column:persona_name;not null;default:''" json:"persona_name"`

	CurrentStage      int     `gorm:"column:current_stage;not null;default:1;index" json:"current_stage"`
	StageMessageCount int     `gorm:"column:stage_message_count;not null;default:0" json:"stage_message_count"`
	OverallCoverage   float64 `gorm:"column:overall_coverage;not null;default:0" json:"overall_coverage"`

	Status string `gorm:"column:status;not null;default:'active';index" json:"status"`

	// Concurrency-safe per-session turn sequencing.
	NextSeq int64 `gorm:"column:next_seq;not null;default:0" json:"next_seq"`

	LastMessageAt time.Time `gorm:"column:last_message_at;not null;default:now();index" json:"last_message_at"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (OnboardingSession) TableName() string { return "onboarding_session" }

// ConversationTurn is a single message in a session. Assistant turns carry
// the stage snapshot and quality signals in Metadata.
type ConversationTurn struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_turn_session_seq,unique,priority:1" json:"session_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Seq int64 `gorm:"column:seq;not null;index:idx_turn_session_seq,unique,priority:2" json:"seq"`

	Role    string `gorm:"column:role;not null;index" json:"role"`
	Content string `gorm:"column:content;type:text;not null;default:''" json:"content"`
	Stage   int    `gorm:"column:stage;not null;index" json:"stage"`

	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConversationTurn) TableName() string { return "conversation_turn" }
