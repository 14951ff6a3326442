package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Job status values.
const (
	JobStatusQueued      = "queued"
	JobStatusRunning     = "running"
	JobStatusWaitingUser = "waiting_user"
	JobStatusSucceeded   = "succeeded"
	JobStatusFailed      = "failed"
	JobStatusCanceled    = "canceled"
)

// JobRun is one unit of background work claimed and executed by the worker
// pool. Payload is handler input; Result is handler output.
type JobRun struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;column:owner_user_id;not null;index" json:"owner_user_id"`

	JobType    string     `gorm:"column:job_type;not null;index" json:"job_type"`
	EntityType string     `gorm:"column:entity_type;not null;default:''" json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `gorm:"type:uuid;column:entity_id;index" json:"entity_id,omitempty"`

	Status   string  `gorm:"column:status;not null;default:'queued';index" json:"status"`
	Stage    string  `gorm:"column:stage;not null;default:''" json:"stage,omitempty"`
	Progress float64 `gorm:"column:progress;not null;default:0" json:"progress"`
	Attempts int     `gorm:"column:attempts;not null;default:0" json:"attempts"`

	Error string `gorm:"column:error;type:text;not null;default:''" json:"error,omitempty"`

	LockedBy    string     `gorm:"column:locked_by;not null;default:''" json:"-"`
	LockedAt    *time.Time `gorm:"column:locked_at" json:"-"`
	HeartbeatAt *time.Time `gorm:"column:heartbeat_at" json:"-"`
	LastErrorAt *time.Time `gorm:"column:last_error_at" json:"last_error_at,omitempty"`

	Payload datatypes.JSON `gorm:"type:jsonb;column:payload;not null;default:'{}'" json:"payload,omitempty"`
	Result  datatypes.JSON `gorm:"type:jsonb;column:result;not null;default:'{}'" json:"result,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now();index" json:"updated_at"`
}

func (JobRun) TableName() string { return "job_run" }
