package jobs

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/data/repos"
	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/platform/ctxutil"
	"github.com/startupai/startupai-backend/internal/platform/dbctx"
)

/*
Context is the execution handle for a single claimed job run. It wraps the
database handle, the mutable job_run row, and the only sanctioned ways to
report progress or terminate execution. Handlers never write job_run rows
directly; they go through this object so lifecycle invariants stay in one
place.
*/
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *domain.JobRun
	Repo    repos.JobRunRepo
	payload map[string]any
}

// NewContext builds the handle for a claimed job and eagerly decodes the
// payload so handlers can read inputs via Payload()/PayloadUUID(). A decode
// failure is non-fatal here; handlers validate the fields they need.
func NewContext(ctx context.Context, db *gorm.DB, job *domain.JobRun, repo repos.JobRunRepo) *Context {
	c := &Context{
		Ctx:  ctx,
		DB:   db,
		Job:  job,
		Repo: repo,
	}
	_ = c.decodePayload()
	c.applyTraceData()
	return c
}

func (c *Context) decodePayload() error {
	if c.Job == nil {
		return nil
	}
	if len(c.Job.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

func (c *Context) applyTraceData() {
	if c == nil || c.Ctx == nil {
		return
	}
	payload := c.Payload()
	traceID := strings.TrimSpace(stringField(payload, "trace_id"))
	reqID := strings.TrimSpace(stringField(payload, "request_id"))
	if traceID == "" && reqID == "" {
		return
	}
	c.Ctx = ctxutil.WithTraceData(c.Ctx, &ctxutil.TraceData{
		TraceID:   traceID,
		RequestID: reqID,
	})
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Payload returns the decoded payload map. Never nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

// PayloadUUID reads a payload field and parses it as a UUID. Returns
// (uuid.Nil, false) when the key is missing or does not parse.
func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// PayloadString reads a payload field as a string, "" when absent.
func (c *Context) PayloadString(key string) string {
	return stringField(c.Payload(), key)
}

/*
Progress publishes a non-terminal status update: stage, percent complete and
a heartbeat, guarded so a canceled job is never overwritten. The in-memory
row is kept in sync with what was persisted.
*/
func (c *Context) Progress(stage string, pct float64) {
	if c == nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now()

	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		ok, _ := c.Repo.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, c.Job.ID, []string{domain.JobStatusCanceled}, map[string]any{
			"stage":        stage,
			"progress":     pct,
			"heartbeat_at": now,
			"updated_at":   now,
		})
		if !ok {
			return
		}
	}

	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.Progress = pct
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}

/*
Wait parks this run as waiting_user and releases the lock. The run stays
parked until something flips it back to queued (JobService.Resume does this
when the blocking approval is decided); neither the poll worker's claim
query nor the Temporal tick dispatches a waiting_user row. A canceled job
is left untouched.
*/
func (c *Context) Wait(stage string) {
	if c == nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now()

	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		ok, _ := c.Repo.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, c.Job.ID, []string{domain.JobStatusCanceled}, map[string]any{
			"status":       domain.JobStatusWaitingUser,
			"stage":        stage,
			"locked_at":    nil,
			"heartbeat_at": now,
			"updated_at":   now,
		})
		if !ok {
			return
		}
	}

	if c.Job != nil {
		c.Job.Status = domain.JobStatusWaitingUser
		c.Job.Stage = stage
		c.Job.LockedAt = nil
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}

/*
Fail marks this run terminally failed: status=failed, the stage where it
died, the error text, and a cleared lock so the claim query can retry it.
A canceled job is left untouched.
*/
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		ok, _ := c.Repo.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, c.Job.ID, []string{domain.JobStatusCanceled}, map[string]any{
			"status":        domain.JobStatusFailed,
			"stage":         stage,
			"error":         msg,
			"last_error_at": now,
			"locked_at":     nil,
			"updated_at":    now,
		})
		if !ok {
			return
		}
	}

	if c.Job != nil {
		c.Job.Status = domain.JobStatusFailed
		c.Job.Stage = stage
		c.Job.Error = msg
		c.Job.LastErrorAt = &now
		c.Job.LockedAt = nil
		c.Job.UpdatedAt = now
	}
}

/*
Succeed marks this run terminally succeeded, stores the serialized result
payload, and releases the lock. A canceled job is left untouched.
*/
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now()
	var res datatypes.JSON
	if result != nil {
		b, _ := json.Marshal(result)
		res = datatypes.JSON(b)
	}

	if c.Repo != nil && c.Job != nil && c.Job.ID != uuid.Nil {
		ok, _ := c.Repo.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, c.Job.ID, []string{domain.JobStatusCanceled}, map[string]any{
			"status":       domain.JobStatusSucceeded,
			"stage":        finalStage,
			"progress":     100.0,
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
			"updated_at":   now,
		})
		if !ok {
			return
		}
	}

	if c.Job != nil {
		c.Job.Status = domain.JobStatusSucceeded
		c.Job.Stage = finalStage
		c.Job.Progress = 100
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.LockedAt = nil
		c.Job.HeartbeatAt = &now
		c.Job.UpdatedAt = now
	}
}
