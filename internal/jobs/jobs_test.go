package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/startupai/startupai-backend/internal/domain"
)

type stubHandler struct{ typ string }

func (h stubHandler) Type() string       { return h.typ }
func (h stubHandler) Run(*Context) error { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubHandler{typ: "analysis_run"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(stubHandler{typ: "analysis_run"}); err == nil {
		t.Error("duplicate registration should fail")
	}
	if err := r.Register(stubHandler{}); err == nil {
		t.Error("empty type should fail")
	}
	if err := r.Register(nil); err == nil {
		t.Error("nil handler should fail")
	}
	if _, ok := r.Get("analysis_run"); !ok {
		t.Error("registered handler not found")
	}
	if _, ok := r.Get("unknown"); ok {
		t.Error("unregistered type should not resolve")
	}
}

func TestContextPayload(t *testing.T) {
	reportID := uuid.New()
	job := &domain.JobRun{
		ID:      uuid.New(),
		Payload: datatypes.JSON(`{"report_id":"` + reportID.String() + `","strategic_question":"should we pivot?"}`),
	}
	jc := NewContext(context.Background(), nil, job, nil)

	got, ok := jc.PayloadUUID("report_id")
	if !ok || got != reportID {
		t.Errorf("PayloadUUID = %v ok=%v, want %v", got, ok, reportID)
	}
	if q := jc.PayloadString("strategic_question"); q != "should we pivot?" {
		t.Errorf("PayloadString = %q", q)
	}
	if _, ok := jc.PayloadUUID("missing"); ok {
		t.Error("missing key should not resolve")
	}
}

func TestContextPayloadMalformed(t *testing.T) {
	job := &domain.JobRun{ID: uuid.New(), Payload: datatypes.JSON(`not json`)}
	jc := NewContext(context.Background(), nil, job, nil)
	if jc.Payload() == nil {
		t.Fatal("Payload must never be nil")
	}
	if len(jc.Payload()) != 0 {
		t.Errorf("malformed payload should decode to empty map, got %v", jc.Payload())
	}
}

func TestContextLifecycleInMemory(t *testing.T) {
	job := &domain.JobRun{ID: uuid.New(), Status: domain.JobStatusRunning}
	jc := NewContext(context.Background(), nil, job, nil)

	jc.Progress("generate", 10)
	if job.Stage != "generate" || job.Progress != 10 {
		t.Errorf("after Progress: stage=%q progress=%v", job.Stage, job.Progress)
	}

	jc.Wait("approval")
	if job.Status != domain.JobStatusWaitingUser || job.Stage != "approval" {
		t.Errorf("after Wait: status=%q stage=%q", job.Status, job.Stage)
	}

	jc.Succeed("done", map[string]any{"report_id": "x"})
	if job.Status != domain.JobStatusSucceeded || job.Progress != 100 {
		t.Errorf("after Succeed: status=%q progress=%v", job.Status, job.Progress)
	}
	if len(job.Result) == 0 {
		t.Error("Succeed should record a result payload")
	}
}
