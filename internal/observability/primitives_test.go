package observability

import (
	"strings"
	"testing"
)

func TestCounterVecExposition(t *testing.T) {
	c := NewCounterVec("sa_test_total", "Test counter.", []string{"action"})
	c.Inc("analysis")
	c.Inc("analysis")
	c.Add(3, "conversation_message")

	var b strings.Builder
	if err := c.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"# TYPE sa_test_total counter",
		`sa_test_total{action="analysis"} 2`,
		`sa_test_total{action="conversation_message"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramVecBuckets(t *testing.T) {
	h := NewHistogramVec("sa_test_seconds", "Test histogram.", []string{"route"}, []float64{0.1, 1})
	h.Observe(0.05, "/api/health")
	h.Observe(0.5, "/api/health")
	h.Observe(5, "/api/health")

	var b strings.Builder
	if err := h.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		`sa_test_seconds_bucket{route="/api/health",le="0.1"} 1`,
		`sa_test_seconds_bucket{route="/api/health",le="1"} 2`,
		`sa_test_seconds_bucket{route="/api/health",le="+Inf"} 3`,
		`sa_test_seconds_count{route="/api/health"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGaugeUpDown(t *testing.T) {
	g := NewGauge("sa_test_inflight", "Test gauge.")
	g.Inc()
	g.Inc()
	g.Dec()

	var b strings.Builder
	if err := g.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(b.String(), "sa_test_inflight 1") {
		t.Errorf("gauge value wrong:\n%s", b.String())
	}
}

func TestMissingLabelValueIsUnknown(t *testing.T) {
	c := NewCounterVec("sa_test_lbl_total", "Test counter.", []string{"a", "b"})
	c.Inc("only-a")

	var b strings.Builder
	_ = c.WritePrometheus(&b)
	if !strings.Contains(b.String(), `b="unknown"`) {
		t.Errorf("missing label should render as unknown:\n%s", b.String())
	}
}
