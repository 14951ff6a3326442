package analysis

import (
	"strings"
	"testing"
	"time"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"empty", "", 3, ""},
		{"single sentence", "The market is ready.", 3, "The market is ready."},
		{"clips to max", "One. Two. Three. Four.", 2, "One. Two."},
		{"handles bangs and questions", "Really? Yes! Sure.", 2, "Really? Yes!"},
		{"whitespace only", "   ", 3, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Summary(tc.text, tc.max); got != tc.want {
				t.Errorf("Summary = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBullets(t *testing.T) {
	text := strings.Join([]string{
		"Intro line with no marker",
		"- first point",
		"* second point",
		"• third point",
		"1. fourth point",
		"2) fifth point",
		"",
		"- sixth point",
		"- seventh point past the limit",
	}, "\n")

	// The "•" marker is stripped before matching, so that line is dropped.
	got := Bullets(text, 5)
	want := []string{"first point", "second point", "fourth point", "fifth point", "sixth point"}
	if len(got) != len(want) {
		t.Fatalf("Bullets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bullet[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := Bullets("• only a dot-marked line", 6); len(got) != 0 {
		t.Errorf("Bullets(dot-marked) = %v, want none", got)
	}

	if got := Bullets("no bullets here at all", 6); len(got) != 0 {
		t.Errorf("Bullets(plain text) = %v, want none", got)
	}
}

func TestBuildPayload(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := "The opportunity is real. Demand signals are strong.\n- talk to ten customers\n- ship a landing page\n- measure conversion"
	in := Inputs{StrategicQuestion: "Should we build the pro tier?", ProjectContext: "B2B SaaS"}

	p := BuildPayload(raw, in, "user-1", "analysis-1", "gpt-4o-mini", now)

	if p.AnalysisID != "analysis-1" || p.UserID != "user-1" {
		t.Errorf("ids = %s/%s", p.AnalysisID, p.UserID)
	}
	if p.Summary == "" {
		t.Error("empty summary")
	}
	if len(p.Insights) != 3 {
		t.Errorf("insights = %d, want 3", len(p.Insights))
	}
	for _, ins := range p.Insights {
		if ins.ID == "" || ins.Headline == "" || ins.Confidence != "medium" {
			t.Errorf("malformed insight %+v", ins)
		}
	}
	if len(p.EvidenceItems) != 3 {
		t.Errorf("evidence items = %d, want 3", len(p.EvidenceItems))
	}
	if !strings.Contains(p.Report.Title, in.StrategicQuestion) {
		t.Errorf("report title %q missing question", p.Report.Title)
	}
	if p.Report.Content != raw {
		t.Error("report content should carry raw text")
	}
	if p.Brief.UniqueValueProposition != "talk to ten customers" {
		t.Errorf("uvp = %q", p.Brief.UniqueValueProposition)
	}
	if len(p.Brief.RecommendedNextSteps) != 3 {
		t.Errorf("next steps = %d, want 3", len(p.Brief.RecommendedNextSteps))
	}
	if p.QualitySignals.AnalysisConfidence <= 0 {
		t.Error("missing quality signals")
	}
	if len(p.StageMetrics) != 3 {
		t.Errorf("stage metrics = %d, want 3", len(p.StageMetrics))
	}
}

func TestBuildPayloadEmptyText(t *testing.T) {
	p := BuildPayload("", Inputs{}, "u", "a", "m", time.Now())
	if p.Summary != "" {
		t.Errorf("Summary = %q, want empty", p.Summary)
	}
	if len(p.Insights) != 0 {
		t.Errorf("Insights = %v, want none", p.Insights)
	}
	if !strings.Contains(p.Report.Title, "Strategic Focus") {
		t.Errorf("title = %q, want default focus", p.Report.Title)
	}
}

func TestBuildPayloadPlainTextFallsBackToSummary(t *testing.T) {
	raw := "A single long observation without any bullet structure at all."
	p := BuildPayload(raw, Inputs{StrategicQuestion: "q"}, "u", "a", "m", time.Now())
	if len(p.Insights) != 1 {
		t.Fatalf("insights = %d, want summary promoted to one insight", len(p.Insights))
	}
	if p.Insights[0].Headline != p.Summary {
		t.Error("promoted insight should carry the summary")
	}
}

func TestFallbackText(t *testing.T) {
	text := FallbackText(Inputs{StrategicQuestion: "Is the pricing right?", ProjectContext: "marketplace"})
	if !strings.Contains(text, "Is the pricing right?") {
		t.Error("fallback missing question")
	}
	if !strings.Contains(text, "Context considered: marketplace") {
		t.Error("fallback missing context")
	}
	if got := Bullets(text, 6); len(got) != 4 {
		t.Errorf("fallback bullets = %d, want 4", len(got))
	}

	blank := FallbackText(Inputs{})
	if !strings.Contains(blank, "your strategic question") {
		t.Error("fallback missing default question")
	}
	if strings.Contains(blank, "Context considered") {
		t.Error("fallback should omit context line when empty")
	}
}
