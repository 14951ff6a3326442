package gates

import (
	"strings"
	"testing"
)

func itemsWithQuality(q float64) []Item {
	return []Item{
		{Type: "interview", Strength: StrengthStrong, QualityScore: q},
		{Type: "interview", Strength: StrengthStrong, QualityScore: q},
		{Type: "interview", Strength: StrengthMedium, QualityScore: q},
		{Type: "analytics", Strength: StrengthMedium, QualityScore: q},
		{Type: "analytics", Strength: StrengthMedium, QualityScore: q},
		{Type: "experiment", Strength: StrengthStrong, QualityScore: q},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: q},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: q},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: q},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: q},
		{Type: "desk", Strength: StrengthWeak, QualityScore: q},
	}
}

func hasReason(reasons []string, substr string) bool {
	for _, r := range reasons {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

func TestEvaluateDesirabilityPasses(t *testing.T) {
	res := Evaluate(StageDesirability, desirabilityPassingItems(), nil)
	if res.Status != StatusPassed {
		t.Fatalf("Status = %s (reasons %v), want Passed", res.Status, res.Reasons)
	}
	if len(res.Reasons) != 0 {
		t.Errorf("Reasons = %v, want empty", res.Reasons)
	}
	if res.EvidenceCount != 11 || res.ExperimentsCount != 5 {
		t.Errorf("counts = %d/%d, want 11/5", res.EvidenceCount, res.ExperimentsCount)
	}
}

func TestEvaluateNoEvidenceIsPending(t *testing.T) {
	res := Evaluate(StageDesirability, nil, nil)
	if res.Status != StatusPending {
		t.Fatalf("Status = %s, want Pending", res.Status)
	}
	if res.ReadinessScore != 0 {
		t.Errorf("ReadinessScore = %v, want 0", res.ReadinessScore)
	}
	if !hasReason(res.Reasons, "No evidence") {
		t.Errorf("Reasons = %v, want no-evidence reason", res.Reasons)
	}
}

func TestEvaluateInsufficientExperiments(t *testing.T) {
	items := []Item{
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.9},
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.85},
		{Type: "interview", Strength: StrengthMedium, QualityScore: 0.8},
		{Type: "analytics", Strength: StrengthMedium, QualityScore: 0.75},
		{Type: "analytics", Strength: StrengthMedium, QualityScore: 0.8},
		{Type: "experiment", Strength: StrengthStrong, QualityScore: 0.9},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.75},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.7},
	}
	res := Evaluate(StageDesirability, items, nil)
	if res.Status != StatusFailed {
		t.Fatalf("Status = %s, want Failed", res.Status)
	}
	if !hasReason(res.Reasons, "Insufficient experiments") {
		t.Errorf("Reasons = %v, want insufficient-experiments reason", res.Reasons)
	}
}

func TestEvaluateLowQuality(t *testing.T) {
	res := Evaluate(StageDesirability, itemsWithQuality(0.5), nil)
	if res.Status != StatusFailed {
		t.Fatalf("Status = %s, want Failed", res.Status)
	}
	if !hasReason(res.Reasons, "Evidence quality too low") {
		t.Errorf("Reasons = %v, want quality reason", res.Reasons)
	}
}

func TestEvaluateMissingRequiredType(t *testing.T) {
	items := []Item{
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.9},
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.85},
		{Type: "interview", Strength: StrengthMedium, QualityScore: 0.8},
		{Type: "experiment", Strength: StrengthStrong, QualityScore: 0.9},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.75},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.7},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.72},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.71},
	}
	res := Evaluate(StageDesirability, items, nil)
	if res.Status != StatusFailed {
		t.Fatalf("Status = %s, want Failed", res.Status)
	}
	if !hasReason(res.Reasons, "Missing required evidence types") || !hasReason(res.Reasons, "analytics") {
		t.Errorf("Reasons = %v, want missing analytics", res.Reasons)
	}
}

func TestEvaluateQualityBoundary(t *testing.T) {
	// Inclusive thresholds: evidence sitting exactly on the bar passes,
	// one hundredth below fails.
	atBar := Evaluate(StageDesirability, itemsWithQuality(0.7), nil)
	if atBar.Status != StatusPassed {
		t.Errorf("at threshold: Status = %s (reasons %v), want Passed", atBar.Status, atBar.Reasons)
	}

	below := Evaluate(StageDesirability, itemsWithQuality(0.69), nil)
	if below.Status != StatusFailed {
		t.Errorf("below threshold: Status = %s, want Failed", below.Status)
	}
	if !hasReason(below.Reasons, "Evidence quality too low") {
		t.Errorf("below threshold: Reasons = %v, want quality reason", below.Reasons)
	}
}

func TestEvaluateCustomCriteria(t *testing.T) {
	custom := &Criteria{
		MinExperiments:   2,
		MinQuality:       0.6,
		MinTotalEvidence: 3,
		RequiredTypes:    []string{"interview"},
		StrengthMix:      map[string]int{StrengthMedium: 1, StrengthStrong: 1},
	}
	items := []Item{
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.8},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.7},
		{Type: "experiment", Strength: StrengthStrong, QualityScore: 0.75},
	}
	res := Evaluate(StageDesirability, items, custom)
	if res.Status != StatusPassed {
		t.Fatalf("Status = %s (reasons %v), want Passed", res.Status, res.Reasons)
	}
}

func TestCriteriaGetStricter(t *testing.T) {
	order := []string{StageDesirability, StageFeasibility, StageViability, StageScale}
	for i := 1; i < len(order); i++ {
		prev, cur := DefaultCriteria[order[i-1]], DefaultCriteria[order[i]]
		if cur.MinExperiments <= prev.MinExperiments {
			t.Errorf("%s experiments bar not above %s", order[i], order[i-1])
		}
		if cur.MinQuality <= prev.MinQuality {
			t.Errorf("%s quality bar not above %s", order[i], order[i-1])
		}
		if cur.MinTotalEvidence <= prev.MinTotalEvidence {
			t.Errorf("%s evidence bar not above %s", order[i], order[i-1])
		}
	}
}

func TestStageProgression(t *testing.T) {
	if got := NextStage(StageDesirability); got != StageFeasibility {
		t.Errorf("NextStage(desirability) = %q", got)
	}
	if got := NextStage(StageFeasibility); got != StageViability {
		t.Errorf("NextStage(feasibility) = %q", got)
	}
	if got := NextStage(StageViability); got != StageScale {
		t.Errorf("NextStage(viability) = %q", got)
	}
	if got := NextStage(StageScale); got != "" {
		t.Errorf("NextStage(scale) = %q, want empty", got)
	}

	if !CanProgress(StageDesirability, StatusPassed) {
		t.Error("passed desirability should progress")
	}
	if CanProgress(StageDesirability, StatusFailed) {
		t.Error("failed gate should not progress")
	}
	if CanProgress(StageDesirability, StatusPending) {
		t.Error("pending gate should not progress")
	}
	if CanProgress(StageScale, StatusPassed) {
		t.Error("no progression past the final stage")
	}
}

func TestNormalizeStage(t *testing.T) {
	tests := []struct{ in, want string }{
		{"DESIRABILITY", StageDesirability},
		{"desirability", StageDesirability},
		{" Feasibility ", StageFeasibility},
		{"bogus", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeStage(tc.in); got != tc.want {
			t.Errorf("NormalizeStage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
