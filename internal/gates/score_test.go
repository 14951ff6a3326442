package gates

import (
	"math"
	"testing"
)

func sampleItems() []Item {
	return []Item{
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.9},
		{Type: "analytics", Strength: StrengthMedium, QualityScore: 0.8},
		{Type: "experiment", Strength: StrengthStrong, QualityScore: 0.85},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.75},
		{Type: "desk", Strength: StrengthWeak, QualityScore: 0.6},
	}
}

func desirabilityPassingItems() []Item {
	return []Item{
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.9},
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.85},
		{Type: "interview", Strength: StrengthMedium, QualityScore: 0.8},
		{Type: "analytics", Strength: StrengthMedium, QualityScore: 0.75},
		{Type: "analytics", Strength: StrengthMedium, QualityScore: 0.8},
		{Type: "experiment", Strength: StrengthStrong, QualityScore: 0.9},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.75},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.7},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.72},
		{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.71},
		{Type: "desk", Strength: StrengthWeak, QualityScore: 0.6},
	}
}

func TestQuality(t *testing.T) {
	want := (0.9 + 0.8 + 0.85 + 0.75 + 0.6) / 5
	if got := Quality(sampleItems()); math.Abs(got-want) > 1e-9 {
		t.Errorf("Quality = %v, want %v", got, want)
	}
	if got := Quality(nil); got != 0 {
		t.Errorf("Quality(nil) = %v, want 0", got)
	}
	perfect := []Item{
		{Type: "interview", Strength: StrengthStrong, QualityScore: 1.0},
		{Type: "analytics", Strength: StrengthStrong, QualityScore: 1.0},
	}
	if got := Quality(perfect); got != 1.0 {
		t.Errorf("Quality(perfect) = %v, want 1", got)
	}
}

func TestCountExperiments(t *testing.T) {
	if got := CountExperiments(sampleItems()); got != 2 {
		t.Errorf("CountExperiments = %d, want 2", got)
	}
	none := []Item{
		{Type: "interview", Strength: StrengthStrong, QualityScore: 0.9},
		{Type: "analytics", Strength: StrengthMedium, QualityScore: 0.8},
	}
	if got := CountExperiments(none); got != 0 {
		t.Errorf("CountExperiments(no experiments) = %d, want 0", got)
	}
}

func TestTypesAndStrengthMix(t *testing.T) {
	types := Types(sampleItems())
	for _, want := range []string{"interview", "analytics", "experiment", "desk"} {
		if !types[want] {
			t.Errorf("Types missing %q", want)
		}
	}
	if len(types) != 4 {
		t.Errorf("Types has %d entries, want 4", len(types))
	}

	mix := StrengthMix(sampleItems())
	if mix[StrengthWeak] != 1 || mix[StrengthMedium] != 2 || mix[StrengthStrong] != 2 {
		t.Errorf("StrengthMix = %v, want weak:1 medium:2 strong:2", mix)
	}
}

func TestReadinessScore(t *testing.T) {
	t.Run("passing evidence scores high", func(t *testing.T) {
		got := ReadinessScore(StageDesirability, desirabilityPassingItems(), nil)
		if got < 0.9 {
			t.Errorf("ReadinessScore = %v, want >= 0.9", got)
		}
	})

	t.Run("no evidence scores zero", func(t *testing.T) {
		if got := ReadinessScore(StageDesirability, nil, nil); got != 0 {
			t.Errorf("ReadinessScore = %v, want 0", got)
		}
	})

	t.Run("partial evidence lands in between", func(t *testing.T) {
		items := []Item{
			{Type: "interview", Strength: StrengthMedium, QualityScore: 0.7},
			{Type: "analytics", Strength: StrengthMedium, QualityScore: 0.7},
			{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.7},
		}
		got := ReadinessScore(StageDesirability, items, nil)
		if got <= 0 || got >= 1 {
			t.Errorf("ReadinessScore = %v, want in (0, 1)", got)
		}
		// experiments 1/5, quality at bar, total 3/10, all types present,
		// mix limited by zero strong items.
		want := (0.2 + 1.0 + 0.3 + 1.0 + 0.0) / 5
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("ReadinessScore = %v, want %v", got, want)
		}
	})

	t.Run("monotone in evidence", func(t *testing.T) {
		few := []Item{
			{Type: "interview", Strength: StrengthMedium, QualityScore: 0.7},
		}
		more := []Item{
			{Type: "interview", Strength: StrengthMedium, QualityScore: 0.7},
			{Type: "analytics", Strength: StrengthMedium, QualityScore: 0.7},
			{Type: "experiment", Strength: StrengthMedium, QualityScore: 0.7},
		}
		sFew := ReadinessScore(StageDesirability, few, nil)
		sMore := ReadinessScore(StageDesirability, more, nil)
		if sMore <= sFew {
			t.Errorf("score did not increase: few=%v more=%v", sFew, sMore)
		}
	})
}
