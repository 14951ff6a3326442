package onboarding

import (
	"context"
	"testing"
)

func TestHeuristicAssessorCoversByKeyword(t *testing.T) {
	r := MustLoadRegistry()
	stage1, _ := r.Stage(1)

	a := HeuristicAssessor{}
	got, err := a.Assess(context.Background(), AssessRequest{
		Stage:   stage1,
		Message: "The idea is a meal planning app. I was inspired by my own struggle after a climbing trip.",
		Fields:  map[string]any{},
	})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if _, ok := got.Topics["business_concept"]; !ok {
		t.Error("business_concept not covered")
	}
	if _, ok := got.Topics["inspiration"]; !ok {
		t.Error("inspiration not covered")
	}
	if _, ok := got.Topics["current_stage"]; ok {
		t.Error("current_stage covered without a matching keyword")
	}
	if got.Reply == "" {
		t.Error("empty reply")
	}
}

func TestHeuristicAssessorArrayTopics(t *testing.T) {
	r := MustLoadRegistry()
	stage5, _ := r.Stage(5)

	a := HeuristicAssessor{}
	got, err := a.Assess(context.Background(), AssessRequest{
		Stage:   stage5,
		Message: "Our main competitor is AcmeCo. The usual alternative is to just hire a consultant.",
		Fields:  map[string]any{},
	})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	comps, ok := got.Topics["competitors"].([]any)
	if !ok || len(comps) == 0 {
		t.Fatalf("competitors = %#v, want non-empty []any", got.Topics["competitors"])
	}
	alts, ok := got.Topics["alternatives"].([]any)
	if !ok || len(alts) == 0 {
		t.Fatalf("alternatives = %#v, want non-empty []any", got.Topics["alternatives"])
	}
}

func TestHeuristicAssessorUncertainty(t *testing.T) {
	r := MustLoadRegistry()
	stage6, _ := r.Stage(6)
	a := HeuristicAssessor{}

	t.Run("marks first open topic", func(t *testing.T) {
		got, err := a.Assess(context.Background(), AssessRequest{
			Stage:   stage6,
			Message: "Honestly, I don't know yet.",
			Fields:  map[string]any{},
		})
		if err != nil {
			t.Fatalf("Assess: %v", err)
		}
		if got.Topics["budget_range"] != UncertainValue {
			t.Errorf("budget_range = %#v, want %q", got.Topics["budget_range"], UncertainValue)
		}
		if len(got.Uncertain) != 1 || got.Uncertain[0] != "budget_range" {
			t.Errorf("Uncertain = %v, want [budget_range]", got.Uncertain)
		}
	})

	t.Run("skips topics already in the brief", func(t *testing.T) {
		got, err := a.Assess(context.Background(), AssessRequest{
			Stage:   stage6,
			Message: "Not sure about that one.",
			Fields:  map[string]any{"budget_range": "under 10k"},
		})
		if err != nil {
			t.Fatalf("Assess: %v", err)
		}
		if got.Topics["available_resources"] != UncertainValue {
			t.Errorf("available_resources = %#v, want %q", got.Topics["available_resources"], UncertainValue)
		}
	})
}

func TestHeuristicAssessorEmptyMessage(t *testing.T) {
	r := MustLoadRegistry()
	stage3, _ := r.Stage(3)
	a := HeuristicAssessor{}

	got, err := a.Assess(context.Background(), AssessRequest{
		Stage:   stage3,
		Message: "   ",
		Fields:  map[string]any{},
	})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if len(got.Topics) != 0 {
		t.Errorf("Topics = %v, want none", got.Topics)
	}
	if got.Reply != stage3.Topics[0].Prompt {
		t.Errorf("Reply = %q, want first topic prompt", got.Reply)
	}
}

func TestNextQuestion(t *testing.T) {
	r := MustLoadRegistry()
	stage2, _ := r.Stage(2)

	if got := NextQuestion(stage2, nil); got != stage2.Topics[0].Prompt {
		t.Errorf("empty fields: got %q, want first prompt", got)
	}
	partial := map[string]any{"target_customers": "indie founders"}
	if got := NextQuestion(stage2, partial); got != stage2.Topics[1].Prompt {
		t.Errorf("partial fields: got %q, want second prompt", got)
	}
	full := fieldsFor("target_customers", "customer_segments", "current_solutions")
	if got := NextQuestion(stage2, full); got == stage2.Topics[0].Prompt {
		t.Error("full fields should not re-ask a covered topic")
	}
}

func TestPersonaForPlan(t *testing.T) {
	tests := []struct {
		plan string
		want string
	}{
		{"trial", "Alex"},
		{"sprint", "Jordan"},
		{"founder", "Morgan"},
		{"enterprise", "Taylor"},
		{"FOUNDER", "Morgan"},
		{"", "Alex"},
		{"unknown-plan", "Alex"},
	}
	for _, tc := range tests {
		if got := PersonaForPlan(tc.plan); got.Name != tc.want {
			t.Errorf("PersonaForPlan(%q) = %s, want %s", tc.plan, got.Name, tc.want)
		}
	}
}
