package onboarding

import "testing"

func TestLoadRegistry(t *testing.T) {
	r, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := r.TotalStages(); got != 7 {
		t.Fatalf("TotalStages = %d, want 7", got)
	}

	wantTopics := map[int][]string{
		1: {"business_concept", "inspiration", "current_stage"},
		2: {"target_customers", "customer_segments", "current_solutions"},
		3: {"problem_description", "pain_level", "frequency"},
		4: {"solution_description", "unique_value_prop", "differentiation"},
		5: {"competitors", "alternatives", "switching_barriers"},
		6: {"budget_range", "available_resources", "constraints"},
		7: {"short_term_goals", "success_metrics", "priorities"},
	}
	wantThresholds := map[int]float64{
		1: 0.80, 2: 0.75, 3: 0.80, 4: 0.75, 5: 0.70, 6: 0.75, 7: 0.85,
	}

	for num, topics := range wantTopics {
		st, ok := r.Stage(num)
		if !ok {
			t.Fatalf("stage %d missing", num)
		}
		if st.Threshold != wantThresholds[num] {
			t.Errorf("stage %d threshold = %v, want %v", num, st.Threshold, wantThresholds[num])
		}
		got := st.RequiredTopics()
		if len(got) != len(topics) {
			t.Fatalf("stage %d topics = %v, want %v", num, got, topics)
		}
		for i := range topics {
			if got[i] != topics[i] {
				t.Errorf("stage %d topic[%d] = %q, want %q", num, i, got[i], topics[i])
			}
		}
	}

	if got := r.TotalRequiredTopics(); got != 21 {
		t.Errorf("TotalRequiredTopics = %d, want 21", got)
	}
	if _, ok := r.Stage(8); ok {
		t.Error("Stage(8) should not exist")
	}
}

func TestRegistryStagesHaveQuestions(t *testing.T) {
	r := MustLoadRegistry()
	for _, st := range r.Stages() {
		if st.OpeningQuestion == "" {
			t.Errorf("stage %d has no opening question", st.Number)
		}
		for _, topic := range st.Topics {
			if topic.Prompt == "" {
				t.Errorf("stage %d topic %s has no prompt", st.Number, topic.Name)
			}
			if len(topic.Keywords) == 0 {
				t.Errorf("stage %d topic %s has no keywords", st.Number, topic.Name)
			}
		}
	}
}
