package onboarding

import (
	"reflect"
	"testing"
)

func TestMergeFields(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]any
		updates  map[string]any
		want     map[string]any
	}{
		{
			name:     "new scalar lands",
			existing: map[string]any{},
			updates:  map[string]any{"business_concept": "meal kits for climbers"},
			want:     map[string]any{"business_concept": "meal kits for climbers"},
		},
		{
			name:     "non-empty scalar overwrites",
			existing: map[string]any{"pain_level": "mild"},
			updates:  map[string]any{"pain_level": "severe"},
			want:     map[string]any{"pain_level": "severe"},
		},
		{
			name:     "empty scalar skipped",
			existing: map[string]any{"pain_level": "severe"},
			updates:  map[string]any{"pain_level": "   "},
			want:     map[string]any{"pain_level": "severe"},
		},
		{
			name:     "nil skipped",
			existing: map[string]any{"frequency": "daily"},
			updates:  map[string]any{"frequency": nil},
			want:     map[string]any{"frequency": "daily"},
		},
		{
			name:     "arrays union in order",
			existing: map[string]any{"competitors": []any{"AcmeCo", "Globex"}},
			updates:  map[string]any{"competitors": []any{"Globex", "Initech"}},
			want:     map[string]any{"competitors": []any{"AcmeCo", "Globex", "Initech"}},
		},
		{
			name:     "array dedup ignores case and space",
			existing: map[string]any{"competitors": []any{"AcmeCo"}},
			updates:  map[string]any{"competitors": []any{" acmeco ", "Globex"}},
			want:     map[string]any{"competitors": []any{"AcmeCo", "Globex"}},
		},
		{
			name:     "empty array skipped",
			existing: map[string]any{"competitors": []any{"AcmeCo"}},
			updates:  map[string]any{"competitors": []any{}},
			want:     map[string]any{"competitors": []any{"AcmeCo"}},
		},
		{
			name:     "string slice normalized",
			existing: map[string]any{},
			updates:  map[string]any{"constraints": []string{"no budget", "solo"}},
			want:     map[string]any{"constraints": []any{"no budget", "solo"}},
		},
		{
			name:     "array replaces scalar on mismatch",
			existing: map[string]any{"success_metrics": "revenue"},
			updates:  map[string]any{"success_metrics": []any{"revenue", "retention"}},
			want:     map[string]any{"success_metrics": []any{"revenue", "retention"}},
		},
		{
			name:     "scalar replaces array on mismatch",
			existing: map[string]any{"budget_range": []any{"10k"}},
			updates:  map[string]any{"budget_range": "10k-20k"},
			want:     map[string]any{"budget_range": "10k-20k"},
		},
		{
			name:     "untouched keys survive",
			existing: map[string]any{"inspiration": "a bad trip", "frequency": "weekly"},
			updates:  map[string]any{"pain_level": "high"},
			want:     map[string]any{"inspiration": "a bad trip", "frequency": "weekly", "pain_level": "high"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeFields(tc.existing, tc.updates)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("MergeFields = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestMergeFieldsDoesNotMutateInputs(t *testing.T) {
	existing := map[string]any{"competitors": []any{"AcmeCo"}}
	updates := map[string]any{"competitors": []any{"Globex"}}
	_ = MergeFields(existing, updates)

	if len(existing["competitors"].([]any)) != 1 {
		t.Error("existing map was mutated")
	}
	if len(updates["competitors"].([]any)) != 1 {
		t.Error("updates map was mutated")
	}
}
