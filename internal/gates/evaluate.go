package gates

import (
	"fmt"
	"sort"
	"strings"
)

// Result is one gate evaluation outcome.
type Result struct {
	Stage            string   `json:"stage"`
	Status           string   `json:"status"`
	Reasons          []string `json:"reasons"`
	ReadinessScore   float64  `json:"readiness_score"`
	EvidenceCount    int      `json:"evidence_count"`
	ExperimentsCount int      `json:"experiments_count"`
}

// Evaluate scores the evidence against the stage's criteria. With no
// evidence at all the gate is Pending, not Failed. All thresholds are
// inclusive: evidence exactly at the bar passes. criteria overrides the
// stage default when non-nil.
func Evaluate(stage string, items []Item, criteria *Criteria) Result {
	res := Result{
		Stage:            normalizeStage(stage),
		EvidenceCount:    len(items),
		ExperimentsCount: CountExperiments(items),
	}
	if len(items) == 0 {
		res.Status = StatusPending
		res.Reasons = []string{"No evidence collected yet"}
		return res
	}

	c := resolveCriteria(stage, criteria)
	res.ReadinessScore = ReadinessScore(stage, items, criteria)

	var reasons []string

	if got := res.ExperimentsCount; got < c.MinExperiments {
		reasons = append(reasons, fmt.Sprintf("Insufficient experiments: %d of %d required", got, c.MinExperiments))
	}
	if got := Quality(items); got < c.MinQuality {
		reasons = append(reasons, fmt.Sprintf("Evidence quality too low: %.2f (minimum %.2f)", got, c.MinQuality))
	}
	if len(items) < c.MinTotalEvidence {
		reasons = append(reasons, fmt.Sprintf("Insufficient evidence: %d of %d required items", len(items), c.MinTotalEvidence))
	}
	if missing := missingTypes(items, c.RequiredTypes); len(missing) > 0 {
		reasons = append(reasons, "Missing required evidence types: "+strings.Join(missing, ", "))
	}
	reasons = append(reasons, mixShortfalls(items, c.StrengthMix)...)

	if len(reasons) > 0 {
		res.Status = StatusFailed
		res.Reasons = reasons
		return res
	}
	res.Status = StatusPassed
	res.Reasons = []string{}
	return res
}

func missingTypes(items []Item, required []string) []string {
	present := Types(items)
	var missing []string
	for _, t := range required {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

func mixShortfalls(items []Item, required map[string]int) []string {
	mix := StrengthMix(items)
	strengths := make([]string, 0, len(required))
	for s := range required {
		strengths = append(strengths, s)
	}
	sort.Strings(strengths)

	var out []string
	for _, s := range strengths {
		want := required[s]
		if want > 0 && mix[s] < want {
			out = append(out, fmt.Sprintf("Need at least %d %s evidence items, have %d", want, s, mix[s]))
		}
	}
	return out
}
