// Package gates implements evidence-led validation gates. A project moves
// through four validation stages, and each stage's gate is scored against
// the evidence collected so far.
package gates

import "strings"

// Validation stages, in order.
const (
	StageDesirability = "desirability"
	StageFeasibility  = "feasibility"
	StageViability    = "viability"
	StageScale        = "scale"
)

// Gate statuses.
const (
	StatusPassed  = "Passed"
	StatusFailed  = "Failed"
	StatusPending = "Pending"
)

// Evidence strengths.
const (
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

var stageOrder = []string{StageDesirability, StageFeasibility, StageViability, StageScale}

// Criteria is the bar a stage's evidence must clear.
type Criteria struct {
	MinExperiments   int            `json:"min_experiments"`
	MinQuality       float64        `json:"min_evidence_quality"`
	MinTotalEvidence int            `json:"min_total_evidence"`
	RequiredTypes    []string       `json:"required_evidence_types"`
	StrengthMix      map[string]int `json:"strength_mix"`
}

// DefaultCriteria maps each validation stage to its gate bar. Stages get
// strictly harder as the project matures.
var DefaultCriteria = map[string]Criteria{
	StageDesirability: {
		MinExperiments:   5,
		MinQuality:       0.70,
		MinTotalEvidence: 10,
		RequiredTypes:    []string{"interview", "analytics", "experiment"},
		StrengthMix:      map[string]int{StrengthMedium: 3, StrengthStrong: 2},
	},
	StageFeasibility: {
		MinExperiments:   8,
		MinQuality:       0.75,
		MinTotalEvidence: 15,
		RequiredTypes:    []string{"experiment", "analytics"},
		StrengthMix:      map[string]int{StrengthMedium: 4, StrengthStrong: 3},
	},
	StageViability: {
		MinExperiments:   12,
		MinQuality:       0.80,
		MinTotalEvidence: 20,
		RequiredTypes:    []string{"experiment", "analytics", "interview"},
		StrengthMix:      map[string]int{StrengthMedium: 5, StrengthStrong: 4},
	},
	StageScale: {
		MinExperiments:   15,
		MinQuality:       0.85,
		MinTotalEvidence: 30,
		RequiredTypes:    []string{"experiment", "analytics", "interview"},
		StrengthMix:      map[string]int{StrengthMedium: 6, StrengthStrong: 6},
	},
}

// ValidStage reports whether name is a known validation stage.
func ValidStage(name string) bool {
	_, ok := DefaultCriteria[normalizeStage(name)]
	return ok
}

// NormalizeStage canonicalizes a stage name, accepting the uppercase form
// used on the wire. Returns empty for unknown stages.
func NormalizeStage(name string) string {
	s := normalizeStage(name)
	if _, ok := DefaultCriteria[s]; !ok {
		return ""
	}
	return s
}

func normalizeStage(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NextStage returns the stage after current, or empty when current is the
// final stage (or unknown).
func NextStage(current string) string {
	cur := normalizeStage(current)
	for i, s := range stageOrder {
		if s == cur && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return ""
}

// CanProgress reports whether a project may leave the given stage: its gate
// must be passed and a next stage must exist.
func CanProgress(stage, status string) bool {
	return status == StatusPassed && NextStage(stage) != ""
}
