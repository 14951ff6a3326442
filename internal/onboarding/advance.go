package onboarding

// The per-stage threshold is capped so no single stage can demand full
// coverage before moving on.
const maxEffectiveThreshold = 0.75

// Fallback advancement keeps a stalled interview moving: after this many
// messages in one stage, overall coverage alone can unlock the next stage.
const (
	fallbackMessageCount    = 6
	fallbackOverallCoverage = 0.6
)

// AdvanceReason explains why a stage transition did or did not happen.
type AdvanceReason string

const (
	ReasonThresholdMet AdvanceReason = "threshold_met"
	ReasonFallback     AdvanceReason = "fallback"
	ReasonBelowGate    AdvanceReason = "below_threshold"
	ReasonFinalStage   AdvanceReason = "final_stage"
)

// Decision is the outcome of evaluating a stage after one exchange.
type Decision struct {
	Advance       bool          `json:"advance"`
	NextStage     int           `json:"next_stage"`
	Completed     bool          `json:"completed"`
	CoverageRatio float64       `json:"coverage_ratio"`
	Reason        AdvanceReason `json:"reason"`
	MissingTopics []string      `json:"missing_topics,omitempty"`
}

// StageCoverage computes the share of the stage's required topics present in
// fields. A topic counts as covered whatever its value, including the literal
// "uncertain" recorded when the founder could not answer.
func StageCoverage(stage Stage, fields map[string]any) (ratio float64, missing []string) {
	if len(stage.Topics) == 0 {
		return 0, nil
	}
	covered := 0
	for _, t := range stage.Topics {
		if _, ok := fields[t.Name]; ok {
			covered++
		} else {
			missing = append(missing, t.Name)
		}
	}
	return float64(covered) / float64(len(stage.Topics)), missing
}

// OverallCoverage computes coverage across every topic in the registry.
func (r *Registry) OverallCoverage(fields map[string]any) float64 {
	total := r.TotalRequiredTopics()
	if total == 0 {
		return 0
	}
	covered := 0
	for name := range r.topics {
		if _, ok := fields[name]; ok {
			covered++
		}
	}
	return float64(covered) / float64(total)
}

// Decide evaluates whether the session leaves its current stage. fields is
// the merged brief after this exchange; stageMessages counts user messages
// sent while in the current stage, including the one just assessed.
//
// The stage threshold is capped at 0.75. When the threshold is not met, a
// fallback fires once the stage has absorbed six or more messages and
// overall coverage has reached 0.6. Advancement from the final stage
// completes the session rather than moving past it.
func (r *Registry) Decide(currentStage int, fields map[string]any, stageMessages int) Decision {
	stage, ok := r.Stage(currentStage)
	if !ok {
		return Decision{NextStage: currentStage, Reason: ReasonBelowGate}
	}

	ratio, missing := StageCoverage(stage, fields)
	d := Decision{
		NextStage:     currentStage,
		CoverageRatio: ratio,
		MissingTopics: missing,
	}

	threshold := stage.Threshold
	if threshold > maxEffectiveThreshold {
		threshold = maxEffectiveThreshold
	}

	switch {
	case ratio >= threshold:
		d.Advance = true
		d.Reason = ReasonThresholdMet
	case stageMessages >= fallbackMessageCount && r.OverallCoverage(fields) >= fallbackOverallCoverage:
		d.Advance = true
		d.Reason = ReasonFallback
	default:
		d.Reason = ReasonBelowGate
		return d
	}

	if currentStage >= r.TotalStages() {
		d.Completed = true
		d.Reason = ReasonFinalStage
		return d
	}
	d.NextStage = currentStage + 1
	return d
}
