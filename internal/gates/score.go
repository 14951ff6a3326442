package gates

// Item is one piece of evidence as the scorer sees it.
type Item struct {
	Type         string  `json:"type"`
	Strength     string  `json:"strength"`
	QualityScore float64 `json:"quality_score"`
}

// Quality returns the mean quality score across all items, 0 for none.
func Quality(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, it := range items {
		sum += it.QualityScore
	}
	return sum / float64(len(items))
}

// CountExperiments counts items of type "experiment".
func CountExperiments(items []Item) int {
	n := 0
	for _, it := range items {
		if it.Type == "experiment" {
			n++
		}
	}
	return n
}

// Types returns the set of evidence types present.
func Types(items []Item) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it.Type] = true
	}
	return out
}

// StrengthMix counts items per strength bucket. All three buckets are always
// present in the result.
func StrengthMix(items []Item) map[string]int {
	mix := map[string]int{StrengthWeak: 0, StrengthMedium: 0, StrengthStrong: 0}
	for _, it := range items {
		mix[it.Strength]++
	}
	return mix
}

// ReadinessScore measures how close the evidence is to clearing the stage's
// gate, as the mean of five capped component ratios: experiments, quality,
// total volume, required-type coverage, and strength mix. The mix component
// is the worst ratio across required strengths; zero-requirement strengths
// are ignored. Empty evidence scores 0.
func ReadinessScore(stage string, items []Item, criteria *Criteria) float64 {
	if len(items) == 0 {
		return 0
	}
	c := resolveCriteria(stage, criteria)

	components := []float64{
		cappedRatio(float64(CountExperiments(items)), float64(c.MinExperiments)),
		cappedRatio(Quality(items), c.MinQuality),
		cappedRatio(float64(len(items)), float64(c.MinTotalEvidence)),
		typeCoverage(items, c.RequiredTypes),
		mixRatio(items, c.StrengthMix),
	}

	var sum float64
	for _, v := range components {
		sum += v
	}
	return sum / float64(len(components))
}

func resolveCriteria(stage string, override *Criteria) Criteria {
	if override != nil {
		return *override
	}
	if c, ok := DefaultCriteria[normalizeStage(stage)]; ok {
		return c
	}
	return DefaultCriteria[StageDesirability]
}

func cappedRatio(have, want float64) float64 {
	if want <= 0 {
		return 1
	}
	if have >= want {
		return 1
	}
	return have / want
}

func typeCoverage(items []Item, required []string) float64 {
	if len(required) == 0 {
		return 1
	}
	present := Types(items)
	covered := 0
	for _, t := range required {
		if present[t] {
			covered++
		}
	}
	return float64(covered) / float64(len(required))
}

func mixRatio(items []Item, required map[string]int) float64 {
	worst := 1.0
	any := false
	mix := StrengthMix(items)
	for strength, want := range required {
		if want <= 0 {
			continue
		}
		any = true
		if r := cappedRatio(float64(mix[strength]), float64(want)); r < worst {
			worst = r
		}
	}
	if !any {
		return 1
	}
	return worst
}
