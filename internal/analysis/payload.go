package analysis

import (
	"time"

	"github.com/google/uuid"
)

// Inputs describes what the analysis was asked about.
type Inputs struct {
	StrategicQuestion string `json:"strategic_question"`
	ProjectContext    string `json:"project_context,omitempty"`
}

// Insight is one headline finding.
type Insight struct {
	ID         string `json:"id"`
	Headline   string `json:"headline"`
	Confidence string `json:"confidence"`
	Support    string `json:"support"`
}

// EvidenceItem is an evidence suggestion derived from the analysis text.
type EvidenceItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Source   string   `json:"source"`
	Strength string   `json:"strength"`
	Tags     []string `json:"tags"`
}

// ReportSection is the rendered report envelope.
type ReportSection struct {
	Title       string    `json:"title"`
	ReportType  string    `json:"report_type"`
	Content     string    `json:"content"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BriefSection maps analysis output back onto founder-brief fields.
type BriefSection struct {
	ProblemDescription     string             `json:"problem_description"`
	SolutionDescription    string             `json:"solution_description"`
	UniqueValueProposition string             `json:"unique_value_proposition"`
	DifferentiationFactors []string           `json:"differentiation_factors"`
	BusinessStage          string             `json:"business_stage"`
	RecommendedNextSteps   []string           `json:"recommended_next_steps"`
	ConfidenceScores       map[string]float64 `json:"ai_confidence_scores"`
	ValidationFlags        []string           `json:"validation_flags"`
}

// QualitySignals scores the analysis itself.
type QualitySignals struct {
	AnalysisConfidence float64  `json:"analysis_confidence"`
	EvidenceStrength   float64  `json:"evidence_strength"`
	InsightDepth       float64  `json:"insight_depth"`
	QualityTags        []string `json:"quality_tags"`
}

// StageMetric is a per-pipeline-stage coverage/quality pair.
type StageMetric struct {
	Stage    string  `json:"stage"`
	Coverage float64 `json:"coverage"`
	Quality  float64 `json:"quality"`
}

// Payload is the full structured analysis contract.
type Payload struct {
	AnalysisID     string         `json:"analysis_id"`
	RunStartedAt   time.Time      `json:"run_started_at"`
	Summary        string         `json:"summary"`
	Insights       []Insight      `json:"insight_summaries"`
	EvidenceItems  []EvidenceItem `json:"evidence_items"`
	Report         ReportSection  `json:"report"`
	Brief          BriefSection   `json:"entrepreneur_brief"`
	RawOutput      string         `json:"raw_output"`
	Inputs         Inputs         `json:"inputs"`
	UserID         string         `json:"user_id"`
	QualitySignals QualitySignals `json:"quality_signals"`
	StageMetrics   []StageMetric  `json:"stage_metrics"`
}

const (
	maxSummarySentences = 3
	maxBullets          = 6
	maxEvidenceItems    = 3
)

// BuildPayload derives the structured contract from raw analysis text. It is
// total: even empty text yields a well-formed payload.
func BuildPayload(rawText string, in Inputs, userID, analysisID, model string, now time.Time) Payload {
	summary := Summary(rawText, maxSummarySentences)
	bullets := Bullets(rawText, maxBullets)

	if summary == "" && rawText != "" {
		summary = truncate(rawText, 350)
	}
	if len(bullets) == 0 && summary != "" {
		bullets = []string{summary}
	}

	insights := make([]Insight, 0, len(bullets))
	for _, b := range bullets {
		insights = append(insights, Insight{
			ID:         uuid.NewString(),
			Headline:   b,
			Confidence: "medium",
			Support:    "Derived from model synthesis",
		})
	}

	evidenceBullets := bullets
	if len(evidenceBullets) > maxEvidenceItems {
		evidenceBullets = evidenceBullets[:maxEvidenceItems]
	}
	evidence := make([]EvidenceItem, 0, len(evidenceBullets))
	for _, b := range evidenceBullets {
		evidence = append(evidence, EvidenceItem{
			ID:       uuid.NewString(),
			Title:    truncate(b, 90),
			Content:  b,
			Source:   "model synthesis",
			Strength: "medium",
			Tags:     []string{"ai_generated", "strategic_analysis"},
		})
	}

	question := in.StrategicQuestion
	if question == "" {
		question = "Strategic Focus"
	}

	content := rawText
	if content == "" {
		content = summary
	}

	uvp := summary
	if len(bullets) > 0 {
		uvp = bullets[0]
	}
	topBullets := bullets
	if len(topBullets) > 3 {
		topBullets = topBullets[:3]
	}

	evidenceStrength := 0.55 + min(float64(len(evidence))*0.1, 0.35)
	insightDepth := 0.6 + min(float64(len(insights))*0.05, 0.3)
	overall := round2((evidenceStrength + insightDepth) / 2)

	var qualityTags []string
	if evidenceStrength < 0.6 {
		qualityTags = append(qualityTags, "needs_more_evidence")
	}
	if insightDepth >= 0.75 {
		qualityTags = append(qualityTags, "high_value_insights")
	}

	return Payload{
		AnalysisID:    analysisID,
		RunStartedAt:  now.UTC(),
		Summary:       summary,
		Insights:      insights,
		EvidenceItems: evidence,
		Report: ReportSection{
			Title:       "Strategic Analysis – " + question,
			ReportType:  "recommendation",
			Content:     content,
			Model:       model,
			GeneratedAt: now.UTC(),
		},
		Brief: BriefSection{
			ProblemDescription:     summary,
			SolutionDescription:    in.StrategicQuestion,
			UniqueValueProposition: uvp,
			DifferentiationFactors: topBullets,
			BusinessStage:          "validation",
			RecommendedNextSteps:   topBullets,
			ConfidenceScores:       map[string]float64{"analysis": 0.6},
			ValidationFlags:        []string{},
		},
		RawOutput: rawText,
		Inputs:    in,
		UserID:    userID,
		QualitySignals: QualitySignals{
			AnalysisConfidence: overall,
			EvidenceStrength:   round2(evidenceStrength),
			InsightDepth:       round2(insightDepth),
			QualityTags:        qualityTags,
		},
		StageMetrics: []StageMetric{
			{Stage: "Entrepreneur Brief", Coverage: 0.85, Quality: overall},
			{Stage: "Customer Insights", Coverage: 0.78, Quality: round2(min(0.82, overall+0.04))},
			{Stage: "Validation Roadmap", Coverage: 0.72, Quality: round2(min(0.8, overall+0.02))},
		},
	}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
