package onboarding

import (
	"context"
	"strings"
)

// UncertainValue is recorded for a topic the founder explicitly could not
// answer. Covered-but-uncertain still counts toward stage coverage.
const UncertainValue = "uncertain"

// Assessment is the extraction result for one founder message.
type Assessment struct {
	// Topics maps covered topic names to extracted values. Array topics hold
	// []any, scalar topics strings.
	Topics map[string]any `json:"topics"`
	// Reply is the assistant's next message to the founder.
	Reply string `json:"reply"`
	// Uncertain lists topics the founder signaled they could not answer.
	Uncertain []string `json:"uncertain,omitempty"`
}

// AssessRequest carries the context an assessor needs for one message.
type AssessRequest struct {
	Stage       Stage
	Message     string
	Fields      map[string]any
	PersonaName string
}

// Assessor extracts topic coverage from a founder message. The model-backed
// implementation lives in the services layer; HeuristicAssessor is the
// deterministic fallback used when the model path is unavailable.
type Assessor interface {
	Assess(ctx context.Context, req AssessRequest) (Assessment, error)
}

// HeuristicAssessor covers topics by keyword matching against the stage's
// registry entries. It never fails.
type HeuristicAssessor struct{}

var _ Assessor = HeuristicAssessor{}

var uncertaintyPhrases = []string{
	"i don't know",
	"i dont know",
	"don't know",
	"not sure",
	"no idea",
	"unsure",
	"hard to say",
	"haven't thought",
}

func (HeuristicAssessor) Assess(_ context.Context, req AssessRequest) (Assessment, error) {
	msg := strings.TrimSpace(req.Message)
	lower := strings.ToLower(msg)

	out := Assessment{Topics: map[string]any{}}
	if msg == "" {
		out.Reply = NextQuestion(req.Stage, req.Fields)
		return out, nil
	}

	for _, topic := range req.Stage.Topics {
		if !matchesTopic(lower, topic) {
			continue
		}
		if topic.Array {
			out.Topics[topic.Name] = matchingSentences(msg, topic)
		} else {
			out.Topics[topic.Name] = msg
		}
	}

	// An explicit "I don't know" covers the first still-open topic with the
	// uncertain marker so the interview does not loop on it.
	if signalsUncertainty(lower) {
		for _, topic := range req.Stage.Topics {
			_, inBrief := req.Fields[topic.Name]
			_, justCovered := out.Topics[topic.Name]
			if !inBrief && !justCovered {
				out.Topics[topic.Name] = UncertainValue
				out.Uncertain = append(out.Uncertain, topic.Name)
				break
			}
		}
	}

	merged := MergeFields(req.Fields, out.Topics)
	out.Reply = NextQuestion(req.Stage, merged)
	return out, nil
}

func signalsUncertainty(lower string) bool {
	for _, p := range uncertaintyPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func matchesTopic(lower string, topic Topic) bool {
	for _, kw := range topic.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// matchingSentences returns the sentences of msg that hit one of the topic's
// keywords, as the extracted array value.
func matchingSentences(msg string, topic Topic) []any {
	var out []any
	for _, sentence := range splitSentences(msg) {
		if matchesTopic(strings.ToLower(sentence), topic) {
			out = append(out, sentence)
		}
	}
	if len(out) == 0 {
		out = append(out, msg)
	}
	return out
}

func splitSentences(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == ';' || r == '\n'
	}) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NextQuestion picks the follow-up for the stage given the merged brief: the
// prompt of the first uncovered topic, or the stage goal restated when all
// topics are already covered.
func NextQuestion(stage Stage, fields map[string]any) string {
	for _, topic := range stage.Topics {
		if _, ok := fields[topic.Name]; !ok {
			return topic.Prompt
		}
	}
	return "Great, I think we've covered " + strings.ToLower(stage.Name) + ". Anything you'd like to add before we move on?"
}
