package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/startupai/startupai-backend/internal/clients/openai"
	"github.com/startupai/startupai-backend/internal/onboarding"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// modelAssessor extracts topic coverage with a structured-output model call
// and degrades to the keyword heuristic when the call fails.
type modelAssessor struct {
	client    openai.Client
	heuristic onboarding.HeuristicAssessor
	log       *logger.Logger
}

// NewModelAssessor wraps an OpenAI client as an onboarding assessor. A nil
// client returns the pure heuristic.
func NewModelAssessor(client openai.Client, log *logger.Logger) onboarding.Assessor {
	if client == nil {
		log.Warn("no model client configured, assessments run on the keyword heuristic")
		return onboarding.HeuristicAssessor{}
	}
	return &modelAssessor{client: client, log: log.With("service", "ModelAssessor")}
}

func (a *modelAssessor) Assess(ctx context.Context, req onboarding.AssessRequest) (onboarding.Assessment, error) {
	out, err := a.client.GenerateJSON(ctx,
		a.systemPrompt(req),
		a.userPrompt(req),
		"stage_assessment",
		assessmentSchema(req.Stage),
	)
	if err != nil {
		a.log.Warn("model assessment failed, using heuristic", "stage", req.Stage.Number, "error", err)
		return a.heuristic.Assess(ctx, req)
	}

	parsed, err := parseAssessment(req.Stage, out)
	if err != nil {
		a.log.Warn("model assessment unparseable, using heuristic", "stage", req.Stage.Number, "error", err)
		return a.heuristic.Assess(ctx, req)
	}
	if parsed.Reply == "" {
		merged := onboarding.MergeFields(req.Fields, parsed.Topics)
		parsed.Reply = onboarding.NextQuestion(req.Stage, merged)
	}
	return parsed, nil
}

func (a *modelAssessor) systemPrompt(req onboarding.AssessRequest) string {
	persona := req.PersonaName
	if persona == "" {
		persona = "Alex"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a startup validation interviewer. ", persona)
	fmt.Fprintf(&b, "The current interview stage is %q: %s. ", req.Stage.Name, req.Stage.Goal)
	b.WriteString("Extract values only for topics the founder actually addressed. ")
	b.WriteString("If the founder explicitly says they do not know a topic, set its value to the string \"uncertain\". ")
	b.WriteString("Leave unaddressed topics null. Then write a short conversational reply that asks about one missing topic.")
	return b.String()
}

func (a *modelAssessor) userPrompt(req onboarding.AssessRequest) string {
	known, _ := json.Marshal(req.Fields)
	var b strings.Builder
	b.WriteString("Topics for this stage:\n")
	for _, t := range req.Stage.Topics {
		kind := "string"
		if t.Array {
			kind = "array of strings"
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", t.Name, kind, t.Prompt)
	}
	fmt.Fprintf(&b, "\nAlready known fields: %s\n", string(known))
	fmt.Fprintf(&b, "\nFounder message:\n%s\n", req.Message)
	return b.String()
}

func assessmentSchema(stage onboarding.Stage) map[string]any {
	topicProps := map[string]any{}
	for _, t := range stage.Topics {
		if t.Array {
			topicProps[t.Name] = map[string]any{
				"type":  []string{"array", "null"},
				"items": map[string]any{"type": "string"},
			}
		} else {
			topicProps[t.Name] = map[string]any{"type": []string{"string", "null"}}
		}
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topics": map[string]any{
				"type":                 "object",
				"properties":           topicProps,
				"required":             stage.RequiredTopics(),
				"additionalProperties": false,
			},
			"reply": map[string]any{"type": "string"},
		},
		"required":             []string{"topics", "reply"},
		"additionalProperties": false,
	}
}

func parseAssessment(stage onboarding.Stage, out map[string]any) (onboarding.Assessment, error) {
	res := onboarding.Assessment{Topics: map[string]any{}}

	rawTopics, ok := out["topics"].(map[string]any)
	if !ok {
		return res, fmt.Errorf("missing topics object")
	}
	for _, t := range stage.Topics {
		v, present := rawTopics[t.Name]
		if !present || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		res.Topics[t.Name] = v
		if s, isStr := v.(string); isStr && s == onboarding.UncertainValue {
			res.Uncertain = append(res.Uncertain, t.Name)
		}
	}
	if reply, ok := out["reply"].(string); ok {
		res.Reply = strings.TrimSpace(reply)
	}
	return res, nil
}
