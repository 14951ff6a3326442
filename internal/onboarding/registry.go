// Package onboarding holds the staged founder-interview engine: the stage
// registry, the message assessor, the advancement decider, and the brief
// merger. Everything except the model-backed assessor is pure and
// deterministic.
package onboarding

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed stages.yaml
var stagesYAML []byte

// Topic is one piece of information a stage tries to elicit.
type Topic struct {
	Name     string   `yaml:"name"`
	Array    bool     `yaml:"array"`
	Prompt   string   `yaml:"prompt"`
	Keywords []string `yaml:"keywords"`
}

// Stage is one step of the interview with its required topics and the
// coverage threshold that gates advancement out of it.
type Stage struct {
	Number          int     `yaml:"number"`
	Name            string  `yaml:"name"`
	Goal            string  `yaml:"goal"`
	Threshold       float64 `yaml:"threshold"`
	OpeningQuestion string  `yaml:"opening_question"`
	Topics          []Topic `yaml:"topics"`
}

// RequiredTopics returns the topic names for this stage, in registry order.
func (s Stage) RequiredTopics() []string {
	out := make([]string, 0, len(s.Topics))
	for _, t := range s.Topics {
		out = append(out, t.Name)
	}
	return out
}

// Topic returns the named topic, or false when the stage does not require it.
func (s Stage) Topic(name string) (Topic, bool) {
	for _, t := range s.Topics {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}

// Registry is the ordered set of interview stages.
type Registry struct {
	stages []Stage
	byNum  map[int]Stage
	topics map[string]Topic
}

// LoadRegistry parses and validates the embedded stage definitions.
func LoadRegistry() (*Registry, error) {
	var doc struct {
		Stages []Stage `yaml:"stages"`
	}
	if err := yaml.Unmarshal(stagesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse stage registry: %w", err)
	}
	if len(doc.Stages) == 0 {
		return nil, fmt.Errorf("stage registry is empty")
	}
	r := &Registry{
		stages: doc.Stages,
		byNum:  make(map[int]Stage, len(doc.Stages)),
		topics: make(map[string]Topic),
	}
	for i, st := range doc.Stages {
		if st.Number != i+1 {
			return nil, fmt.Errorf("stage %q: number %d out of sequence", st.Name, st.Number)
		}
		if st.Threshold <= 0 || st.Threshold > 1 {
			return nil, fmt.Errorf("stage %d: threshold %v out of range", st.Number, st.Threshold)
		}
		if len(st.Topics) == 0 {
			return nil, fmt.Errorf("stage %d has no topics", st.Number)
		}
		for _, t := range st.Topics {
			if t.Name == "" {
				return nil, fmt.Errorf("stage %d: topic with empty name", st.Number)
			}
			if _, dup := r.topics[t.Name]; dup {
				return nil, fmt.Errorf("topic %q defined in more than one stage", t.Name)
			}
			r.topics[t.Name] = t
		}
		r.byNum[st.Number] = st
	}
	return r, nil
}

// MustLoadRegistry is LoadRegistry for wiring paths where the embedded
// definitions are known-good.
func MustLoadRegistry() *Registry {
	r, err := LoadRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// TotalStages reports the number of stages in the registry.
func (r *Registry) TotalStages() int { return len(r.stages) }

// Stages returns all stages in order.
func (r *Registry) Stages() []Stage { return r.stages }

// Stage returns the stage with the given number.
func (r *Registry) Stage(number int) (Stage, bool) {
	st, ok := r.byNum[number]
	return st, ok
}

// Topic looks a topic up across all stages.
func (r *Registry) Topic(name string) (Topic, bool) {
	t, ok := r.topics[name]
	return t, ok
}

// TotalRequiredTopics reports the number of topics across all stages. Used as
// the denominator for overall coverage.
func (r *Registry) TotalRequiredTopics() int { return len(r.topics) }
