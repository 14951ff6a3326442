package onboarding

import "strings"

// Persona is the interviewer identity presented to the founder. Which
// persona greets a founder depends on their plan.
type Persona struct {
	Name     string
	Title    string
	Tone     string
	Greeting string
}

var personasByPlan = map[string]Persona{
	"trial": {
		Name:     "Alex",
		Title:    "Startup Guide",
		Tone:     "encouraging and curious",
		Greeting: "Hi, I'm Alex! I'll be walking you through a few questions about your idea.",
	},
	"sprint": {
		Name:     "Jordan",
		Title:    "Validation Coach",
		Tone:     "direct and action-oriented",
		Greeting: "Hey, Jordan here. Let's move fast and figure out what's real about this idea.",
	},
	"founder": {
		Name:     "Morgan",
		Title:    "Strategy Advisor",
		Tone:     "analytical and thorough",
		Greeting: "Hello, I'm Morgan. We'll go deep on your business so the analysis has something to bite on.",
	},
	"enterprise": {
		Name:     "Taylor",
		Title:    "Venture Partner",
		Tone:     "measured and strategic",
		Greeting: "Welcome, I'm Taylor. Let's build a rigorous picture of the opportunity.",
	},
}

// PersonaForPlan resolves the interviewer persona for a plan type, falling
// back to the trial persona for unknown plans.
func PersonaForPlan(planType string) Persona {
	if p, ok := personasByPlan[strings.ToLower(strings.TrimSpace(planType))]; ok {
		return p
	}
	return personasByPlan["trial"]
}
