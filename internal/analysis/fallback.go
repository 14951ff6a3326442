package analysis

import "strings"

// FallbackText renders a deterministic analysis narrative when the model
// path is unavailable. The bullet structure feeds BuildPayload the same way
// model output does.
func FallbackText(in Inputs) string {
	question := strings.TrimSpace(in.StrategicQuestion)
	if question == "" {
		question = "your strategic question"
	}

	parts := []string{
		"Strategic analysis focused on: " + question + ".",
		"Key Recommendations:",
		"- Validate the problem with direct customer conversations within the next two weeks.",
		"- Prototype a minimal solution and measure engagement to confirm demand.",
		"- Map the competitive landscape and identify differentiation angles based on evidence.",
		"- Define success metrics tied to acquisition, activation, and validation milestones.",
	}
	if ctx := strings.TrimSpace(in.ProjectContext); ctx != "" {
		parts = append(parts, "Context considered: "+truncate(ctx, 160)+"...")
	}
	return strings.Join(parts, "\n")
}
