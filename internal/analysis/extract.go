// Package analysis turns raw strategic-analysis text into the structured
// payload the frontend renders, and provides a deterministic fallback when
// the model path is unavailable.
package analysis

import (
	"regexp"
	"strings"
)

var (
	sentenceSplit = regexp.MustCompile(`(?:[.!?])\s+`)
	numberedLine  = regexp.MustCompile(`^\d+[\).\s-]+(.+)$`)
)

// Summary returns up to maxSentences leading sentences of text, joined with
// single spaces.
func Summary(text string, maxSentences int) string {
	text = strings.TrimSpace(text)
	if text == "" || maxSentences <= 0 {
		return ""
	}
	var out []string
	rest := text
	for len(out) < maxSentences {
		loc := sentenceSplit.FindStringIndex(rest)
		if loc == nil {
			if s := strings.TrimSpace(rest); s != "" {
				out = append(out, s)
			}
			break
		}
		if s := strings.TrimSpace(rest[:loc[0]+1]); s != "" {
			out = append(out, s)
		}
		rest = rest[loc[1]:]
	}
	return strings.Join(out, " ")
}

// Bullets extracts up to limit bullet items from text. Lines starting with
// "-", "*" or a numbered prefix count as bullets. "•" markers are stripped
// before matching, so a line marked only with "•" is dropped.
func Bullets(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		cleaned := strings.Trim(line, " \t•")
		if cleaned == "" {
			continue
		}
		switch {
		case strings.HasPrefix(cleaned, "-") || strings.HasPrefix(cleaned, "*"):
			if b := strings.TrimSpace(strings.TrimLeft(cleaned, "-* ")); b != "" {
				out = append(out, b)
			}
		default:
			if m := numberedLine.FindStringSubmatch(cleaned); m != nil {
				if b := strings.TrimSpace(m[1]); b != "" {
					out = append(out, b)
				}
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out
}

// truncate clips s to max bytes on a rune boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(string(runes)) > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
