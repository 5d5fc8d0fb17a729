package triage

import "strings"

// Marker is the sentinel the completion model is instructed to emit when it
// cannot answer confidently.
const Marker = "[[NEEDS_SPECIALIST]]"

// Strategy classifies a model answer as requiring human escalation. It must
// be pure: no persisted state, no side effects.
type Strategy interface {
	NeedsAgent(answer string) bool
	// CleanAnswer returns the user-visible form of the answer, with any
	// machine-readable escalation signal removed.
	CleanAnswer(answer string) string
}

// MarkerStrategy detects the embedded sentinel and strips the lines carrying
// it before the text is shown to the user.
type MarkerStrategy struct{}

func (MarkerStrategy) NeedsAgent(answer string) bool {
	return strings.Contains(strings.ToLower(answer), strings.ToLower(Marker))
}

func (MarkerStrategy) CleanAnswer(answer string) string {
	if answer == "" {
		return answer
	}
	marker := strings.ToLower(Marker)
	var kept []string
	for _, line := range strings.Split(answer, "\n") {
		if strings.Contains(strings.ToLower(line), marker) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// escalationPhrases are genuine answer fragments that signal low confidence,
// so lexical triage needs no stripping.
var escalationPhrases = []string{
	"not sure",
	"need a specialist",
	"needs a specialist",
	"cannot help",
	"can't help",
	"contact support",
}

// LexicalStrategy matches a fixed phrase list case-insensitively.
type LexicalStrategy struct{}

func (LexicalStrategy) NeedsAgent(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range escalationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (LexicalStrategy) CleanAnswer(answer string) string {
	return answer
}

// ForName maps a configuration value to a strategy, defaulting to marker.
func ForName(name string) Strategy {
	if strings.EqualFold(name, "lexical") {
		return LexicalStrategy{}
	}
	return MarkerStrategy{}
}
