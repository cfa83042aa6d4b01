// ABOUTME: Removes <think> reasoning blocks emitted by reasoning models
// ABOUTME: Applied to every completion before its text reaches a user or a parser
package llm

import (
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripReasoning drops <think>...</think> blocks and an unterminated trailing
// <think> section, then trims surrounding whitespace
func StripReasoning(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	if i := strings.Index(s, "<think>"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
