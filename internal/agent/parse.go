// ABOUTME: Parses Thought / Action / Action Input / Final Answer blocks from model output
// ABOUTME: Tolerates markdown fences, bare string inputs and hallucinated observations
package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/harper/newsclip/internal/llm"
)

var (
	thoughtRe     = regexp.MustCompile(`(?is)Thought:\s*(.*?)\s*(?:\n\s*Action:|\n\s*Final Answer:|$)`)
	actionRe      = regexp.MustCompile(`(?im)^\s*Action:\s*` + "`*" + `([A-Za-z_][A-Za-z0-9_]*)`)
	actionInputRe = regexp.MustCompile(`(?is)Action Input:\s*(.*)`)
	finalAnswerRe = regexp.MustCompile(`(?is)Final Answer:\s*(.*)`)
	observationRe = regexp.MustCompile(`(?m)^\s*Observation:`)
)

// errNoAction is returned when output has neither an action nor a final answer
var errNoAction = errors.New("no Action or Final Answer found")

// decision is one parsed model turn
type decision struct {
	Thought string
	Action  string
	Input   string
	Args    map[string]string
	Final   string
	IsFinal bool
}

// cleanOutput strips reasoning blocks and anything the model wrote after
// inventing its own Observation
func cleanOutput(out string) string {
	out = llm.StripReasoning(out)
	if loc := observationRe.FindStringIndex(out); loc != nil {
		out = strings.TrimSpace(out[:loc[0]])
	}
	return out
}

// parseDecision reads a cleaned model turn. An action takes precedence over a
// final answer that follows it, since the model has not seen the observation yet.
func parseDecision(out string) (decision, error) {
	var d decision
	if m := thoughtRe.FindStringSubmatch(out); m != nil {
		d.Thought = strings.TrimSpace(m[1])
	}

	actionLoc := actionRe.FindStringSubmatchIndex(out)
	finalLoc := finalAnswerRe.FindStringSubmatchIndex(out)

	if finalLoc != nil && (actionLoc == nil || finalLoc[0] < actionLoc[0]) {
		d.IsFinal = true
		d.Final = strings.TrimSpace(out[finalLoc[2]:finalLoc[3]])
		return d, nil
	}
	if actionLoc == nil {
		if d.Thought == "" && strings.TrimSpace(out) != "" && !strings.Contains(out, "Thought:") {
			// Plain prose with no protocol markers is treated as the answer
			d.IsFinal = true
			d.Final = strings.TrimSpace(out)
			return d, nil
		}
		return d, errNoAction
	}

	d.Action = out[actionLoc[2]:actionLoc[3]]
	rest := out[actionLoc[1]:]
	if m := actionInputRe.FindStringSubmatch(rest); m != nil {
		d.Input = strings.TrimSpace(m[1])
	}
	return d, nil
}

// parseArgs decodes an Action Input. JSON objects map to string arguments;
// anything else is assigned to fallback, the tool's first parameter.
func parseArgs(input, fallback string) (map[string]string, error) {
	input = stripFence(input)
	args := make(map[string]string)
	if input == "" {
		return args, nil
	}

	if strings.HasPrefix(input, "{") {
		var raw map[string]any
		dec := json.NewDecoder(strings.NewReader(input))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid Action Input JSON: %w", err)
		}
		for k, v := range raw {
			switch val := v.(type) {
			case nil:
			case string:
				args[k] = val
			default:
				b, _ := json.Marshal(val)
				args[k] = string(b)
			}
		}
		return args, nil
	}

	if fallback == "" {
		return args, nil
	}
	var s string
	if json.Unmarshal([]byte(input), &s) == nil {
		input = s
	}
	args[fallback] = input
	return args, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.HasPrefix(strings.TrimSpace(s[:nl]), "{") {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
