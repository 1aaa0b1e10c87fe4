package gameloop

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Decision is the structured form of one LLM reply: the model's rationale,
// the operation it wants, and the operation's arguments. It lives for a
// single turn, owned by the orchestrator.
type Decision struct {
	Rationale string
	Tool      string
	Args      map[string]any
}

// Response wire contract: three labeled lines, any order, case-insensitive.
// Changing these labels breaks every deployed prompt.
const (
	labelThought = "THOUGHT:"
	labelTool    = "TOOL:"
	labelArgs    = "ARGS:"
)

// Parser defaults. Malformed output degrades to a harmless "look".
const (
	defaultRationale = "No reasoning provided"
	defaultAction    = "look"
)

var actionArgPattern = regexp.MustCompile(`"action"\s*:\s*"([^"]+)"`)

// ParseDecision turns raw LLM output into a Decision. It recognizes the
// first occurrence of each label, tolerates markdown decoration on the tool
// name, and repairs loose argument syntax. It never fails: any degree of
// malformation falls back to the documented defaults.
func ParseDecision(raw string) Decision {
	d := Decision{
		Rationale: defaultRationale,
		Tool:      string(OpPlayAction),
		Args:      map[string]any{"action": defaultAction},
	}

	var haveThought, haveTool, haveArgs bool

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		switch {
		case !haveThought && strings.HasPrefix(upper, labelThought):
			haveThought = true
			d.Rationale = valueAfterLabel(line)

		case !haveTool && strings.HasPrefix(upper, labelTool):
			haveTool = true
			tool := strings.ToLower(valueAfterLabel(line))
			tool = stripMarkup(tool)
			if fields := strings.Fields(tool); len(fields) > 0 {
				d.Tool = fields[0]
			}

		case !haveArgs && strings.HasPrefix(upper, labelArgs):
			haveArgs = true
			d.Args = parseArgs(valueAfterLabel(line))
		}
	}

	return d
}

// valueAfterLabel returns the text after the first colon.
func valueAfterLabel(line string) string {
	if _, rest, ok := strings.Cut(line, ":"); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

// stripMarkup removes the markdown decoration models like to wrap names in.
func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}

// parseArgs attempts strict JSON first (after normalizing single quotes),
// then falls back to pattern-extracting a lone action value, then to the
// default no-op.
func parseArgs(text string) map[string]any {
	normalized := strings.ReplaceAll(text, "'", `"`)

	var args map[string]any
	if err := json.Unmarshal([]byte(normalized), &args); err == nil && args != nil {
		return args
	}

	if m := actionArgPattern.FindStringSubmatch(normalized); m != nil {
		return map[string]any{"action": m[1]}
	}

	return map[string]any{"action": defaultAction}
}
