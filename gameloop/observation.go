package gameloop

import (
	"regexp"
	"strconv"
	"strings"
)

// Observation is the loop's view of one session reply. The session returns
// opaque text; everything structured here is extracted by this package.
type Observation struct {
	Text     string
	Location string
	Score    int
	Terminal bool
}

// unknownLocation is used when no location hint can be extracted.
const unknownLocation = "Unknown"

// scorePatterns match the score formats games embed in their output.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Score:\s*(\d+)`),
	regexp.MustCompile(`(?i)score[:\s]+(\d+)`),
	regexp.MustCompile(`(?i)\[Score:\s*(\d+)`),
}

// terminalPhrases end the run when any appears in an observation.
var terminalPhrases = []string{
	"game over",
	"you have died",
	"you are dead",
	"*** you have died ***",
}

// failurePhrases mark an action as having failed. Deliberately broad: a false
// positive only nudges the agent away from an action, it never blocks one.
var failurePhrases = []string{
	"can't",
	"cannot",
	"don't",
	"not",
	"fail",
	"impossible",
	"doesn't work",
	"not allowed",
	"not know which way",
	"get in big trouble",
	"look dark",
}

// NewObservation extracts the structured fields from raw session text.
// prevScore carries the running score forward; the score only ever rises.
func NewObservation(text string, prevScore int) Observation {
	return Observation{
		Text:     text,
		Location: ExtractLocation(text),
		Score:    ExtractScore(text, prevScore),
		Terminal: IsTerminal(text),
	}
}

// ExtractLocation returns the location hint: the first non-empty line that is
// not a bracketed status line.
func ExtractLocation(text string) string {
	if text == "" {
		return unknownLocation
	}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "[") {
			return line
		}
	}
	return unknownLocation
}

// ExtractScore scans text for a score and returns the maximum of it and
// current. The max keeps the update idempotent and monotonic even when a
// stale or partial observation reports a lower value.
func ExtractScore(text string, current int) int {
	score := current
	for _, pattern := range scorePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > score {
				score = n
			}
		}
	}
	return score
}

// IsTerminal reports whether the observation ends the game.
func IsTerminal(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range terminalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// MatchesFailure reports whether the observation reads as a failed action.
func MatchesFailure(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range failurePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ParseInventory turns inventory text into a list of item names.
func ParseInventory(text string) []string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "empty-handed") || strings.Contains(lower, "nothing") {
		return []string{}
	}

	idx := strings.Index(text, ":")
	if idx < 0 {
		return []string{}
	}

	var items []string
	for _, item := range strings.Split(text[idx+1:], ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
