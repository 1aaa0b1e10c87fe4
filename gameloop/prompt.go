package gameloop

import (
	"fmt"
	"strings"
)

// SystemPrompt is the fixed instruction sent with every LLM call. The
// THOUGHT/TOOL/ARGS response format it demands is the wire contract with
// ParseDecision.
const SystemPrompt = `You are an expert text adventure game player. Your goal is to explore, collect treasures, and maximize your score.

AVAILABLE TOOLS:
1. play_action - Execute game commands (north, take lamp, open mailbox, etc.)
2. memory - Get current game state, score, and recent history
3. get_map - See explored locations and connections
4. inventory - Check what you're carrying
5. get_valid_actions - Get list of valid actions at current location (USE THIS OFTEN!)

VALID GAME COMMANDS for play_action:
- Movement: north, south, east, west, up, down, enter, exit, ne, nw, se, sw
- Short forms: n, s, e, w, u, d
- Objects: take <item>, drop <item>, open <thing>, close <thing>, examine <thing>
- Light: turn on lamp, turn off lamp
- Interaction: push <thing>, pull <thing>, move <thing>, climb <thing>
- Combat: attack <enemy> with <weapon>
- Other: inventory, look, read <thing>, wait

FORBIDDEN (will NOT work): check, inspect, search, grab, use, help

RESPOND IN THIS EXACT FORMAT (no markdown):
THOUGHT: <brief reasoning about what to do next>
TOOL: <tool_name>
ARGS: <JSON arguments>

Examples:
THOUGHT: I need to see what's around me.
TOOL: play_action
ARGS: {"action": "look"}

THOUGHT: Let me check my current state and score.
TOOL: memory
ARGS: {}

THOUGHT: The mailbox might contain something useful.
TOOL: play_action
ARGS: {"action": "open mailbox"}

STRATEGY:
1. Use get_valid_actions to see what actions are possible at your current location
2. Start by checking inventory to see what you have
3. Explore SYSTEMATICALLY - try valid actions from get_valid_actions first
4. Use get_map frequently to track where you've been
5. Pick up useful items (lamp, torch, sword, keys, etc.)
6. Examine and interact with objects (open, push, pull, move, climb)
7. If stuck, call get_valid_actions to find new possibilities
8. Parse game responses carefully - they contain important clues
9. Don't repeat failed actions - learn from failures

DO NOT repeat the same action multiple times in a row.`

// Prompt-building limits.
const (
	promptHistoryTurns  = 3
	promptValidActions  = 15
	promptUntriedHints  = 3
	promptWalkthrough   = 3
	promptResultExcerpt = 80
	failedPromptMin     = 2
)

// promptInput bundles the per-turn state the prompt builder reads.
type promptInput struct {
	Observation      string
	Score            int
	LocationsCount   int
	TurnIndex        int // zero-based, for walkthrough position
	Walkthrough      []string
	History          []TurnEntry
	RecentActions    []string
	Failed           []string
	ValidActions     []string
	StuckSteps       int
	MapListing       string
	UntriedHints     []string
}

// buildPrompt assembles the contextual prompt for one LLM call: current
// standing, optional walkthrough guidance, recent turns with score deltas,
// repetition and failure warnings, the valid-action snapshot, and stall
// hints, ending with the raw observation.
func buildPrompt(in promptInput) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Current Score: %d", in.Score))
	parts = append(parts, fmt.Sprintf("Locations explored: %d", in.LocationsCount))

	if len(in.Walkthrough) > 0 && in.TurnIndex < len(in.Walkthrough) {
		end := in.TurnIndex + promptWalkthrough
		if end > len(in.Walkthrough) {
			end = len(in.Walkthrough)
		}
		upcoming := in.Walkthrough[in.TurnIndex:end]
		parts = append(parts, fmt.Sprintf("\n[HINT - Optimal next steps: %s]", strings.Join(upcoming, ", ")))
	}

	if len(in.History) > 0 {
		parts = append(parts, "\nRecent actions:")
		prevScore := in.History[0].Score
		for i, entry := range in.History {
			action := entry.Action
			if action == "" {
				action = entry.Tool
			}
			result := entry.Result
			if len(result) > promptResultExcerpt {
				result = result[:promptResultExcerpt] + "..."
			}
			delta := ""
			if i > 0 {
				prevScore = in.History[i-1].Score
			}
			if entry.Score > prevScore {
				delta = fmt.Sprintf(" (+%dpts)", entry.Score-prevScore)
			}
			parts = append(parts, fmt.Sprintf("  > %s @ %s%s -> %s", action, entry.Location, delta, result))
		}

		if repeated, action := allIdentical(in.RecentActions, loopWindow); repeated {
			parts = append(parts, fmt.Sprintf(
				"\n[WARNING: You've been doing '%s' repeatedly. TRY SOMETHING DIFFERENT!]", action))
		}
	}

	if len(in.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("\n[AVOID: These actions have failed: %s]", strings.Join(in.Failed, ", ")))
	}

	if len(in.ValidActions) > 0 {
		valid := in.ValidActions
		if len(valid) > promptValidActions {
			valid = valid[:promptValidActions]
		}
		parts = append(parts, fmt.Sprintf("\n[VALID ACTIONS: %s]", strings.Join(valid, ", ")))
	}

	if in.StuckSteps > mapRefreshStuckAfter && in.MapListing != "" {
		count := 0
		for _, line := range strings.Split(in.MapListing, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "*") {
				count++
			}
		}
		parts = append(parts, fmt.Sprintf(
			"\n[MAP: %d locations explored. Consider calling get_map tool for full details.]", count))
	}

	if in.StuckSteps > validRefreshStuckAfter && len(in.UntriedHints) > 0 {
		hints := in.UntriedHints
		if len(hints) > promptUntriedHints {
			hints = hints[:promptUntriedHints]
		}
		parts = append(parts, fmt.Sprintf("\n[HINT: Try unexplored directions: %s]", strings.Join(hints, ", ")))
	}

	parts = append(parts, fmt.Sprintf("\nCurrent situation:\n%s", in.Observation))
	parts = append(parts, "\nWhat do you do next?")

	return strings.Join(parts, "\n")
}

// allIdentical reports whether the last n entries of actions exist and are
// all the same, returning that action.
func allIdentical(actions []string, n int) (bool, string) {
	if len(actions) < n {
		return false, ""
	}
	tail := actions[len(actions)-n:]
	for _, a := range tail[1:] {
		if a != tail[0] {
			return false, ""
		}
	}
	return true, tail[0]
}
