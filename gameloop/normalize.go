package gameloop

import "strings"

// Op is the closed set of operations the session accepts. Loose tool names
// from the model are resolved onto this set exactly once, in the Normalizer.
type Op string

const (
	OpPlayAction   Op = "play_action"
	OpMemory       Op = "memory"
	OpMap          Op = "get_map"
	OpInventory    Op = "inventory"
	OpValidActions Op = "get_valid_actions"
)

// opSynonyms maps loose tool names onto accepted operations.
var opSynonyms = map[string]Op{
	"action":   OpPlayAction,
	"do":       OpPlayAction,
	"command":  OpPlayAction,
	"map":      OpMap,
	"location": OpMap,
	"mem":      OpMemory,
	"state":    OpMemory,
	"status":   OpMemory,
	"inv":      OpInventory,
	"items":    OpInventory,
}

// forbiddenVerbs maps verbs the game rejects to their nearest accepted
// synonym. Only the first word of an action is rewritten.
var forbiddenVerbs = map[string]string{
	"check":       "examine",
	"inspect":     "examine",
	"search":      "look",
	"grab":        "take",
	"pick":        "take",
	"use":         "examine",
	"investigate": "examine",
}

// failureSubstituteThreshold is how many recorded failures exclude an action
// from being dispatched again.
const failureSubstituteThreshold = 3

// ResolveOp maps a raw tool name onto the accepted operation set. Exact
// matches pass through, known synonyms map to their operation, and anything
// else defaults to the play-action operation.
func ResolveOp(name string) Op {
	switch Op(name) {
	case OpPlayAction, OpMemory, OpMap, OpInventory, OpValidActions:
		return Op(name)
	}
	if op, ok := opSynonyms[name]; ok {
		return op
	}
	return OpPlayAction
}

// Normalizer corrects decisions into dispatchable (operation, arguments)
// pairs. It consults the failure table and the exploration tracker, and its
// single side effect is marking movement directions as tried.
type Normalizer struct {
	Failures    *FailureTable
	Exploration *ExplorationTracker
}

// Normalize resolves the operation name and, for play-action, repairs the
// action text: forbidden verbs are substituted, formatting is stripped,
// repeatedly failed actions are swapped for an untried alternative, and
// movement consumes the direction's untried slot at the current location.
// Deterministic for fixed tracker state.
func (n *Normalizer) Normalize(tool string, args map[string]any, validActions []string) (Op, map[string]any) {
	op := ResolveOp(tool)
	if op != OpPlayAction {
		return op, args
	}

	if args == nil {
		args = map[string]any{}
	}
	action, _ := args["action"].(string)
	if action == "" {
		action = defaultAction
	}

	action = replaceForbiddenVerb(action)
	action = canonicalizeAction(action)

	if n.Failures != nil && n.Failures.Count(action) >= failureSubstituteThreshold {
		action = n.substituteFailed(action, validActions)
	}

	if n.Exploration != nil {
		if dir, ok := CanonicalDirection(action); ok {
			n.Exploration.MarkDirectionTried(n.Exploration.Current(), dir)
		}
	}

	args["action"] = action
	return op, args
}

// substituteFailed picks a replacement for an action that has failed too
// often: the first valid action with no recorded failures, else the next
// untried direction, else the action unchanged.
func (n *Normalizer) substituteFailed(action string, validActions []string) string {
	for _, candidate := range validActions {
		if n.Failures.Count(candidate) == 0 {
			return candidate
		}
	}
	if n.Exploration != nil {
		if dir, ok := n.Exploration.PopUntried(n.Exploration.Current()); ok {
			return dir
		}
	}
	return action
}

// replaceForbiddenVerb rewrites only the leading verb; the rest of the
// action is untouched.
func replaceForbiddenVerb(action string) string {
	words := strings.Fields(strings.ToLower(action))
	if len(words) == 0 {
		return action
	}
	if synonym, ok := forbiddenVerbs[words[0]]; ok {
		words[0] = synonym
	}
	return strings.Join(words, " ")
}

// canonicalizeAction lower-cases, strips decorative markup, and collapses
// internal whitespace.
func canonicalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	action = stripMarkup(action)
	return strings.Join(strings.Fields(action), " ")
}
