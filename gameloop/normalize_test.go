package gameloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func acceptedOps() map[Op]bool {
	return map[Op]bool{
		OpPlayAction: true, OpMemory: true, OpMap: true,
		OpInventory: true, OpValidActions: true,
	}
}

func TestResolveOpAlwaysAccepted(t *testing.T) {
	names := []string{
		"play_action", "memory", "get_map", "inventory", "get_valid_actions",
		"action", "do", "command", "map", "location", "mem", "state", "status",
		"inv", "items",
		"frobnicate", "", "PLAY", "tool",
	}
	accepted := acceptedOps()
	for _, name := range names {
		assert.True(t, accepted[ResolveOp(name)], "ResolveOp(%q) = %q", name, ResolveOp(name))
	}
}

func TestResolveOpSynonyms(t *testing.T) {
	assert.Equal(t, OpMemory, ResolveOp("state"))
	assert.Equal(t, OpMemory, ResolveOp("status"))
	assert.Equal(t, OpMap, ResolveOp("map"))
	assert.Equal(t, OpMap, ResolveOp("location"))
	assert.Equal(t, OpInventory, ResolveOp("inv"))
	assert.Equal(t, OpInventory, ResolveOp("items"))
	assert.Equal(t, OpPlayAction, ResolveOp("do"))
	assert.Equal(t, OpPlayAction, ResolveOp("unknown_tool"))
}

func newTestNormalizer() *Normalizer {
	return &Normalizer{
		Failures:    NewFailureTable(),
		Exploration: NewExplorationTracker(),
	}
}

func TestNormalizeForbiddenVerbFirstWordOnly(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"check mailbox", "examine mailbox"},
		{"grab lamp", "take lamp"},
		{"pick up sword", "take up sword"},
		{"use key", "examine key"},
		{"inspect the rug", "examine the rug"},
		{"search room", "look room"},
		{"investigate noise", "examine noise"},
		// "check" appearing later must not change.
		{"examine check", "examine check"},
		{"open mailbox", "open mailbox"},
	}
	for _, tt := range tests {
		n := newTestNormalizer()
		op, args := n.Normalize("play_action", map[string]any{"action": tt.in}, nil)
		assert.Equal(t, OpPlayAction, op)
		assert.Equal(t, tt.want, args["action"], "action %q", tt.in)
	}
}

func TestNormalizeCanonicalizesFormatting(t *testing.T) {
	n := newTestNormalizer()
	_, args := n.Normalize("play_action", map[string]any{"action": "  **Take**  `Lamp`  "}, nil)
	assert.Equal(t, "take lamp", args["action"])
}

func TestNormalizeMissingActionDefaultsToLook(t *testing.T) {
	n := newTestNormalizer()
	_, args := n.Normalize("play_action", nil, nil)
	assert.Equal(t, "look", args["action"])
}

func TestNormalizeQueryOpsPassThrough(t *testing.T) {
	n := newTestNormalizer()
	op, args := n.Normalize("memory", map[string]any{}, nil)
	assert.Equal(t, OpMemory, op)
	assert.Empty(t, args)
}

func TestNormalizeSubstitutesRepeatedlyFailedAction(t *testing.T) {
	n := newTestNormalizer()
	for i := 0; i < 3; i++ {
		n.Failures.Record("up")
	}
	n.Failures.Record("open mailbox")

	_, args := n.Normalize("play_action", map[string]any{"action": "up"},
		[]string{"open mailbox", "take lamp"})
	// First valid action with no failures wins.
	assert.Equal(t, "take lamp", args["action"])
}

func TestNormalizeFailedActionFallsBackToUntriedDirection(t *testing.T) {
	n := newTestNormalizer()
	n.Exploration.SetCurrent("West of House")
	for i := 0; i < 3; i++ {
		n.Failures.Record("wait")
	}

	_, args := n.Normalize("play_action", map[string]any{"action": "wait"}, nil)
	assert.Equal(t, "north", args["action"])
}

func TestNormalizeBelowThresholdUnchanged(t *testing.T) {
	n := newTestNormalizer()
	n.Failures.Record("up")
	n.Failures.Record("up")

	_, args := n.Normalize("play_action", map[string]any{"action": "up"}, []string{"open mailbox"})
	assert.Equal(t, "up", args["action"])
}

func TestNormalizeMovementConsumesUntriedDirection(t *testing.T) {
	n := newTestNormalizer()
	n.Exploration.SetCurrent("West of House")

	_, _ = n.Normalize("play_action", map[string]any{"action": "n"}, nil)

	untried := n.Exploration.UntriedDirections("West of House")
	assert.NotContains(t, untried, "north")
	assert.Len(t, untried, 5)
}

func TestNormalizeNonMovementKeepsUntried(t *testing.T) {
	n := newTestNormalizer()
	n.Exploration.SetCurrent("West of House")

	_, _ = n.Normalize("play_action", map[string]any{"action": "open mailbox"}, nil)

	assert.Len(t, n.Exploration.UntriedDirections("West of House"), 6)
}
