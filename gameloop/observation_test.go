package gameloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"first line", "West of House\nYou are standing in an open field.", "West of House"},
		{"skips blank lines", "\n\nKitchen\nThere is a table here.", "Kitchen"},
		{"skips bracketed status", "[Score: 10 | Moves: 3]\nCellar", "Cellar"},
		{"empty", "", "Unknown"},
		{"only brackets", "[Score: 10]\n[Moves: 3]", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLocation(tt.text))
		})
	}
}

func TestExtractScorePatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"colon form", "Score: 25", 25},
		{"lowercase", "your score 15 so far", 15},
		{"bracketed", "Taken.\n\n[Score: 35 | Moves: 12]", 35},
		{"case insensitive", "SCORE: 40", 40},
		{"no score", "Nothing happens.", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractScore(tt.text, 7))
		})
	}
}

func TestExtractScoreIsMonotonicMax(t *testing.T) {
	// A stale lower score never lowers the running value.
	assert.Equal(t, 50, ExtractScore("Score: 10", 50))
	assert.Equal(t, 60, ExtractScore("Score: 60", 50))
	// Re-applying the same observation is idempotent.
	assert.Equal(t, 60, ExtractScore("Score: 60", 60))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal("    **** You have died ****"))
	assert.True(t, IsTerminal("*** You have died ***"))
	assert.True(t, IsTerminal("GAME OVER"))
	assert.True(t, IsTerminal("It is pitch black. You are dead."))
	assert.False(t, IsTerminal("You are standing in an open field."))
}

func TestMatchesFailure(t *testing.T) {
	assert.True(t, MatchesFailure("You can't go that way."))
	assert.True(t, MatchesFailure("That's impossible."))
	assert.True(t, MatchesFailure("I don't know the word \"frobnicate\"."))
	assert.False(t, MatchesFailure("Taken."))
}

func TestParseInventory(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty handed", "Inventory: You are empty-handed.", []string{}},
		{"nothing", "You are carrying nothing.", []string{}},
		{"items", "Inventory: a brass lantern, a sword, a leaflet",
			[]string{"a brass lantern", "a sword", "a leaflet"}},
		{"no marker", "some prose without a list", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInventory(tt.text))
		})
	}
}

func TestNewObservation(t *testing.T) {
	obs := NewObservation("You are in a dark forest.\nScore: 10", 3)
	assert.Equal(t, "You are in a dark forest.", obs.Location)
	assert.Equal(t, 10, obs.Score)
	assert.False(t, obs.Terminal)
}
