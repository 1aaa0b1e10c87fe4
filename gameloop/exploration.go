package gameloop

import (
	"fmt"
	"sort"
	"strings"
)

// seedDirections is the untried-direction list every newly discovered
// location starts with.
var seedDirections = []string{"north", "south", "east", "west", "up", "down"}

// directionVariants maps each canonical direction to the action spellings
// that count as trying it.
var directionVariants = map[string][]string{
	"north": {"north", "n"},
	"south": {"south", "s"},
	"east":  {"east", "e"},
	"west":  {"west", "w"},
	"up":    {"up", "u"},
	"down":  {"down", "d"},
}

// movementActions is the fixed movement class: cardinal and vertical
// directions, enter/exit, and their abbreviations.
var movementActions = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"up": true, "down": true, "enter": true, "exit": true,
	"n": true, "s": true, "e": true, "w": true, "u": true, "d": true,
}

// IsMovement reports whether the action belongs to the movement class.
func IsMovement(action string) bool {
	return movementActions[action]
}

// CanonicalDirection resolves an action to its canonical direction name,
// if it is one of the tracked direction spellings.
func CanonicalDirection(action string) (string, bool) {
	for dir, variants := range directionVariants {
		for _, v := range variants {
			if action == v {
				return dir, true
			}
		}
	}
	return "", false
}

// ExplorationTracker maintains the map the agent builds as it plays: the
// set of discovered locations, the movement edges between them, and the
// directions not yet tried from each location. The graph only grows; a
// location enters it exactly once, on first observation.
type ExplorationTracker struct {
	edges   map[string]map[string]bool // location -> set of "action -> destination"
	untried map[string][]string
	visited map[string]bool
	current string
}

// NewExplorationTracker returns an empty tracker.
func NewExplorationTracker() *ExplorationTracker {
	return &ExplorationTracker{
		edges:   make(map[string]map[string]bool),
		untried: make(map[string][]string),
		visited: make(map[string]bool),
	}
}

// Observe processes one observation following an action from prev. Movement
// that changed the location records the edge under prev; a first visit seeds
// the new location's untried directions. Returns the current location.
func (t *ExplorationTracker) Observe(prev, action string, obs Observation) string {
	loc := obs.Location

	if IsMovement(action) && loc != prev && prev != "" {
		if t.edges[prev] == nil {
			t.edges[prev] = make(map[string]bool)
		}
		t.edges[prev][fmt.Sprintf("%s -> %s", action, loc)] = true
	}

	t.Visit(loc)
	t.current = loc
	return loc
}

// Visit marks a location as discovered, seeding its untried directions on
// first sight.
func (t *ExplorationTracker) Visit(loc string) {
	if loc == "" || t.visited[loc] {
		return
	}
	t.visited[loc] = true
	t.untried[loc] = append([]string(nil), seedDirections...)
}

// Current returns the most recently observed location.
func (t *ExplorationTracker) Current() string { return t.current }

// SetCurrent records the starting location before any action is taken.
func (t *ExplorationTracker) SetCurrent(loc string) {
	t.Visit(loc)
	t.current = loc
}

// Visited reports whether loc has been observed this run.
func (t *ExplorationTracker) Visited(loc string) bool { return t.visited[loc] }

// LocationCount returns how many distinct locations have been observed.
func (t *ExplorationTracker) LocationCount() int { return len(t.visited) }

// Locations returns the visited locations in lexical order.
func (t *ExplorationTracker) Locations() []string {
	locs := make([]string, 0, len(t.visited))
	for loc := range t.visited {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	return locs
}

// UntriedDirections returns the directions not yet tried from loc, in seed
// order.
func (t *ExplorationTracker) UntriedDirections(loc string) []string {
	return append([]string(nil), t.untried[loc]...)
}

// PopUntried removes and returns the next untried direction at loc.
func (t *ExplorationTracker) PopUntried(loc string) (string, bool) {
	dirs := t.untried[loc]
	if len(dirs) == 0 {
		return "", false
	}
	next := dirs[0]
	t.untried[loc] = dirs[1:]
	return next, true
}

// MarkDirectionTried removes dir from loc's untried list.
func (t *ExplorationTracker) MarkDirectionTried(loc, dir string) {
	dirs := t.untried[loc]
	for i, d := range dirs {
		if d == dir {
			t.untried[loc] = append(dirs[:i:i], dirs[i+1:]...)
			return
		}
	}
}

// ResetUntried restores loc's untried list to the full seed set.
func (t *ExplorationTracker) ResetUntried(loc string) {
	t.untried[loc] = append([]string(nil), seedDirections...)
}

// EdgeCount returns the number of recorded edges out of loc.
func (t *ExplorationTracker) EdgeCount(loc string) int {
	return len(t.edges[loc])
}

// MapState returns the graph as location -> sorted edge descriptors, the
// shape the run recorder persists.
func (t *ExplorationTracker) MapState() map[string][]string {
	state := make(map[string][]string, len(t.edges))
	for loc, exits := range t.edges {
		list := make([]string, 0, len(exits))
		for e := range exits {
			list = append(list, e)
		}
		sort.Strings(list)
		state[loc] = list
	}
	return state
}

// RenderMap renders the accumulated graph as the flat textual listing shown
// to both the LLM and the end user.
func (t *ExplorationTracker) RenderMap() string {
	if len(t.edges) == 0 {
		return "Map: No locations explored yet. Try moving around!"
	}

	lines := []string{"Explored Locations and Exits:"}
	locs := make([]string, 0, len(t.edges))
	for loc := range t.edges {
		locs = append(locs, loc)
	}
	sort.Strings(locs)

	for _, loc := range locs {
		lines = append(lines, "", "* "+loc)
		exits := make([]string, 0, len(t.edges[loc]))
		for e := range t.edges[loc] {
			exits = append(exits, e)
		}
		sort.Strings(exits)
		for _, e := range exits {
			lines = append(lines, "    -> "+e)
		}
	}

	lines = append(lines, "", "[Current] "+t.current)
	return strings.Join(lines, "\n")
}
