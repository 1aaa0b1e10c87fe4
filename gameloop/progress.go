package gameloop

import "fmt"

// Refresh cadence. Map and valid-action views are refreshed periodically and
// whenever the agent has gone too long without progress.
const (
	mapRefreshInterval     = 5
	validRefreshInterval   = 4
	mapRefreshStuckAfter   = 3
	validRefreshStuckAfter = 2
	recentActionWindow     = 5
	loopWindow             = 3
)

// FailureTable counts how often each normalized action has failed. Counts
// are monotonic within a run; nothing ever resets them.
type FailureTable struct {
	counts map[string]int
}

// NewFailureTable returns an empty table.
func NewFailureTable() *FailureTable {
	return &FailureTable{counts: make(map[string]int)}
}

// Record increments the failure count for action and returns the new count.
func (f *FailureTable) Record(action string) int {
	f.counts[action]++
	return f.counts[action]
}

// Count returns the recorded failures for action.
func (f *FailureTable) Count(action string) int {
	return f.counts[action]
}

// Failed returns "'action' (Nx)" descriptions for every action with at least
// min failures, for inclusion in the prompt.
func (f *FailureTable) Failed(min int) []string {
	var out []string
	for action, n := range f.counts {
		if n >= min {
			out = append(out, fmt.Sprintf("'%s' (%dx)", action, n))
		}
	}
	return out
}

// Len returns the number of distinct failed actions.
func (f *FailureTable) Len() int { return len(f.counts) }

// ProgressTracker classifies the agent as making progress or stalled, keeps
// the rolling window of recent actions for loop detection, and drives the
// map/valid-actions refresh cadence.
type ProgressTracker struct {
	stepsSinceProgress     int
	stepsSinceMapRefresh   int
	stepsSinceValidRefresh int
	recentActions          []string
	validRefreshDue        bool
}

// NewProgressTracker returns a tracker with all counters at zero.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

// Update records the outcome of one turn. Progress is a location change or a
// score increase: it resets the steps-since-progress counter, which otherwise
// increments. Returns whether the turn made progress.
func (p *ProgressTracker) Update(oldLoc, newLoc string, oldScore, newScore int) bool {
	if newLoc != oldLoc || newScore > oldScore {
		p.stepsSinceProgress = 0
		return true
	}
	p.stepsSinceProgress++
	return false
}

// StepsSinceProgress returns how many turns have passed without progress.
func (p *ProgressTracker) StepsSinceProgress() int { return p.stepsSinceProgress }

// RecordAction appends a dispatched action to the rolling window.
func (p *ProgressTracker) RecordAction(action string) {
	p.recentActions = append(p.recentActions, action)
	if len(p.recentActions) > recentActionWindow {
		p.recentActions = p.recentActions[len(p.recentActions)-recentActionWindow:]
	}
}

// RecentActions returns a copy of the rolling action window.
func (p *ProgressTracker) RecentActions() []string {
	return append([]string(nil), p.recentActions...)
}

// LastAction returns the most recently recorded action.
func (p *ProgressTracker) LastAction() string {
	if len(p.recentActions) == 0 {
		return ""
	}
	return p.recentActions[len(p.recentActions)-1]
}

// LoopDetected reports whether the last three recorded actions are identical.
func (p *ProgressTracker) LoopDetected() bool {
	if len(p.recentActions) < loopWindow {
		return false
	}
	tail := p.recentActions[len(p.recentActions)-loopWindow:]
	return tail[0] == tail[1] && tail[1] == tail[2]
}

// EscapeAction picks the override used to break a loop: the first valid
// action that is neither in the recent window nor the failure table, else the
// next untried direction at the current location, else "look".
func (p *ProgressTracker) EscapeAction(validActions []string, failures *FailureTable, exploration *ExplorationTracker) string {
	recent := make(map[string]bool, len(p.recentActions))
	for _, a := range p.recentActions {
		recent[a] = true
	}
	for _, candidate := range validActions {
		if !recent[candidate] && failures.Count(candidate) == 0 {
			return candidate
		}
	}
	if dir, ok := exploration.PopUntried(exploration.Current()); ok {
		return dir
	}
	return defaultAction
}

// TickMapRefresh advances the map cadence and reports whether a refresh is
// due this turn. The counter resets when the refresh fires.
func (p *ProgressTracker) TickMapRefresh() bool {
	p.stepsSinceMapRefresh++
	if p.stepsSinceMapRefresh >= mapRefreshInterval || p.stepsSinceProgress > mapRefreshStuckAfter {
		p.stepsSinceMapRefresh = 0
		return true
	}
	return false
}

// TickValidRefresh advances the valid-actions cadence and reports whether a
// refresh is due, either by interval, by stall, or because a new location
// forced one.
func (p *ProgressTracker) TickValidRefresh() bool {
	p.stepsSinceValidRefresh++
	if p.validRefreshDue || p.stepsSinceValidRefresh >= validRefreshInterval || p.stepsSinceProgress > validRefreshStuckAfter {
		p.stepsSinceValidRefresh = 0
		p.validRefreshDue = false
		return true
	}
	return false
}

// ForceValidRefresh schedules an immediate valid-actions refresh, used when
// the agent enters a location it has never seen.
func (p *ProgressTracker) ForceValidRefresh() {
	p.validRefreshDue = true
}
