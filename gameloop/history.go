package gameloop

// turnHistoryCap bounds the in-memory turn window used for prompt context.
// The run recorder keeps the full record; this ring exists only so prompt
// building stays O(1) in run length.
const turnHistoryCap = 10

// TurnEntry is one completed turn as seen by the prompt builder.
type TurnEntry struct {
	Step     int
	Thought  string
	Tool     string
	Action   string
	Result   string
	Location string
	Score    int
}

// turnRing is a fixed-capacity window over the most recent turns.
type turnRing struct {
	entries []TurnEntry
}

func (r *turnRing) append(e TurnEntry) {
	r.entries = append(r.entries, e)
	if len(r.entries) > turnHistoryCap {
		r.entries = r.entries[len(r.entries)-turnHistoryCap:]
	}
}

// last returns up to n most recent entries, oldest first.
func (r *turnRing) last(n int) []TurnEntry {
	if len(r.entries) <= n {
		return r.entries
	}
	return r.entries[len(r.entries)-n:]
}

func (r *turnRing) len() int { return len(r.entries) }
