package gameloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitterDeliversBufferedEvents(t *testing.T) {
	e := NewEventEmitter("run-1", 4)
	e.Emit(EventRunStart, map[string]any{"game": "zork1"})
	e.Emit(EventDecision, nil)
	e.Close()

	var kinds []EventKind
	for ev := range e.Events() {
		assert.Equal(t, "run-1", ev.RunID)
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventRunStart, EventDecision}, kinds)
}

func TestEmitterDropsWhenFull(t *testing.T) {
	e := NewEventEmitter("run-1", 2)
	for i := 0; i < 5; i++ {
		e.Emit(EventWarning, nil)
	}
	e.Close()

	count := 0
	for range e.Events() {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestEmitterCloseIsIdempotent(t *testing.T) {
	e := NewEventEmitter("run-1", 1)
	assert.NotPanics(t, func() {
		e.Close()
		e.Close()
		e.Emit(EventRunEnd, nil)
	})
}
