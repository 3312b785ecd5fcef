// Package history keeps the undo/redo trail of the workout being edited.
package history

import (
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/workout-builder/internal/events"
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

// Limit is the maximum number of undo steps remembered
const Limit = 20

// State is a serializable snapshot of the trail. Past is oldest first; Future
// is nearest first.
type State struct {
	Past    []workout.Workout `json:"past"`
	Present workout.Workout   `json:"present"`
	Future  []workout.Workout `json:"future"`
}

// History tracks past, present and future workouts. Safe for concurrent use.
type History struct {
	// publishMu is held across an edit and its notification so subscribers
	// see changes in the order they were made. Subscribers must not edit.
	publishMu sync.Mutex
	mu        sync.RWMutex
	state     State
	changed   *events.Feed[workout.Workout]
	logger    *log.Logger
}

// New starts a trail whose present is initial
func New(initial workout.Workout, logger *log.Logger) *History {
	return Restore(State{Present: initial}, logger)
}

// Restore resumes a trail from a snapshot, trimming it to Limit
func Restore(state State, logger *log.Logger) *History {
	if logger == nil {
		panic("History: logger cannot be nil")
	}
	state.Past = trimPast(append([]workout.Workout(nil), state.Past...))
	state.Future = append([]workout.Workout(nil), state.Future...)
	return &History{
		state:   state,
		changed: events.NewFeed[workout.Workout](true),
		logger:  logger,
	}
}

// OnChange registers fn to receive the present workout whenever it changes.
// fn is called immediately if the present has changed before.
func (h *History) OnChange(fn func(workout.Workout)) func() {
	return h.changed.Subscribe(fn)
}

// Present returns the workout being edited
func (h *History) Present() workout.Workout {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.Present
}

// Apply records w as the new present. The previous present moves to the past
// and any redo steps are discarded.
func (h *History) Apply(w workout.Workout) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	h.state.Past = trimPast(append(h.state.Past, h.state.Present))
	h.state.Present = w
	h.state.Future = nil
	h.mu.Unlock()

	h.changed.Publish(w)
}

// Undo steps back one edit. It reports false when there is nothing to undo.
func (h *History) Undo() (workout.Workout, bool) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	if len(h.state.Past) == 0 {
		h.mu.Unlock()
		return workout.Workout{}, false
	}
	last := len(h.state.Past) - 1
	previous := h.state.Past[last]
	h.state.Future = append([]workout.Workout{h.state.Present}, h.state.Future...)
	h.state.Past = h.state.Past[:last]
	h.state.Present = previous
	h.mu.Unlock()

	h.logger.Printf("History: undo to %q (%d segments)", previous.Name, len(previous.Segments))
	h.changed.Publish(previous)
	return previous, true
}

// Redo re-applies the most recently undone edit. It reports false when there
// is nothing to redo.
func (h *History) Redo() (workout.Workout, bool) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	if len(h.state.Future) == 0 {
		h.mu.Unlock()
		return workout.Workout{}, false
	}
	next := h.state.Future[0]
	h.state.Past = trimPast(append(h.state.Past, h.state.Present))
	h.state.Future = h.state.Future[1:]
	h.state.Present = next
	h.mu.Unlock()

	h.logger.Printf("History: redo to %q (%d segments)", next.Name, len(next.Segments))
	h.changed.Publish(next)
	return next, true
}

// CanUndo reports whether Undo would change the present
func (h *History) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.state.Past) > 0
}

// CanRedo reports whether Redo would change the present
func (h *History) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.state.Future) > 0
}

// Snapshot returns a copy of the whole trail
func (h *History) Snapshot() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return State{
		Past:    append([]workout.Workout(nil), h.state.Past...),
		Present: h.state.Present,
		Future:  append([]workout.Workout(nil), h.state.Future...),
	}
}

func trimPast(past []workout.Workout) []workout.Workout {
	if len(past) > Limit {
		return append([]workout.Workout(nil), past[len(past)-Limit:]...)
	}
	return past
}
