package library

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/workout-builder/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

// DefaultAutoSaveDelay is how long edits must pause before a library save
const DefaultAutoSaveDelay = time.Second

// AutoSaver follows the workout being edited. Every change is written to the
// current workout slot straight away; workouts with a name and at least one
// segment are also saved to the library once edits pause for the delay.
type AutoSaver struct {
	store   Store
	delay   time.Duration
	logger  *log.Logger
	mu      sync.Mutex
	timer   *time.Timer
	pending *workout.Workout
	stopped bool
}

// NewAutoSaver creates an AutoSaver writing to store
func NewAutoSaver(store Store, delay time.Duration, logger *log.Logger) *AutoSaver {
	if store == nil {
		panic("AutoSaver: store cannot be nil")
	}
	if logger == nil {
		panic("AutoSaver: logger cannot be nil")
	}
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{store: store, delay: delay, logger: logger}
}

// Observe records a new version of the edited workout. Its signature matches
// history.History.OnChange.
func (a *AutoSaver) Observe(w workout.Workout) {
	if err := a.store.SaveCurrent(context.Background(), w); err != nil {
		a.logger.Printf("AutoSaver: saving current workout failed: %v", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if w.Name == "" || len(w.Segments) == 0 {
		a.pending = nil
		return
	}
	a.pending = &w
	a.timer = time.AfterFunc(a.delay, go_func_utils.SafeFunc(a.logger, func() {
		a.Flush(context.Background())
	}))
}

// Flush saves the pending workout to the library now, if there is one, and
// returns the saved value
func (a *AutoSaver) Flush(ctx context.Context) (workout.Workout, bool) {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	if pending == nil {
		return workout.Workout{}, false
	}
	saved, err := a.store.Save(ctx, *pending)
	if err != nil {
		a.logger.Printf("AutoSaver: saving %q failed: %v", pending.Name, err)
		return workout.Workout{}, false
	}
	a.logger.Printf("AutoSaver: saved %q", saved.Name)
	return saved, true
}

// Stop cancels any pending save; later changes still update the current slot
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
