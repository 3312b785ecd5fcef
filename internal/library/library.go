// Package library persists saved workouts and the workout currently being
// edited. Workouts are stored in their JSON form; names are unique ignoring case.
package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lowaak/smart-trainer/workout-builder/internal/events"
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

// ErrNotFound is returned when no saved workout has the requested id
var ErrNotFound = errors.New("workout not found")

// Driver names accepted by Open
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// UpdateKind says what happened to a library entry
type UpdateKind string

const (
	UpdateSaved   UpdateKind = "saved"
	UpdateDeleted UpdateKind = "deleted"
)

// Update is published after every successful save or delete
type Update struct {
	Kind      UpdateKind `json:"kind"`
	WorkoutID string     `json:"workoutId"`
	Name      string     `json:"name"`
}

// Store is a workout library plus a single "current workout" slot
type Store interface {
	// Save stores w. A workout whose name matches an existing entry, ignoring
	// case, replaces that entry and keeps its id; otherwise w is added under a
	// fresh id. The stored workout is returned.
	Save(ctx context.Context, w workout.Workout) (workout.Workout, error)
	List(ctx context.Context) ([]workout.Workout, error)
	Get(ctx context.Context, id string) (workout.Workout, error)
	Delete(ctx context.Context, id string) error

	SaveCurrent(ctx context.Context, w workout.Workout) error
	// LoadCurrent reports false when no current workout has been saved
	LoadCurrent(ctx context.Context) (workout.Workout, bool, error)

	// OnUpdated registers fn for library changes and returns a cancel function
	OnUpdated(fn func(Update)) func()
	Close() error
}

// Open creates the store selected by driver, keeping its data under dir
func Open(driver, dir string, logger *log.Logger) (Store, error) {
	switch strings.ToLower(driver) {
	case "", DriverFile:
		return NewFileStore(dir, logger)
	case DriverSQLite:
		return OpenSQLiteStore(dir, logger)
	}
	return nil, fmt.Errorf("unknown library driver %q", driver)
}

// validateForSave checks the workout can be stored
func validateForSave(w workout.Workout) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}
	return nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// updates is the listener list shared by the store implementations
type updates struct {
	feed *events.Feed[Update]
}

func newUpdates() updates {
	return updates{feed: events.NewFeed[Update](false)}
}

func (u updates) OnUpdated(fn func(Update)) func() {
	return u.feed.Subscribe(fn)
}

func (u updates) publish(kind UpdateKind, w workout.Workout) {
	u.feed.Publish(Update{Kind: kind, WorkoutID: w.ID, Name: w.Name})
}
