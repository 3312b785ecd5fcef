package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

const (
	libraryFileName = "library.json"
	currentFileName = "current_workout.json"
)

// FileStore keeps the library as a JSON array in one file and the current
// workout in another
type FileStore struct {
	updates
	dir    string
	mu     sync.Mutex
	logger *log.Logger
}

// NewFileStore creates a store rooted at dir, creating the directory if needed
func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		panic("FileStore: logger cannot be nil")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating library dir %s: %w", dir, err)
	}
	logger.Printf("FileStore: using %s", dir)
	return &FileStore{updates: newUpdates(), dir: dir, logger: logger}, nil
}

func (s *FileStore) Save(ctx context.Context, w workout.Workout) (workout.Workout, error) {
	if err := validateForSave(w); err != nil {
		return workout.Workout{}, err
	}

	s.mu.Lock()
	entries, err := s.readLibrary()
	if err != nil {
		s.mu.Unlock()
		return workout.Workout{}, err
	}
	saved, replaced := upsertByName(entries, w)
	if !replaced {
		entries = append(entries, saved)
	}
	err = s.writeJSON(libraryFileName, entries)
	s.mu.Unlock()
	if err != nil {
		return workout.Workout{}, err
	}

	s.logger.Printf("FileStore: saved %q as %s (replaced=%t)", saved.Name, saved.ID, replaced)
	s.publish(UpdateSaved, saved)
	return saved, nil
}

func (s *FileStore) List(ctx context.Context) ([]workout.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLibrary()
}

func (s *FileStore) Get(ctx context.Context, id string) (workout.Workout, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return workout.Workout{}, err
	}
	for _, w := range entries {
		if w.ID == id {
			return w, nil
		}
	}
	return workout.Workout{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	entries, err := s.readLibrary()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	var deleted workout.Workout
	found := false
	kept := make([]workout.Workout, 0, len(entries))
	for _, w := range entries {
		if w.ID == id && !found {
			deleted, found = w, true
			continue
		}
		kept = append(kept, w)
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	err = s.writeJSON(libraryFileName, kept)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Printf("FileStore: deleted %q (%s)", deleted.Name, id)
	s.publish(UpdateDeleted, deleted)
	return nil
}

func (s *FileStore) SaveCurrent(ctx context.Context, w workout.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(currentFileName, w)
}

func (s *FileStore) LoadCurrent(ctx context.Context) (workout.Workout, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(s.dir, currentFileName))
	if errors.Is(err, os.ErrNotExist) {
		return workout.Workout{}, false, nil
	}
	if err != nil {
		return workout.Workout{}, false, fmt.Errorf("reading current workout: %w", err)
	}
	var w workout.Workout
	if err := json.Unmarshal(raw, &w); err != nil {
		// an unreadable slot is treated as empty so the editor can start fresh
		s.logger.Printf("FileStore: current workout failed to parse: %v", err)
		return workout.Workout{}, false, nil
	}
	return w, true, nil
}

// Close is a no-op; every operation writes through to disk
func (s *FileStore) Close() error {
	return nil
}

// readLibrary must be called with mu held
func (s *FileStore) readLibrary() ([]workout.Workout, error) {
	path := filepath.Join(s.dir, libraryFileName)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []workout.Workout{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading library: %w", err)
	}
	entries := []workout.Workout{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing library %s: %w", path, err)
	}
	return entries, nil
}

// writeJSON must be called with mu held. The file is replaced atomically.
func (s *FileStore) writeJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// upsertByName replaces the entry whose name matches w in place, keeping its
// id, or returns w with a fresh id when none matches
func upsertByName(entries []workout.Workout, w workout.Workout) (workout.Workout, bool) {
	key := nameKey(w.Name)
	for i, existing := range entries {
		if nameKey(existing.Name) == key {
			saved := w.WithID(existing.ID)
			entries[i] = saved
			return saved, true
		}
	}
	return w.WithID(workout.NewID()), false
}
