package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

const sqliteFileName = "library.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS workouts (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	name_key   TEXT NOT NULL UNIQUE,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS current_workout (
	slot       INTEGER PRIMARY KEY CHECK (slot = 1),
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteStore keeps the library in a SQLite database, one row per workout
// with the JSON form of the workout as payload
type SQLiteStore struct {
	updates
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLiteStore opens (or creates) the database at dir/library.db
func OpenSQLiteStore(dir string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		panic("SQLiteStore: logger cannot be nil")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating library dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, sqliteFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening library db: %w", err)
	}
	// one connection serializes writers and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating library tables: %w", err)
	}
	logger.Printf("SQLiteStore: using %s", dbPath)
	return &SQLiteStore{updates: newUpdates(), db: db, logger: logger}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, w workout.Workout) (workout.Workout, error) {
	if err := validateForSave(w); err != nil {
		return workout.Workout{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return workout.Workout{}, fmt.Errorf("saving workout: %w", err)
	}
	defer tx.Rollback()

	key := nameKey(w.Name)
	var existingID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM workouts WHERE name_key = ?`, key).Scan(&existingID)
	replaced := err == nil
	switch {
	case errors.Is(err, sql.ErrNoRows):
		w = w.WithID(workout.NewID())
	case err != nil:
		return workout.Workout{}, fmt.Errorf("looking up workout %q: %w", w.Name, err)
	default:
		w = w.WithID(existingID)
	}

	payload, err := json.Marshal(w)
	if err != nil {
		return workout.Workout{}, fmt.Errorf("encoding workout: %w", err)
	}
	if replaced {
		_, err = tx.ExecContext(ctx,
			`UPDATE workouts SET payload = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			string(payload), w.ID)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO workouts (id, name_key, payload) VALUES (?, ?, ?)`,
			w.ID, key, string(payload))
	}
	if err != nil {
		return workout.Workout{}, fmt.Errorf("saving workout %q: %w", w.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return workout.Workout{}, fmt.Errorf("saving workout %q: %w", w.Name, err)
	}

	s.logger.Printf("SQLiteStore: saved %q as %s (replaced=%t)", w.Name, w.ID, replaced)
	s.publish(UpdateSaved, w)
	return w, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]workout.Workout, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM workouts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	out := []workout.Workout{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("listing workouts: %w", err)
		}
		w, err := decodePayload(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (workout.Workout, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM workouts WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return workout.Workout{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return workout.Workout{}, fmt.Errorf("loading workout %s: %w", id, err)
	}
	return decodePayload(payload)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Printf("SQLiteStore: deleted %q (%s)", existing.Name, id)
	s.publish(UpdateDeleted, existing)
	return nil
}

func (s *SQLiteStore) SaveCurrent(ctx context.Context, w workout.Workout) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding current workout: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO current_workout (slot, payload) VALUES (1, ?)`, string(payload))
	if err != nil {
		return fmt.Errorf("saving current workout: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadCurrent(ctx context.Context) (workout.Workout, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM current_workout WHERE slot = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return workout.Workout{}, false, nil
	}
	if err != nil {
		return workout.Workout{}, false, fmt.Errorf("loading current workout: %w", err)
	}
	w, err := decodePayload(payload)
	if err != nil {
		s.logger.Printf("SQLiteStore: current workout failed to parse: %v", err)
		return workout.Workout{}, false, nil
	}
	return w, true, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodePayload(payload string) (workout.Workout, error) {
	var w workout.Workout
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return workout.Workout{}, fmt.Errorf("decoding stored workout: %w", err)
	}
	return w, nil
}
