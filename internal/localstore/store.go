// Package localstore reads and writes training history in a local SQLite file.
// It mirrors the query surface of the PostgreSQL storage package so offline
// tools can feed the same recovery tracker.
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		login        TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		created_ms   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id        INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		body_weight_kg REAL,
		training_goal  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS workout_sessions (
		id      TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name    TEXT NOT NULL DEFAULT '',
		date_ms INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workout_sessions_user_date ON workout_sessions (user_id, date_ms)`,
	`CREATE TABLE IF NOT EXISTS session_exercises (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id        TEXT NOT NULL REFERENCES workout_sessions(id) ON DELETE CASCADE,
		position          INTEGER NOT NULL,
		name              TEXT NOT NULL DEFAULT '',
		primary_muscle    TEXT,
		secondary_muscles TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS exercise_sets (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		exercise_id INTEGER NOT NULL REFERENCES session_exercises(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		weight_kg   REAL,
		reps        INTEGER
	)`,
}

// Store is a SQLite-backed history store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
