// Package sqlite persists conversation snapshots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/glosshq/gloss/pkg/chat"
)

// Store implements snapshot persistence over a single snapshots table,
// keyed by track.
type Store struct {
	db *sql.DB
}

// New creates a SQLite-backed history store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite serializes writers anyway; a single connection avoids
	// SQLITE_BUSY and keeps ":memory:" databases coherent across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		track TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveTrack upserts the track's snapshot.
func (s *Store) SaveTrack(track chat.Track, msgs []chat.Message) error {
	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	query := `
	INSERT INTO snapshots (track, payload, saved_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(track) DO UPDATE SET payload = excluded.payload, saved_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(context.Background(), query, string(track), string(payload)); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	return nil
}

// LoadTrack reads the track's snapshot. Returns nil when no snapshot has
// been saved.
func (s *Store) LoadTrack(track chat.Track) ([]chat.Message, error) {
	query := `SELECT payload FROM snapshots WHERE track = ?`

	var payload string
	err := s.db.QueryRowContext(context.Background(), query, string(track)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var msgs []chat.Message
	if err := json.Unmarshal([]byte(payload), &msgs); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	return msgs, nil
}

// ClearTrack drops the track's snapshot.
func (s *Store) ClearTrack(track chat.Track) error {
	query := `DELETE FROM snapshots WHERE track = ?`

	if _, err := s.db.ExecContext(context.Background(), query, string(track)); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
