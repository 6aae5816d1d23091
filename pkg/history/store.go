// Package history persists conversation snapshots between gloss runs. Each
// track saves independently under its own key, so clearing or rewriting one
// conversation never touches the other.
package history

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/dotdir"
	"github.com/glosshq/gloss/pkg/history/file"
	"github.com/glosshq/gloss/pkg/history/inmemory"
	"github.com/glosshq/gloss/pkg/history/postgres"
	"github.com/glosshq/gloss/pkg/history/sqlite"
)

// Store defines the interface for persisting and retrieving per-track
// conversation snapshots. SaveTrack and ClearTrack satisfy the conversation
// store's persister contract, so a Store can be wired directly into it.
type Store interface {
	// SaveTrack replaces the persisted snapshot for a track.
	SaveTrack(track chat.Track, msgs []chat.Message) error

	// LoadTrack returns the persisted snapshot for a track, or nil when no
	// snapshot exists.
	LoadTrack(track chat.Track) ([]chat.Message, error)

	// ClearTrack drops the persisted snapshot for a track.
	ClearTrack(track chat.Track) error

	// Close releases any resources held by the store.
	Close() error
}

// Supported history drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// defaultSQLiteFile is the database filename used when history.sqlite_path
// is not configured.
const defaultSQLiteFile = "history.sqlite"

// Open returns the Store selected by cfg, or nil when the driver is "none".
// overrideDir overrides the .gloss/ directory used by the file driver and
// the default SQLite path.
func Open(ctx context.Context, cfg config.HistoryConfig, overrideDir string) (Store, error) {
	switch cfg.Driver {
	case "", DriverFile:
		return file.New(overrideDir), nil

	case DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			target, err := dotdir.NewManager().Target(overrideDir)
			if err != nil {
				return nil, fmt.Errorf("resolving history path: %w", err)
			}
			path = filepath.Join(target, defaultSQLiteFile)
		}
		return sqlite.New(path)

	case DriverPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("history driver %q requires history.postgres_url", cfg.Driver)
		}
		return postgres.New(ctx, cfg.PostgresURL)

	case DriverNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown history driver: %q", cfg.Driver)
	}
}

// Interface checks for every driver.
var (
	_ Store = (*file.Store)(nil)
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
	_ Store = (*inmemory.Store)(nil)
)
