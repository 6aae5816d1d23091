// Package file persists conversation snapshots as JSON files in the .gloss/
// directory, one file per track.
package file

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/dotdir"
)

// snapshot is the on-disk shape of one track's history.
type snapshot struct {
	SavedAt  time.Time      `json:"saved_at"`
	Messages []chat.Message `json:"messages"`
}

// Store persists snapshots through the dotdir state-file helpers.
type Store struct {
	ddm         *dotdir.Manager
	overrideDir string
}

// New creates a file-backed history store. If overrideDir is non-empty, it
// is used instead of the default .gloss/ resolution.
func New(overrideDir string) *Store {
	return &Store{
		ddm:         dotdir.NewManager(),
		overrideDir: overrideDir,
	}
}

func fileName(track chat.Track) string {
	return fmt.Sprintf("history_%s.json", track)
}

// TrackPath returns the absolute path of the track's snapshot file, creating
// the .gloss/ directory when missing. The file itself may not exist yet.
func (s *Store) TrackPath(track chat.Track) (string, error) {
	target, err := s.ddm.Target(s.overrideDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(target, fileName(track)), nil
}

// SaveTrack replaces the track's snapshot file.
func (s *Store) SaveTrack(track chat.Track, msgs []chat.Message) error {
	return s.ddm.SaveState(s.overrideDir, fileName(track), snapshot{
		SavedAt:  time.Now().UTC(),
		Messages: msgs,
	})
}

// LoadTrack reads the track's snapshot file. Returns nil when no snapshot
// has been saved.
func (s *Store) LoadTrack(track chat.Track) ([]chat.Message, error) {
	var snap snapshot
	found, err := s.ddm.LoadState(s.overrideDir, fileName(track), &snap)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return snap.Messages, nil
}

// ClearTrack removes the track's snapshot file.
func (s *Store) ClearTrack(track chat.Track) error {
	return s.ddm.ClearState(s.overrideDir, fileName(track))
}

// Close is a no-op; the store holds no resources between calls.
func (s *Store) Close() error {
	return nil
}
