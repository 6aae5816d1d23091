// Package inmemory keeps conversation snapshots in process memory. Used by
// the development backend and in tests; nothing survives a restart.
package inmemory

import (
	"sync"

	"github.com/glosshq/gloss/pkg/chat"
)

// Store implements snapshot persistence over an in-memory map.
type Store struct {
	// mu guards the snapshots map.
	mu sync.RWMutex

	// snapshots holds the latest saved messages per track.
	snapshots map[chat.Track][]chat.Message
}

// New creates a new in-memory history store.
func New() *Store {
	return &Store{
		snapshots: make(map[chat.Track][]chat.Message),
	}
}

// SaveTrack replaces the track's snapshot with a copy of msgs.
func (s *Store) SaveTrack(track chat.Track, msgs []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[track] = append([]chat.Message(nil), msgs...)
	return nil
}

// LoadTrack returns a copy of the track's snapshot, or nil when none exists.
func (s *Store) LoadTrack(track chat.Track) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, ok := s.snapshots[track]
	if !ok {
		return nil, nil
	}

	return append([]chat.Message(nil), msgs...), nil
}

// ClearTrack drops the track's snapshot.
func (s *Store) ClearTrack(track chat.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, track)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
