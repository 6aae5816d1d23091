package chat

import (
	"log/slog"
	"sync"

	"github.com/glosshq/gloss/pkg/logger"
)

// Persister stores per-track conversation snapshots as a side effect of
// every successful mutation. Persistence failures never fail the mutation
// itself; the store logs them and moves on.
type Persister interface {
	SaveTrack(track Track, msgs []Message) error
	ClearTrack(track Track) error
}

// Observer receives the full updated track contents after every mutation.
// Observers run synchronously on the mutating call, outside the store lock.
type Observer func(track Track, msgs []Message)

// Store owns the message sequences for both conversation tracks. Indices
// returned from Append are stable addresses for in-place patching; clearing
// resets a whole track, never individual slots.
type Store struct {
	mu     sync.Mutex
	tracks map[Track][]Message

	persister  Persister
	observers  []observerEntry
	observerID int
	log        *slog.Logger
}

type observerEntry struct {
	id int
	fn Observer
}

// StoreOption configures a Store created with NewStore.
type StoreOption func(*Store)

// WithPersister sets the snapshot persister. Without one, mutations skip the
// persistence side effect.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) {
		s.persister = p
	}
}

// WithLogger sets the store's logger. Defaults to a nop logger.
func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore returns an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		tracks: make(map[Track][]Message),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Subscribe registers an observer for mutations on any track and returns a
// func that removes it again. The presentation layer hangs off this; the
// store itself carries no view state.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.observerID
	s.observerID++
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for i, entry := range s.observers {
			if entry.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Append adds msg to the end of the given track and returns its index.
func (s *Store) Append(track Track, msg Message) int {
	s.mu.Lock()
	s.tracks[track] = append(s.tracks[track], msg)
	index := len(s.tracks[track]) - 1
	snapshot := s.snapshotLocked(track)
	s.mu.Unlock()

	s.persist(track, snapshot)
	s.notify(track, snapshot)

	return index
}

// Patch merges the given fields into the message at index. A stale index
// (out of range for the current sequence) is a no-op, never an error: the
// turn that captured it may have outlived a Clear. Returns whether a message
// was patched.
func (s *Store) Patch(track Track, index int, patch MessagePatch) bool {
	s.mu.Lock()
	msgs := s.tracks[track]
	if index < 0 || index >= len(msgs) {
		s.mu.Unlock()
		return false
	}

	msgs[index].apply(patch)
	snapshot := s.snapshotLocked(track)
	s.mu.Unlock()

	s.persist(track, snapshot)
	s.notify(track, snapshot)

	return true
}

// Clear empties the given track and drops its persisted snapshot.
func (s *Store) Clear(track Track) {
	s.mu.Lock()
	s.tracks[track] = nil
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.ClearTrack(track); err != nil {
			s.log.Warn("clearing conversation snapshot", "track", track, "error", err)
		}
	}
	s.notify(track, nil)
}

// Restore replaces the track contents with previously persisted messages.
// It does not re-persist; it exists for rehydration at startup.
func (s *Store) Restore(track Track, msgs []Message) {
	s.mu.Lock()
	s.tracks[track] = append([]Message(nil), msgs...)
	snapshot := s.snapshotLocked(track)
	s.mu.Unlock()

	s.notify(track, snapshot)
}

// Messages returns a copy of the track's message sequence.
func (s *Store) Messages(track Track) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(track)
}

// Message returns the message at index and whether it exists.
func (s *Store) Message(track Track, index int) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.tracks[track]
	if index < 0 || index >= len(msgs) {
		return Message{}, false
	}

	return msgs[index], true
}

// Len returns the number of messages in the track.
func (s *Store) Len(track Track) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracks[track])
}

// LastSessionID returns the session identifier of the most recent assistant
// message that carries one, or "" if the track has no open session. A
// non-empty result means the next question is a follow-up.
func (s *Store) LastSessionID(track Track) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.tracks[track]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleAssistant && msgs[i].SessionID != "" {
			return msgs[i].SessionID
		}
	}

	return ""
}

func (s *Store) snapshotLocked(track Track) []Message {
	msgs := s.tracks[track]
	if len(msgs) == 0 {
		return nil
	}

	return append([]Message(nil), msgs...)
}

func (s *Store) persist(track Track, msgs []Message) {
	if s.persister == nil {
		return
	}

	if err := s.persister.SaveTrack(track, msgs); err != nil {
		s.log.Warn("persisting conversation snapshot", "track", track, "error", err)
	}
}

func (s *Store) notify(track Track, msgs []Message) {
	s.mu.Lock()
	observers := append([]observerEntry(nil), s.observers...)
	s.mu.Unlock()

	for _, entry := range observers {
		entry.fn(track, msgs)
	}
}
