package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// session is one research conversation held by the backend.
type session struct {
	ID        string
	Questions []string
	CreatedAt time.Time
}

// registry tracks research sessions and the remaining answer quota.
type registry struct {
	mu        sync.Mutex
	sessions  map[string]*session
	remaining int
}

func newRegistry(initialQuota int) *registry {
	return &registry{
		sessions:  make(map[string]*session),
		remaining: initialQuota,
	}
}

// create mints a new session seeded with the opening question.
func (r *registry) create(question string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := &session{
		ID:        uuid.NewString(),
		Questions: []string{question},
		CreatedAt: time.Now(),
	}
	r.sessions[sess.ID] = sess
	return sess
}

// resume appends a follow-up question to an existing session.
func (r *registry) resume(id, question string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	sess.Questions = append(sess.Questions, question)
	return sess, true
}

// lookup returns a session without touching it.
func (r *registry) lookup(id string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	return sess, ok
}

// consume decrements the quota and reports what is left. It returns false
// once the quota is exhausted; remaining never goes below zero.
func (r *registry) consume() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.remaining <= 0 {
		return 0, false
	}
	r.remaining--
	return r.remaining, true
}
