package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/glosshq/gloss/pkg/chat"
)

// TurnState identifies where a streaming turn is in its lifecycle.
type TurnState int32

const (
	TurnIdle TurnState = iota
	TurnStreaming
	TurnCompleted
	TurnFailed
)

// String returns the lowercase state name.
func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnStreaming:
		return "streaming"
	case TurnCompleted:
		return "completed"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Turn is the handle for one in-flight streaming exchange, bound to a single
// assistant message in the conversation store. All patches for the exchange
// go through the turn's captured (track, index) — never through an index
// recomputed at call time, so overlapping sends cannot cross-patch.
//
// A Turn resolves at most once: the first terminal transition wins and later
// ones are ignored.
type Turn struct {
	track    chat.Track
	index    int
	question string
	started  time.Time

	state atomic.Int32
	done  chan struct{}
	err   error
}

func newTurn(track chat.Track, index int, question string) *Turn {
	t := &Turn{
		track:    track,
		index:    index,
		question: question,
		started:  time.Now(),
		done:     make(chan struct{}),
	}
	t.state.Store(int32(TurnStreaming))

	return t
}

// Track returns the conversation track the turn is bound to.
func (t *Turn) Track() chat.Track {
	return t.track
}

// Index returns the bound assistant message's index within its track.
func (t *Turn) Index() int {
	return t.index
}

// State reports the turn's current lifecycle state.
func (t *Turn) State() TurnState {
	return TurnState(t.state.Load())
}

// Wait blocks until the turn reaches a terminal state or ctx is done. It
// returns the turn's failure, the context's error, or nil on success.
func (t *Turn) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolve marks the turn completed. The err write in reject happens before
// done closes, so Wait never observes a torn state.
func (t *Turn) resolve() {
	if t.state.CompareAndSwap(int32(TurnStreaming), int32(TurnCompleted)) {
		close(t.done)
	}
}

// reject marks the turn failed with err.
func (t *Turn) reject(err error) {
	if t.state.CompareAndSwap(int32(TurnStreaming), int32(TurnFailed)) {
		t.err = err
		close(t.done)
	}
}
