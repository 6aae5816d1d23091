package eventstream

import "context"

// Publisher publishes turn events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *TurnCompletedEvent) error
	Close() error
}
