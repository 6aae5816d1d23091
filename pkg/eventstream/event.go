// Package eventstream defines transport-neutral events emitted when a
// conversation turn completes, plus the Publisher interface its backends
// implement. Publishing is always best-effort: callers log failures and
// never surface them to the conversation flow.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/glosshq/gloss/pkg/utils"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a question/answer turn finishes.
	EventTypeTurnCompleted = "gloss.turn.completed.v1"

	// previewMaxLen caps the question/answer previews carried in events so
	// full article answers never land on the stream.
	previewMaxLen = 160
)

// TurnCompletedEvent is a transport-neutral event payload for a completed turn.
type TurnCompletedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Turn          TurnMeta    `json:"turn"`
}

// EventSource identifies the installation and backend the turn ran against.
type EventSource struct {
	ClientID string `json:"client_id,omitempty"`
	Backend  string `json:"backend,omitempty"`
	Version  string `json:"version,omitempty"`
}

// TurnMeta captures per-turn metadata for the event.
type TurnMeta struct {
	Track           string   `json:"track"`
	SessionID       string   `json:"session_id,omitempty"`
	Model           string   `json:"model,omitempty"`
	Provider        string   `json:"provider,omitempty"`
	Route           string   `json:"route,omitempty"`
	Confidence      *float64 `json:"confidence,omitempty"`
	QuestionPreview string   `json:"question_preview,omitempty"`
	AnswerPreview   string   `json:"answer_preview,omitempty"`
	DurationMs      int64    `json:"duration_ms"`
	Streaming       bool     `json:"streaming"`
	RemainingQuota  *int     `json:"remaining_quota,omitempty"`
}

// NewTurnCompletedEvent stamps the event envelope around turn metadata.
func NewTurnCompletedEvent(source EventSource, turn TurnMeta) *TurnCompletedEvent {
	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Turn:          turn,
	}
}

// Preview shortens message content to the length carried in events.
func Preview(s string) string {
	return utils.Truncate(s, previewMaxLen)
}
