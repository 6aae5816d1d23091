// Package chat holds the conversation model for the gloss client: ordered
// message sequences per track, in-place patching by stable index, and the
// persistence/observer side effects that keep snapshots and view models in
// sync with every mutation.
package chat

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Answer modes. Regular answers come back in one response; research answers
// stream incrementally over SSE.
const (
	ModeRegular  = "regular"
	ModeResearch = "research"
)

// Track names one of the two independent conversation sequences. Each track
// persists to its own snapshot.
type Track string

const (
	TrackStandard Track = "standard"
	TrackResearch Track = "research"
)

// Source is a read-only citation attached to an assistant message.
type Source struct {
	Title   string  `json:"title"`
	URL     string  `json:"url,omitempty"`
	Excerpt string  `json:"excerpt"`
	Score   float64 `json:"score"`
}

// Message represents a single entry in a conversation track.
//
// While IsStreaming is true the Content may be partial or empty and is not
// yet final. SessionID is set only on assistant messages and, once set, is
// immutable for that message.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"` // "regular" or "research"

	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	Sources    []Source `json:"sources,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Route      string   `json:"route,omitempty"`
	Outline    []string `json:"outline,omitempty"`

	IsStreaming     bool   `json:"isStreaming"`
	StreamingStatus string `json:"streamingStatus,omitempty"`

	SessionID        string `json:"sessionId,omitempty"`
	CanGoDeeper      bool   `json:"canGoDeeper"`
	DeeperSuggestion string `json:"deeperSuggestion,omitempty"`
	DeeperAnalysis   string `json:"deeperAnalysis,omitempty"`
	IsLoadingDeeper  bool   `json:"isLoadingDeeper"`
}

// NewUserMessage creates a user message stamped with the current time.
func NewUserMessage(content, mode string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
		Mode:      mode,
	}
}

// NewStreamingPlaceholder creates the assistant message appended at the start
// of a research turn, before any stream event has arrived.
func NewStreamingPlaceholder(status string) Message {
	return Message{
		Role:            RoleAssistant,
		Timestamp:       time.Now(),
		Mode:            ModeResearch,
		IsStreaming:     true,
		StreamingStatus: status,
	}
}
