package testutils

import (
	"time"

	"github.com/glosshq/gloss/pkg/chat"
)

// NewTestMessage creates a simple conversation message for testing
func NewTestMessage(role, content string) chat.Message {
	return chat.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// NewTestAnswer creates a completed assistant message with backend metadata
// filled in the way a finished turn would leave it.
func NewTestAnswer(content string) chat.Message {
	confidence := 85.0

	return chat.Message{
		Role:       chat.RoleAssistant,
		Content:    content,
		Timestamp:  time.Date(2024, 6, 1, 12, 0, 1, 0, time.UTC),
		Model:      "test-model",
		Provider:   "test-provider",
		Confidence: &confidence,
		Route:      "research",
	}
}
