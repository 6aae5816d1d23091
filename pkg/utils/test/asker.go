package testutils

import (
	"context"
	"fmt"

	"github.com/glosshq/gloss/pkg/chat"
)

// MockAsker is a test asker that returns a configurable answer and records
// the questions it was asked.
type MockAsker struct {
	// Answer is returned for every question.
	Answer chat.Message

	// FailOn causes Ask to return an error when the question matches
	FailOn string

	// Questions accumulates every question passed to Ask.
	Questions []string
}

func NewMockAsker(answer string) *MockAsker {
	return &MockAsker{
		Answer: NewTestAnswer(answer),
	}
}

func (m *MockAsker) Ask(_ context.Context, question string) (chat.Message, error) {
	m.Questions = append(m.Questions, question)

	if m.FailOn != "" && question == m.FailOn {
		return chat.Message{}, fmt.Errorf("mock ask failure for: %s", question)
	}

	return m.Answer, nil
}
