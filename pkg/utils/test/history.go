package testutils

import (
	"errors"

	"github.com/glosshq/gloss/pkg/chat"
)

// MockTrackLoader is a test history reader that returns configurable
// snapshots per track.
type MockTrackLoader struct {
	// Snapshots holds the messages returned per track.
	Snapshots map[chat.Track][]chat.Message

	// FailLoad causes LoadTrack to return an error.
	FailLoad bool
}

// NewMockTrackLoader creates a new mock track loader.
func NewMockTrackLoader() *MockTrackLoader {
	return &MockTrackLoader{
		Snapshots: make(map[chat.Track][]chat.Message),
	}
}

func (m *MockTrackLoader) LoadTrack(track chat.Track) ([]chat.Message, error) {
	if m.FailLoad {
		return nil, errors.New("mock history load failure")
	}

	return m.Snapshots[track], nil
}
