package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/glosshq/gloss/pkg/chat"
)

var (
	historyToolName    = "conversation_history"
	historyDescription = "Read the persisted conversation history for a track. Tracks are \"standard\" (one-shot answers) and \"research\" (streamed answers with sessions). Returns messages oldest first."
)

// HistoryInput represents the input arguments for the conversation_history tool.
type HistoryInput struct {
	Track string `json:"track,omitempty" jsonschema:"the conversation track to read: standard or research (default: standard)"`
	Limit int    `json:"limit,omitempty" jsonschema:"return only the most recent N messages (default: all)"`
}

// HistoryMessage is one conversation entry in tool output.
type HistoryMessage struct {
	Role       string   `json:"role"`
	Content    string   `json:"content"`
	Timestamp  string   `json:"timestamp,omitempty"`
	Model      string   `json:"model,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	SessionID  string   `json:"sessionId,omitempty"`
}

// HistoryOutput represents the structured output of the conversation_history tool.
type HistoryOutput struct {
	Track    string           `json:"track"`
	Messages []HistoryMessage `json:"messages"`
	Count    int              `json:"count"`
}

// handleHistory reads a track's persisted snapshot.
func (s *Server) handleHistory(_ context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	track := chat.Track(input.Track)
	if input.Track == "" {
		track = chat.TrackStandard
	}

	if track != chat.TrackStandard && track != chat.TrackResearch {
		return toolError(fmt.Sprintf("unknown track %q: use standard or research", input.Track)), HistoryOutput{}, nil
	}

	msgs, err := s.config.History.LoadTrack(track)
	if err != nil {
		s.config.Logger.Warn("MCP history read failed", "track", track, "error", err)
		return toolError(fmt.Sprintf("History read failed: %v", err)), HistoryOutput{}, nil
	}

	if input.Limit > 0 && len(msgs) > input.Limit {
		msgs = msgs[len(msgs)-input.Limit:]
	}

	out := make([]HistoryMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = HistoryMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			Model:      msg.Model,
			Confidence: msg.Confidence,
			SessionID:  msg.SessionID,
		}
		if !msg.Timestamp.IsZero() {
			out[i].Timestamp = msg.Timestamp.Format(time.RFC3339)
		}
	}

	output := HistoryOutput{
		Track:    string(track),
		Messages: out,
		Count:    len(out),
	}

	return toolResult(output)
}
