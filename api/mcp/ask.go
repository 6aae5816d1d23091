package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/glosshq/gloss/pkg/chat"
)

var (
	askToolName    = "ask"
	askDescription = "Ask the configured gloss backend a question about the article. Returns the answer with its supporting sources and the backend's confidence score."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to ask about the article"`
}

// AskSource is one citation supporting an answer.
type AskSource struct {
	Title   string  `json:"title"`
	URL     string  `json:"url,omitempty"`
	Excerpt string  `json:"excerpt"`
	Score   float64 `json:"score"`
}

// AskOutput represents the structured output of the ask tool.
type AskOutput struct {
	Answer     string      `json:"answer"`
	Sources    []AskSource `json:"sources"`
	Confidence *float64    `json:"confidence,omitempty"`
	Model      string      `json:"model,omitempty"`
	Route      string      `json:"route,omitempty"`
}

// handleAsk runs a standard question through the backend.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return toolError("question is required"), AskOutput{}, nil
	}

	s.config.Logger.Debug("MCP ask request", "question", input.Question)

	msg, err := s.config.Asker.Ask(ctx, input.Question)
	if err != nil {
		s.config.Logger.Warn("MCP ask failed", "error", err)
		return toolError(fmt.Sprintf("Ask failed: %v", err)), AskOutput{}, nil
	}

	output := AskOutput{
		Answer:     msg.Content,
		Sources:    askSources(msg.Sources),
		Confidence: msg.Confidence,
		Model:      msg.Model,
		Route:      msg.Route,
	}

	return toolResult(output)
}

func askSources(sources []chat.Source) []AskSource {
	out := make([]AskSource, len(sources))
	for i, src := range sources {
		out[i] = AskSource{
			Title:   src.Title,
			URL:     src.URL,
			Excerpt: src.Excerpt,
			Score:   src.Score,
		}
	}

	return out
}

// toolError builds the error-shaped tool result the MCP spec expects for
// tool-level failures (as opposed to protocol errors).
func toolError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// toolResult serializes the structured output into a TextContent block as
// well, per the MCP spec's backwards-compatibility guidance.
func toolResult[T any](output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		var zero T
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
