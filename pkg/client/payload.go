package client

import "github.com/glosshq/gloss/pkg/chat"

// Request bodies. Field names follow the backend's camelCase wire contract.

type askPayload struct {
	Question    string  `json:"question"`
	TopK        uint    `json:"topK"`
	Threshold   float64 `json:"threshold"`
	Temperature float64 `json:"temperature"`
	MaxTokens   uint    `json:"maxTokens"`
}

type streamPayload struct {
	Question       string `json:"question"`
	SessionID      string `json:"sessionId,omitempty"`
	ArticleContext string `json:"articleContext,omitempty"`
}

type deeperPayload struct {
	SessionID string `json:"sessionId"`
}

type feedbackPayload struct {
	Question string `json:"question"`
	Response string `json:"response"`
	VoteType string `json:"voteType"`
}

// askEnvelope is the standard (non-streaming) response envelope.
type askEnvelope struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Data    *askData `json:"data,omitempty"`
	Meta    *askMeta `json:"meta,omitempty"`
}

type askData struct {
	Answer          string           `json:"answer"`
	Sources         []chat.Source    `json:"sources"`
	Confidence      *float64         `json:"confidence,omitempty"`
	Provider        string           `json:"provider,omitempty"`
	RetrievalStats  *RetrievalStats  `json:"retrievalStats,omitempty"`
	HybridSynthesis *HybridSynthesis `json:"hybridSynthesis,omitempty"`
}

// RetrievalStats reports what retrieval found for a question.
type RetrievalStats struct {
	ChunksRetrieved int     `json:"chunksRetrieved,omitempty"`
	TopScore        float64 `json:"topScore,omitempty"`
}

// HybridSynthesis is the optional multi-pass synthesis block some answers
// carry; its outline feeds the assistant message.
type HybridSynthesis struct {
	Outline []string `json:"outline,omitempty"`
	Model   string   `json:"model,omitempty"`
}

type askMeta struct {
	RemainingQuota *int        `json:"remainingQuota,omitempty"`
	ResetTime      string      `json:"resetTime,omitempty"`
	Routing        *askRouting `json:"routing,omitempty"`
}

type askRouting struct {
	Route      string   `json:"route,omitempty"`
	Model      string   `json:"model,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Bypassed   bool     `json:"bypassed,omitempty"`
}

// SSE event payloads, one per event type the streams emit.

type outlinePayload struct {
	Outline []string `json:"outline"`
	Model   string   `json:"model"`
}

type statusPayload struct {
	Message string `json:"message"`
}

type answerPayload struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

type donePayload struct {
	SessionID        string `json:"sessionId"`
	CanGoDeeper      bool   `json:"canGoDeeper"`
	DeeperSuggestion string `json:"deeperSuggestion"`
	RemainingQuota   *int   `json:"remainingQuota,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type analysisPayload struct {
	Analysis string `json:"analysis"`
}

// errorBody covers the shapes error responses use for their message.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// serverMessage extracts the server-supplied message from an error response
// body, or "" when the body carries none.
func (b errorBody) serverMessage() string {
	if b.Error != "" {
		return b.Error
	}

	return b.Message
}
