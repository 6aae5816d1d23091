package api

import "github.com/glosshq/gloss/pkg/chat"

// The backend's side of the wire protocol the client consumes. Request and
// response keys are camelCase.

type askRequest struct {
	Question    string  `json:"question"`
	TopK        uint    `json:"topK"`
	Threshold   float64 `json:"threshold"`
	Temperature float64 `json:"temperature"`
	MaxTokens   uint    `json:"maxTokens"`
}

type streamRequest struct {
	Question       string `json:"question"`
	SessionID      string `json:"sessionId"`
	ArticleContext string `json:"articleContext"`
}

type deeperRequest struct {
	SessionID string `json:"sessionId"`
}

type feedbackRequest struct {
	Question string `json:"question"`
	Response string `json:"response"`
	VoteType string `json:"voteType"`
}

type errorResponse struct {
	Error string `json:"error"`
}

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
	RetrievalStats  *retrievalStats  `json:"retrievalStats,omitempty"`
	HybridSynthesis *hybridSynthesis `json:"hybridSynthesis,omitempty"`
}

type retrievalStats struct {
	ChunksRetrieved int     `json:"chunksRetrieved"`
	TopScore        float64 `json:"topScore"`
}

type hybridSynthesis struct {
	Outline []string `json:"outline"`
	Model   string   `json:"model"`
}

type askMeta struct {
	RemainingQuota *int        `json:"remainingQuota,omitempty"`
	ResetTime      string      `json:"resetTime,omitempty"`
	Routing        *askRouting `json:"routing,omitempty"`
}

type askRouting struct {
	Route      string   `json:"route"`
	Model      string   `json:"model"`
	Confidence *float64 `json:"confidence,omitempty"`
	Bypassed   bool     `json:"bypassed,omitempty"`
}

// SSE event payloads.

type connectedEvent struct {
	Type string `json:"type"`
}

type outlineEvent struct {
	Outline []string `json:"outline"`
	Model   string   `json:"model"`
}

type statusEvent struct {
	Message string `json:"message"`
}

type answerEvent struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

type doneEvent struct {
	SessionID        string `json:"sessionId"`
	CanGoDeeper      bool   `json:"canGoDeeper"`
	DeeperSuggestion string `json:"deeperSuggestion,omitempty"`
	RemainingQuota   *int   `json:"remainingQuota,omitempty"`
}

type errorEvent struct {
	Message string `json:"message"`
}

type analysisEvent struct {
	Analysis string `json:"analysis"`
}
