// Package client implements the conversation client for a gloss backend:
// the standard ask round trip, the research-mode streaming turn, the
// deeper-analysis sub-session, and fire-and-forget feedback.
//
// The client owns transport and session state only. Conversation state
// lives in an injected chat.Store; presentation layers subscribe to the
// store and never talk to the client directly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/client/header"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/eventstream"
	"github.com/glosshq/gloss/pkg/identity"
	"github.com/glosshq/gloss/pkg/logger"
	"github.com/glosshq/gloss/pkg/worker"
)

// Endpoint path defaults, used when Config leaves a path empty.
const (
	defaultChatPath     = "/api/chat"
	defaultStreamPath   = "/api/chat/stream"
	defaultDeeperPath   = "/api/chat/deeper"
	defaultFeedbackPath = "/api/feedback"
)

// Retrieval defaults sent with standard questions when Config.Request
// leaves a knob zero.
const (
	defaultTopK        uint    = 5
	defaultThreshold   float64 = 0.5
	defaultTemperature float64 = 0.3
	defaultMaxTokens   uint    = 500
)

// TokenProvider yields the bearer token attached to backend requests.
// Returning false leaves the request anonymous.
type TokenProvider interface {
	Token() (string, bool)
}

// QuotaObserver receives remaining-quota updates carried by answer
// envelopes and done events. resetTime is empty when the backend did not
// report one.
type QuotaObserver func(remaining int, resetTime string)

// Config is the client configuration.
type Config struct {
	// BaseURL is the backend base URL (e.g. "https://api.glosshq.dev").
	BaseURL string

	// ChatPath, StreamPath, DeeperPath and FeedbackPath override the
	// backend endpoint paths.
	ChatPath     string
	StreamPath   string
	DeeperPath   string
	FeedbackPath string

	// Request carries the retrieval knobs sent with standard questions.
	// Zero fields fall back to the protocol defaults.
	Request config.RequestConfig

	// HTTPClient optionally overrides the transport. The default client
	// allows five minutes per exchange; research answers can be slow.
	HTTPClient *http.Client

	// Tokens optionally supplies bearer tokens. Without one every request
	// is anonymous and deeper analysis is unavailable.
	Tokens TokenProvider

	// QuotaObserver, when set, receives remaining-quota updates.
	QuotaObserver QuotaObserver

	// Events optionally publishes a turn-completed event after each
	// successful exchange. Failures are logged, never surfaced.
	Events eventstream.Publisher

	// Workers optionally runs background work (feedback, event publishes)
	// off the interactive path. Without a pool that work runs inline.
	Workers *worker.Pool

	// Version stamps turn events with the client build version.
	Version string
}

// Client talks to one gloss backend on behalf of one conversation store.
type Client struct {
	config     Config
	identity   identity.Provider
	store      *chat.Store
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. The identity provider and conversation store are
// required collaborators; the logger may be nil for silence.
func New(cfg Config, ident identity.Provider, store *chat.Store, log *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}

	if ident == nil {
		return nil, errors.New("identity provider is required")
	}

	if store == nil {
		return nil, errors.New("conversation store is required")
	}

	if log == nil {
		log = logger.Nop()
	}

	if cfg.ChatPath == "" {
		cfg.ChatPath = defaultChatPath
	}
	if cfg.StreamPath == "" {
		cfg.StreamPath = defaultStreamPath
	}
	if cfg.DeeperPath == "" {
		cfg.DeeperPath = defaultDeeperPath
	}
	if cfg.FeedbackPath == "" {
		cfg.FeedbackPath = defaultFeedbackPath
	}

	if cfg.Request.TopK == 0 {
		cfg.Request.TopK = defaultTopK
	}
	if cfg.Request.Threshold == 0 {
		cfg.Request.Threshold = defaultThreshold
	}
	if cfg.Request.Temperature == 0 {
		cfg.Request.Temperature = defaultTemperature
	}
	if cfg.Request.MaxTokens == 0 {
		cfg.Request.MaxTokens = defaultMaxTokens
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 5 * time.Minute,
		}
	}

	return &Client{
		config:     cfg,
		identity:   ident,
		store:      store,
		httpClient: httpClient,
		logger:     log,
	}, nil
}

// Store returns the conversation store the client mutates.
func (c *Client) Store() *chat.Store {
	return c.store
}

// Ask sends a standard (non-streaming) question. It appends the user
// message, performs one round trip, and on success appends the assistant
// message built from the response envelope, returning it.
func (c *Client) Ask(ctx context.Context, question string) (chat.Message, error) {
	payload := askPayload{
		Question:    question,
		TopK:        c.config.Request.TopK,
		Threshold:   c.config.Request.Threshold,
		Temperature: c.config.Request.Temperature,
		MaxTokens:   c.config.Request.MaxTokens,
	}

	req, err := c.newRequest(ctx, c.config.ChatPath, payload)
	if err != nil {
		return chat.Message{}, err
	}

	started := time.Now()
	c.store.Append(chat.TrackStandard, chat.NewUserMessage(question, chat.ModeRegular))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chat.Message{}, fmt.Errorf("sending question: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return chat.Message{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return chat.Message{}, errors.New(responseError(resp.StatusCode, body))
	}

	var env askEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return chat.Message{}, fmt.Errorf("decoding response: %w", err)
	}

	if !env.Success || env.Data == nil {
		if env.Error != "" {
			return chat.Message{}, errors.New(env.Error)
		}
		return chat.Message{}, errors.New("backend reported an unsuccessful answer")
	}

	msg := chat.Message{
		Role:       chat.RoleAssistant,
		Content:    env.Data.Answer,
		Timestamp:  time.Now(),
		Mode:       chat.ModeRegular,
		Sources:    env.Data.Sources,
		Confidence: env.Data.Confidence,
		Provider:   env.Data.Provider,
	}
	if env.Data.HybridSynthesis != nil {
		msg.Outline = env.Data.HybridSynthesis.Outline
	}

	var quota *int
	if env.Meta != nil {
		if env.Meta.Routing != nil {
			msg.Model = env.Meta.Routing.Model
			msg.Route = env.Meta.Routing.Route
		}
		quota = env.Meta.RemainingQuota
		c.observeQuota(env.Meta.RemainingQuota, env.Meta.ResetTime)
	}

	c.store.Append(chat.TrackStandard, msg)

	c.publishTurn(eventstream.TurnMeta{
		Track:           string(chat.TrackStandard),
		Model:           msg.Model,
		Provider:        msg.Provider,
		Route:           msg.Route,
		Confidence:      msg.Confidence,
		QuestionPreview: eventstream.Preview(question),
		AnswerPreview:   eventstream.Preview(msg.Content),
		DurationMs:      time.Since(started).Milliseconds(),
		RemainingQuota:  quota,
	})

	return msg, nil
}

// VoteType is the polarity of answer feedback.
type VoteType string

const (
	VotePositive VoteType = "positive"
	VoteNegative VoteType = "negative"
)

// Feedback submits a vote on an answer. Fire-and-forget: failures are
// logged, never surfaced, and the call returns immediately when a worker
// pool is configured.
func (c *Client) Feedback(question, response string, vote VoteType) {
	payload := feedbackPayload{
		Question: question,
		Response: response,
		VoteType: string(vote),
	}

	c.submit("feedback", func(ctx context.Context) error {
		req, err := c.newRequest(ctx, c.config.FeedbackPath, payload)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending feedback: %w", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("feedback rejected with status %d", resp.StatusCode)
		}

		return nil
	})
}

// newRequest builds a POST with the standard headers and a JSON body.
func (c *Client) newRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	clientID, err := c.identity.ClientID()
	if err != nil {
		return nil, fmt.Errorf("resolving client identity: %w", err)
	}

	token, _ := c.token()
	header.Apply(req, clientID, token)

	c.logger.Debug("sending request",
		"url", req.URL.String(),
		"headers", header.Redacted(req.Header),
	)

	return req, nil
}

// token returns the current bearer token, if any.
func (c *Client) token() (string, bool) {
	if c.config.Tokens == nil {
		return "", false
	}

	return c.config.Tokens.Token()
}

// observeQuota forwards a remaining-quota value to the observer, if both
// are present.
func (c *Client) observeQuota(remaining *int, resetTime string) {
	if remaining == nil || c.config.QuotaObserver == nil {
		return
	}

	c.config.QuotaObserver(*remaining, resetTime)
}

// submit runs fn in the background, preferring the worker pool when one is
// configured. Errors are logged, never surfaced.
func (c *Client) submit(kind string, fn func(ctx context.Context) error) {
	if c.config.Workers != nil {
		c.config.Workers.Enqueue(worker.Job{Kind: kind, Run: fn})
		return
	}

	if err := fn(context.Background()); err != nil {
		c.logger.Warn("background task failed", "kind", kind, "error", err)
	}
}

// publishTurn emits a turn-completed event for a finished exchange when a
// publisher is configured.
func (c *Client) publishTurn(turn eventstream.TurnMeta) {
	if c.config.Events == nil {
		return
	}

	clientID, err := c.identity.ClientID()
	if err != nil {
		c.logger.Warn("resolving client identity for turn event", "error", err)
	}

	event := eventstream.NewTurnCompletedEvent(eventstream.EventSource{
		ClientID: clientID,
		Backend:  c.config.BaseURL,
		Version:  c.config.Version,
	}, turn)

	c.submit("turn-event", func(ctx context.Context) error {
		return c.config.Events.Publish(ctx, event)
	})
}

// responseError derives the error text for a non-success HTTP status: the
// server-supplied message when the body carries one, else a status-coded
// fallback.
func responseError(status int, body []byte) string {
	var b errorBody
	if err := json.Unmarshal(body, &b); err == nil {
		if msg := b.serverMessage(); msg != "" {
			return msg
		}
	}

	return fmt.Sprintf("request failed with status %d", status)
}
