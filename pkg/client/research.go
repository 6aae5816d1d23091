package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/eventstream"
	"github.com/glosshq/gloss/pkg/sse"
)

// Streaming status lines shown while a research answer is in flight.
const (
	statusAnalyzing  = "Analyzing article..."
	statusFollowUp   = "Generating response..."
	statusPreparing  = "Preparing detailed response..."
	statusGenerating = "Generating..."
)

// Every completed research turn reports the same fixed confidence and route.
const (
	researchConfidence float64 = 85
	researchRoute              = "research"
)

// ResearchOption adjusts a single research turn.
type ResearchOption func(*streamPayload)

// WithArticle attaches article text the backend should ground the turn on.
func WithArticle(text string) ResearchOption {
	return func(p *streamPayload) {
		p.ArticleContext = text
	}
}

// Research sends a research-mode question and returns the Turn handle for
// the streaming exchange. The user message and a streaming placeholder are
// appended before any network outcome; the placeholder's index becomes the
// turn's patch target.
//
// Failures after the placeholder exists surface through Turn.Wait, not
// through the returned error: the turn carries its own outcome.
func (c *Client) Research(ctx context.Context, question string, opts ...ResearchOption) (*Turn, error) {
	// A prior assistant message holding a session makes this a follow-up:
	// the session rides in the request and the placeholder wording changes.
	sessionID := c.store.LastSessionID(chat.TrackResearch)

	status := statusAnalyzing
	if sessionID != "" {
		status = statusFollowUp
	}

	payload := streamPayload{
		Question:  question,
		SessionID: sessionID,
	}
	for _, opt := range opts {
		opt(&payload)
	}

	req, err := c.newRequest(ctx, c.config.StreamPath, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	c.store.Append(chat.TrackResearch, chat.NewUserMessage(question, chat.ModeResearch))
	index := c.store.Append(chat.TrackResearch, chat.NewStreamingPlaceholder(status))

	turn := newTurn(chat.TrackResearch, index, question)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.endStreaming(turn)
		turn.reject(fmt.Errorf("opening stream: %w", err))
		return turn, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.endStreaming(turn)
		turn.reject(errors.New(responseError(resp.StatusCode, body)))
		return turn, nil
	}

	go c.consume(turn, resp.Body)

	return turn, nil
}

// consume drives one turn's state machine from the stream until a terminal
// event, stream end, or read failure.
func (c *Client) consume(turn *Turn, body io.ReadCloser) {
	defer body.Close()

	reader := sse.NewReader(body, c.logger)
	for {
		ev, err := reader.Next()
		if err != nil {
			c.endStreaming(turn)
			turn.reject(fmt.Errorf("reading stream: %w", err))
			return
		}

		if ev == nil {
			// Stream closed without done or error. Treated as benign
			// completion; the message keeps whatever the last event set.
			c.logger.Debug("stream closed without terminal event",
				"track", turn.track,
				"index", turn.index,
			)
			c.endStreaming(turn)
			turn.resolve()
			return
		}

		if terminal := c.applyEvent(turn, ev); terminal {
			return
		}
	}
}

// applyEvent applies one decoded event to the turn's bound message and
// reports whether the event was terminal.
func (c *Client) applyEvent(turn *Turn, ev *sse.Event) bool {
	switch ev.Type {
	case sse.TypeOutline:
		var p outlinePayload
		if !c.decodePayload(ev, &p) {
			return false
		}

		outline := p.Outline
		if outline == nil {
			outline = []string{}
		}

		c.store.Patch(turn.track, turn.index, chat.MessagePatch{
			Outline:         outline,
			Model:           chat.String(p.Model),
			StreamingStatus: chat.String(statusPreparing),
		})

	case sse.TypeStatus:
		var p statusPayload
		if !c.decodePayload(ev, &p) {
			return false
		}

		message := p.Message
		if message == "" {
			message = statusGenerating
		}

		c.store.Patch(turn.track, turn.index, chat.MessagePatch{
			StreamingStatus: chat.String(message),
		})

	case sse.TypeAnswer:
		var p answerPayload
		if !c.decodePayload(ev, &p) {
			return false
		}

		c.store.Patch(turn.track, turn.index, chat.MessagePatch{
			Content:         chat.String(p.Answer),
			Model:           chat.String(p.Model),
			IsStreaming:     chat.Bool(false),
			StreamingStatus: chat.String(""),
		})

	case sse.TypeDone:
		var p donePayload
		if !c.decodePayload(ev, &p) {
			return false
		}

		c.store.Patch(turn.track, turn.index, chat.MessagePatch{
			IsStreaming:      chat.Bool(false),
			StreamingStatus:  chat.String(""),
			Confidence:       chat.Float(researchConfidence),
			Route:            chat.String(researchRoute),
			SessionID:        chat.String(p.SessionID),
			CanGoDeeper:      chat.Bool(p.CanGoDeeper),
			DeeperSuggestion: chat.String(p.DeeperSuggestion),
		})

		c.observeQuota(p.RemainingQuota, "")

		final, _ := c.store.Message(turn.track, turn.index)
		c.publishTurn(eventstream.TurnMeta{
			Track:           string(turn.track),
			SessionID:       p.SessionID,
			Model:           final.Model,
			Route:           researchRoute,
			Confidence:      final.Confidence,
			QuestionPreview: eventstream.Preview(turn.question),
			AnswerPreview:   eventstream.Preview(final.Content),
			DurationMs:      time.Since(turn.started).Milliseconds(),
			Streaming:       true,
			RemainingQuota:  p.RemainingQuota,
		})

		turn.resolve()
		return true

	case sse.TypeError:
		var p errorPayload
		if !c.decodePayload(ev, &p) {
			return false
		}

		message := p.Message
		if message == "" {
			message = "the stream reported an error"
		}

		// The message keeps isStreaming as last set; the error event alone
		// does not clear it.
		turn.reject(errors.New(message))
		return true
	}

	// Unknown and empty types (connected included) are ignored for
	// forward compatibility.
	return false
}

// decodePayload unmarshals an event payload whose JSON is already known to
// be syntactically valid. A shape mismatch is logged and the event skipped,
// matching the malformed-payload policy.
func (c *Client) decodePayload(ev *sse.Event, into any) bool {
	if err := json.Unmarshal(ev.Data, into); err != nil {
		c.logger.Warn("dropping SSE event with unexpected payload shape",
			"type", ev.Type,
			"error", err,
		)
		return false
	}

	return true
}

// endStreaming forces the bound message out of its streaming state.
func (c *Client) endStreaming(turn *Turn) {
	c.store.Patch(turn.track, turn.index, chat.MessagePatch{
		IsStreaming: chat.Bool(false),
	})
}
