package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/sse"
)

// Deeper opens a deeper-analysis sub-session on the assistant message at
// index, reusing its session identifier. The call is a silent no-op —
// (nil, nil), no network I/O, no state change — when the message carries no
// session or no bearer token is available.
//
// While the sub-session runs the message shows isLoadingDeeper and deeper
// requests are withheld (canGoDeeper=false); a failed sub-session restores
// canGoDeeper so the caller may retry.
func (c *Client) Deeper(ctx context.Context, track chat.Track, index int) (*Turn, error) {
	msg, ok := c.store.Message(track, index)
	if !ok || msg.SessionID == "" {
		return nil, nil
	}

	if _, ok := c.token(); !ok {
		return nil, nil
	}

	req, err := c.newRequest(ctx, c.config.DeeperPath, deeperPayload{
		SessionID: msg.SessionID,
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	c.store.Patch(track, index, chat.MessagePatch{
		IsLoadingDeeper: chat.Bool(true),
		CanGoDeeper:     chat.Bool(false),
	})

	turn := newTurn(track, index, msg.Content)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.restoreDeeper(turn)
		turn.reject(fmt.Errorf("opening deeper stream: %w", err))
		return turn, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.restoreDeeper(turn)
		turn.reject(errors.New(responseError(resp.StatusCode, body)))
		return turn, nil
	}

	go c.consumeDeeper(turn, resp.Body)

	return turn, nil
}

// consumeDeeper drives the deeper sub-session until a terminal event,
// stream end, or read failure.
func (c *Client) consumeDeeper(turn *Turn, body io.ReadCloser) {
	defer body.Close()

	reader := sse.NewReader(body, c.logger)
	for {
		ev, err := reader.Next()
		if err != nil {
			c.restoreDeeper(turn)
			turn.reject(fmt.Errorf("reading deeper stream: %w", err))
			return
		}

		if ev == nil {
			// Same benign-close policy as the research turn: end the
			// loading state and resolve without error.
			c.logger.Debug("deeper stream closed without terminal event",
				"track", turn.track,
				"index", turn.index,
			)
			c.store.Patch(turn.track, turn.index, chat.MessagePatch{
				IsLoadingDeeper: chat.Bool(false),
			})
			turn.resolve()
			return
		}

		if terminal := c.applyDeeperEvent(turn, ev); terminal {
			return
		}
	}
}

// applyDeeperEvent applies one decoded event to the deeper sub-session and
// reports whether it was terminal.
func (c *Client) applyDeeperEvent(turn *Turn, ev *sse.Event) bool {
	switch ev.Type {
	case sse.TypeAnalysis:
		var p analysisPayload
		if !c.decodePayload(ev, &p) {
			return false
		}

		// The stream stays open after analysis so a later done can close
		// the session; loading ends as soon as the analysis text lands.
		c.store.Patch(turn.track, turn.index, chat.MessagePatch{
			DeeperAnalysis:  chat.String(p.Analysis),
			IsLoadingDeeper: chat.Bool(false),
		})

	case sse.TypeDone:
		var p donePayload
		if !c.decodePayload(ev, &p) {
			return false
		}

		c.store.Patch(turn.track, turn.index, chat.MessagePatch{
			IsLoadingDeeper: chat.Bool(false),
		})
		c.observeQuota(p.RemainingQuota, "")
		turn.resolve()
		return true

	case sse.TypeError:
		var p errorPayload
		if !c.decodePayload(ev, &p) {
			return false
		}

		message := p.Message
		if message == "" {
			message = "the deeper stream reported an error"
		}

		c.restoreDeeper(turn)
		turn.reject(errors.New(message))
		return true
	}

	return false
}

// restoreDeeper ends the loading state and re-enables deeper requests
// after a failed sub-session.
func (c *Client) restoreDeeper(turn *Turn) {
	c.store.Patch(turn.track, turn.index, chat.MessagePatch{
		IsLoadingDeeper: chat.Bool(false),
		CanGoDeeper:     chat.Bool(true),
	})
}
