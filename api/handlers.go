package api

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleChat answers a standard (non-streaming) question with a scripted
// envelope.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "question is required"})
	}

	remaining, ok := s.sessions.consume()
	if !ok {
		return c.Status(fiber.StatusTooManyRequests).JSON(errorResponse{Error: "quota exhausted"})
	}

	s.logger.Debug("answering question",
		"question", req.Question,
		"topK", req.TopK,
		"remaining", remaining,
	)

	return c.JSON(askEnvelope{
		Success: true,
		Data:    scriptAnswer(req.Question),
		Meta: &askMeta{
			RemainingQuota: &remaining,
			Routing: &askRouting{
				Route:      "standard",
				Model:      mockModel,
				Confidence: floatPtr(0.9),
			},
		},
	})
}

// handleStream runs one scripted research turn over SSE. A request carrying
// a known sessionId resumes that session; anything else opens a new one.
func (s *Server) handleStream(c *fiber.Ctx) error {
	var req streamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "question is required"})
	}

	var frames []frame

	remaining, ok := s.sessions.consume()
	if !ok {
		// Quota exhaustion surfaces as an error event rather than a failed
		// request, exercising the client's terminal-error path.
		frames = []frame{{event: "error", payload: errorEvent{Message: "research quota exhausted"}}}
		return s.streamFrames(c, frames)
	}

	sess, resumed := s.sessions.resume(req.SessionID, req.Question)
	if !resumed {
		sess = s.sessions.create(req.Question)
	}

	s.logger.Debug("streaming research turn",
		"session", sess.ID,
		"resumed", resumed,
		"remaining", remaining,
	)

	frames = researchFrames(sess, req.Question, remaining)
	return s.streamFrames(c, frames)
}

// handleDeeper runs the deeper-analysis sub-session for an existing session.
func (s *Server) handleDeeper(c *fiber.Ctx) error {
	var req deeperRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "sessionId is required"})
	}

	sess, ok := s.sessions.lookup(req.SessionID)
	if !ok {
		frames := []frame{{event: "error", payload: errorEvent{Message: "unknown session"}}}
		return s.streamFrames(c, frames)
	}

	remaining, ok := s.sessions.consume()
	if !ok {
		frames := []frame{{event: "error", payload: errorEvent{Message: "research quota exhausted"}}}
		return s.streamFrames(c, frames)
	}

	s.logger.Debug("streaming deeper analysis", "session", sess.ID)

	return s.streamFrames(c, deeperFrames(sess, remaining))
}

// handleFeedback accepts an answer vote. The backend only records it in the
// log; the endpoint exists so the client's fire-and-forget path has a real
// target.
func (s *Server) handleFeedback(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	if req.VoteType != "positive" && req.VoteType != "negative" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "voteType must be positive or negative"})
	}

	s.logger.Info("feedback received",
		"vote", req.VoteType,
		"question", req.Question,
	)

	return c.SendStatus(fiber.StatusAccepted)
}

// streamFrames writes the scripted frames as an SSE body.
//
// It uses io.Pipe + SetBodyStream rather than SetBodyStreamWriter:
// SetBodyStreamWriter buffers flushed writes internally, so every frame
// would land in one network write and the client's chunk-boundary handling
// would never be exercised. With a pipe, each write blocks until fasthttp
// drains it to the socket, giving true per-frame delivery.
func (s *Server) streamFrames(c *fiber.Ctx, frames []frame) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	pr, pw := io.Pipe()
	go s.writeFrames(pw, frames)

	// Unknown size (-1) selects chunked transfer encoding.
	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (s *Server) writeFrames(pw *io.PipeWriter, frames []frame) {
	defer pw.Close()

	for i, f := range frames {
		if s.config.StreamDelay > 0 && i > 0 {
			time.Sleep(s.config.StreamDelay)
		}

		payload, err := json.Marshal(f.payload)
		if err != nil {
			s.logger.Error("encoding frame payload", "event", f.event, "error", err)
			return
		}

		if _, err := fmt.Fprintf(pw, "event: %s\ndata: %s\n\n", f.event, payload); err != nil {
			// The client went away mid-stream; nothing left to do.
			s.logger.Debug("client closed stream", "event", f.event, "error", err)
			return
		}
	}
}
