// Package mcp exposes gloss to agents over the Model Context Protocol:
// an ask tool that runs a standard question through the configured backend
// and a conversation_history tool that reads persisted tracks.
package mcp

import (
	"context"
	"errors"
	"net/http"

	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/utils"
)

// Asker runs one standard question through a gloss backend. *client.Client
// satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string) (chat.Message, error)
}

// TrackLoader reads persisted conversation snapshots. history.Store
// satisfies it; reading through the driver rather than an in-process store
// means the tool sees turns written by other gloss processes.
type TrackLoader interface {
	LoadTrack(track chat.Track) ([]chat.Message, error)
}

// Config is the MCP server configuration.
type Config struct {
	// Asker answers the ask tool's questions.
	Asker Asker

	// History backs the conversation_history tool. Optional: without it
	// the tool is not registered.
	History TrackLoader

	// Noop builds an empty MCP server with no tools configured.
	Noop bool

	// Logger receives tool diagnostics.
	Logger *slog.Logger
}

// Server wraps an MCP server and its streamable HTTP handler.
type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates an MCP server with the gloss tools registered.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gloss",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// An empty MCP server with no tools, for hosts that mount /mcp
		// unconditionally but have the capability disabled.
		s.mcpServer = mcpServer
		s.handler = newHandler(mcpServer)
		return s, nil
	}

	if c.Asker == nil {
		return nil, errors.New("asker is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        askToolName,
		Description: askDescription,
	}, s.handleAsk)

	// History is optional; without a driver the tool has nothing to read.
	if c.History != nil {
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        historyToolName,
			Description: historyDescription,
		}, s.handleHistory)
	}

	s.mcpServer = mcpServer
	s.handler = newHandler(mcpServer)

	return s, nil
}

func newHandler(server *mcp.Server) *mcp.StreamableHTTPHandler {
	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return server
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
