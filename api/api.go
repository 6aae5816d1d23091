package api

import (
	"net"

	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/glosshq/gloss/pkg/logger"
)

// Server is the development backend server.
type Server struct {
	config   Config
	sessions *registry
	logger   *slog.Logger
	app      *fiber.App
}

// NewServer creates the development backend. A nil log discards output.
func NewServer(config Config, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if config.InitialQuota == 0 {
		config.InitialQuota = defaultInitialQuota
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		sessions: newRegistry(config.InitialQuota),
		logger:   log,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/chat", s.handleChat)
	app.Post("/api/chat/stream", s.handleStream)
	app.Post("/api/chat/deeper", s.handleDeeper)
	app.Post("/api/feedback", s.handleFeedback)

	if config.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCP))
	}

	return s
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting development backend",
		"listen", s.config.ListenAddr,
		"quota", s.config.InitialQuota,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Listen serves on an existing listener. Tests use it to bind port zero.
func (s *Server) Listen(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
