package servecmder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/api/mcp"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/client"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/credentials"
	"github.com/glosshq/gloss/pkg/history"
	"github.com/glosshq/gloss/pkg/identity"
	"github.com/glosshq/gloss/pkg/utils"
)

type mcpCommander struct {
	backend       string
	mcpListen     string
	historyDriver string

	configDir string
	debug     bool

	cfg *config.Config
}

const mcpLongDesc string = `Run just the MCP server.

Exposes gloss to agents over the Model Context Protocol: the ask tool
runs a standard question through the configured backend, and the
conversation_history tool reads persisted tracks through the configured
history driver. Stored credentials are forwarded, so an authenticated
backend works the same as it does for "gloss ask".

Examples:
  gloss serve mcp
  gloss serve mcp --mcp-listen :9090
  gloss serve mcp --backend https://api.glosshq.dev`

const mcpShortDesc string = "Run just the MCP server"

func newMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.DefaultFlags, []string{
				config.FlagBackend,
				config.FlagMCPListen,
				config.FlagHistoryDriver,
			})

			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagMCPListen, &cmder.mcpListen)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagHistoryDriver, &cmder.historyDriver)

	return cmd
}

func (c *mcpCommander) run(ctx context.Context) error {
	log := newServeLogger(c.cfg, c.debug)

	hist, err := history.Open(ctx, c.cfg.History, c.configDir)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	if hist != nil {
		defer hist.Close()
	}

	creds, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	var httpClient *http.Client
	if c.cfg.Backend.TimeoutSeconds > 0 {
		httpClient = &http.Client{
			Timeout: time.Duration(c.cfg.Backend.TimeoutSeconds) * time.Second,
		}
	}

	// Agent asks go through an ephemeral store so they never overwrite the
	// tracks "gloss ask" and "gloss research" persist.
	asker, err := client.New(client.Config{
		BaseURL:      c.cfg.Backend.URL,
		ChatPath:     c.cfg.Backend.ChatPath,
		StreamPath:   c.cfg.Backend.StreamPath,
		DeeperPath:   c.cfg.Backend.DeeperPath,
		FeedbackPath: c.cfg.Backend.FeedbackPath,
		Request:      c.cfg.Request,
		HTTPClient:   httpClient,
		Tokens:       creds.Source(credentials.DefaultBackend),
		Version:      utils.Version,
	}, identity.NewFileProvider(c.configDir), chat.NewStore(chat.WithLogger(log)), log)
	if err != nil {
		return fmt.Errorf("building backend client: %w", err)
	}

	mcpConfig := mcp.Config{
		Asker:  asker,
		Logger: log,
	}
	if hist != nil {
		mcpConfig.History = hist
	}

	mcpServer, err := mcp.NewServer(mcpConfig)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	log.Info("serving MCP",
		"listen", c.cfg.Serve.MCPListen,
		"backend", c.cfg.Backend.URL,
	)

	return runUntilSignal(log, func() error {
		return app.Listen(c.cfg.Serve.MCPListen)
	}, app.Shutdown)
}
