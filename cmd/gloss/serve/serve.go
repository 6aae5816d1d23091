// Package servecmder provides the serve command for running the gloss
// development backend and the MCP agent server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/api"
	"github.com/glosshq/gloss/api/mcp"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/client"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/history"
	"github.com/glosshq/gloss/pkg/identity"
	"github.com/glosshq/gloss/pkg/logger"
)

type serveCommander struct {
	listen string
	quota  int
	delay  time.Duration

	configDir string
	debug     bool

	cfg *config.Config
}

const serveLongDesc string = `Run gloss services.

The development backend speaks the full wire protocol with scripted
answers, so the client has something real to talk to without a retrieval
stack. Running "gloss serve" also mounts the MCP agent server at /mcp on
the same listener, asking the local backend.

Use subcommands to run one service alone:
  gloss serve            Development backend with MCP mounted at /mcp
  gloss serve backend    Just the development backend
  gloss serve mcp        Just the MCP server, against the configured backend`

const serveShortDesc string = "Run gloss services"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.DefaultFlags, []string{
				config.FlagServeListen,
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

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagServeListen, &cmder.listen)
	cmd.Flags().IntVar(&cmder.quota, "quota", 0, "Answers served before the backend rejects with 429 (0 = server default)")
	cmd.Flags().DurationVar(&cmder.delay, "delay", 0, "Pause between SSE frames so streaming is visible (e.g. 150ms)")

	cmd.AddCommand(NewBackendCmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	log := newServeLogger(c.cfg, c.debug)

	hist, err := history.Open(ctx, c.cfg.History, c.configDir)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	if hist != nil {
		defer hist.Close()
	}

	// The MCP ask tool loops back to the backend served here. Its store is
	// ephemeral: agent asks never overwrite the CLI's persisted snapshots,
	// while the history tool still reads them through the driver.
	loopback, err := client.New(client.Config{
		BaseURL: localURL(c.cfg.Serve.Listen),
		Request: c.cfg.Request,
	}, identity.Static("gloss-serve"), chat.NewStore(chat.WithLogger(log)), log)
	if err != nil {
		return fmt.Errorf("building loopback client: %w", err)
	}

	mcpConfig := mcp.Config{
		Asker:  loopback,
		Logger: log,
	}
	if hist != nil {
		mcpConfig.History = hist
	}

	mcpServer, err := mcp.NewServer(mcpConfig)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	backend := api.NewServer(api.Config{
		ListenAddr:   c.cfg.Serve.Listen,
		InitialQuota: c.quota,
		StreamDelay:  c.delay,
		MCP:          mcpServer.Handler(),
	}, log)

	log.Info("serving development backend with MCP",
		"listen", c.cfg.Serve.Listen,
		"mcp_path", "/mcp",
	)

	return runUntilSignal(log, backend.Run, backend.Shutdown)
}

// runUntilSignal runs a server until it fails or the process receives
// SIGINT/SIGTERM, then shuts it down.
func runUntilSignal(log *slog.Logger, run func() error, shutdown func() error) error {
	errChan := make(chan error, 1)
	go func() {
		if err := run(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		return shutdown()
	}
}

// newServeLogger builds the logger shared by the serve subcommands.
func newServeLogger(cfg *config.Config, debug bool) *slog.Logger {
	return logger.New(
		logger.WithDebug(debug || cfg.Log.Debug),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithPretty(!cfg.Log.JSON),
	)
}

// localURL derives the loopback URL for a listen address, so the mounted
// MCP server can ask the backend it is mounted on.
func localURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://localhost" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}

	return fmt.Sprintf("http://%s:%s", host, port)
}
