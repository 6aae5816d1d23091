// Package bootstrap assembles the collaborators a gloss command needs —
// config, logger, identity, credentials, history, conversation store,
// worker pool, event publisher, and the backend client — so each command
// wires one App instead of repeating the plumbing.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"log/slog"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/client"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/credentials"
	"github.com/glosshq/gloss/pkg/eventstream"
	"github.com/glosshq/gloss/pkg/eventstream/kafka"
	"github.com/glosshq/gloss/pkg/history"
	"github.com/glosshq/gloss/pkg/identity"
	"github.com/glosshq/gloss/pkg/logger"
	"github.com/glosshq/gloss/pkg/utils"
	"github.com/glosshq/gloss/pkg/worker"
)

// Options configures Load.
type Options struct {
	// ConfigDir overrides .gloss/ directory resolution.
	ConfigDir string

	// Debug forces debug logging regardless of the configured log level.
	Debug bool

	// Config, when set, is used instead of loading config.toml. Commands
	// that bind flags through viper pass the materialized result here.
	Config *config.Config

	// LogWriter receives log output. Defaults to stderr so logs never
	// interleave with command output on stdout.
	LogWriter io.Writer

	// Quota, when set, receives remaining-quota updates from the backend.
	Quota client.QuotaObserver
}

// App holds one command invocation's assembled collaborators. Close releases
// them in reverse dependency order.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *chat.Store
	Client  *client.Client
	History history.Store
	Creds   *credentials.Manager

	workers *worker.Pool
	events  eventstream.Publisher
}

// Load builds an App from the options. The conversation store comes back
// restored from whatever history the configured driver holds.
func Load(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfger, err := config.NewConfiger(opts.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		cfg, err = cfger.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	logWriter := opts.LogWriter
	if logWriter == nil {
		logWriter = os.Stderr
	}

	log := logger.New(
		logger.WithDebug(opts.Debug || cfg.Log.Debug),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithPretty(!cfg.Log.JSON),
		logger.WithWriter(logWriter),
	)

	hist, err := history.Open(ctx, cfg.History, opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	storeOpts := []chat.StoreOption{chat.WithLogger(log)}
	if hist != nil {
		storeOpts = append(storeOpts, chat.WithPersister(hist))
	}
	store := chat.NewStore(storeOpts...)

	if hist != nil {
		for _, track := range []chat.Track{chat.TrackStandard, chat.TrackResearch} {
			msgs, err := hist.LoadTrack(track)
			if err != nil {
				hist.Close()
				return nil, fmt.Errorf("restoring %s history: %w", track, err)
			}
			store.Restore(track, msgs)
		}
	}

	creds, err := credentials.NewManager(opts.ConfigDir)
	if err != nil {
		if hist != nil {
			hist.Close()
		}
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	workers, err := worker.NewPool(&worker.Config{Logger: log})
	if err != nil {
		if hist != nil {
			hist.Close()
		}
		return nil, fmt.Errorf("starting worker pool: %w", err)
	}

	var events eventstream.Publisher
	if cfg.Events.Enabled {
		events, err = kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		})
		if err != nil {
			workers.Close()
			if hist != nil {
				hist.Close()
			}
			return nil, fmt.Errorf("configuring event stream: %w", err)
		}
	}

	var httpClient *http.Client
	if cfg.Backend.TimeoutSeconds > 0 {
		httpClient = &http.Client{
			Timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
		}
	}

	cli, err := client.New(client.Config{
		BaseURL:       cfg.Backend.URL,
		ChatPath:      cfg.Backend.ChatPath,
		StreamPath:    cfg.Backend.StreamPath,
		DeeperPath:    cfg.Backend.DeeperPath,
		FeedbackPath:  cfg.Backend.FeedbackPath,
		Request:       cfg.Request,
		HTTPClient:    httpClient,
		Tokens:        creds.Source(credentials.DefaultBackend),
		QuotaObserver: opts.Quota,
		Events:        events,
		Workers:       workers,
		Version:       utils.Version,
	}, identity.NewFileProvider(opts.ConfigDir), store, log)
	if err != nil {
		if events != nil {
			events.Close()
		}
		workers.Close()
		if hist != nil {
			hist.Close()
		}
		return nil, err
	}

	return &App{
		Config:  cfg,
		Logger:  log,
		Store:   store,
		Client:  cli,
		History: hist,
		Creds:   creds,
		workers: workers,
		events:  events,
	}, nil
}

// Close drains background work and releases the history store. Safe to call
// once per App.
func (a *App) Close() {
	a.workers.Close()

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.Logger.Warn("closing event publisher", "error", err)
		}
	}

	if a.History != nil {
		if err := a.History.Close(); err != nil {
			a.Logger.Warn("closing history store", "error", err)
		}
	}
}
