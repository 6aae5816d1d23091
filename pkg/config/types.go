package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent gloss configuration stored as config.toml
// in the .gloss/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Backend BackendConfig `toml:"backend"`
	Request RequestConfig `toml:"request"`
	History HistoryConfig `toml:"history"`
	Events  EventsConfig  `toml:"events"`
	Serve   ServeConfig   `toml:"serve"`
	Log     LogConfig     `toml:"log"`
}

// BackendConfig holds the target backend URL and its endpoint paths.
type BackendConfig struct {
	URL            string `toml:"url,omitempty"`
	ChatPath       string `toml:"chat_path,omitempty"`
	StreamPath     string `toml:"stream_path,omitempty"`
	DeeperPath     string `toml:"deeper_path,omitempty"`
	FeedbackPath   string `toml:"feedback_path,omitempty"`
	TimeoutSeconds uint   `toml:"timeout_seconds,omitempty"`
}

// RequestConfig holds the retrieval parameters sent with standard
// (non-streaming) questions.
type RequestConfig struct {
	TopK        uint    `toml:"top_k,omitempty"`
	Threshold   float64 `toml:"threshold,omitempty"`
	Temperature float64 `toml:"temperature,omitempty"`
	MaxTokens   uint    `toml:"max_tokens,omitempty"`
}

// HistoryConfig selects where conversation snapshots persist.
type HistoryConfig struct {
	// Driver is one of "file", "sqlite", "postgres", or "none".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// EventsConfig holds the optional turn-completed event stream settings.
type EventsConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// ServeConfig holds listen addresses for the local development backend and
// the MCP server.
type ServeConfig struct {
	Listen    string `toml:"listen,omitempty"`
	MCPListen string `toml:"mcp_listen,omitempty"`
}

// LogConfig holds logging settings shared by all commands.
type LogConfig struct {
	Debug bool `toml:"debug,omitempty"`
	JSON  bool `toml:"json,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"backend.url": {
		get: func(c *Config) string { return c.Backend.URL },
		set: func(c *Config, v string) error { c.Backend.URL = v; return nil },
	},
	"backend.chat_path": {
		get: func(c *Config) string { return c.Backend.ChatPath },
		set: func(c *Config, v string) error { c.Backend.ChatPath = v; return nil },
	},
	"backend.stream_path": {
		get: func(c *Config) string { return c.Backend.StreamPath },
		set: func(c *Config, v string) error { c.Backend.StreamPath = v; return nil },
	},
	"backend.deeper_path": {
		get: func(c *Config) string { return c.Backend.DeeperPath },
		set: func(c *Config, v string) error { c.Backend.DeeperPath = v; return nil },
	},
	"backend.feedback_path": {
		get: func(c *Config) string { return c.Backend.FeedbackPath },
		set: func(c *Config, v string) error { c.Backend.FeedbackPath = v; return nil },
	},
	"backend.timeout_seconds": {
		get: func(c *Config) string {
			if c.Backend.TimeoutSeconds == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Backend.TimeoutSeconds), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for backend.timeout_seconds: %w", err)
			}
			c.Backend.TimeoutSeconds = uint(n)
			return nil
		},
	},
	"request.top_k": {
		get: func(c *Config) string {
			if c.Request.TopK == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Request.TopK), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for request.top_k: %w", err)
			}
			c.Request.TopK = uint(n)
			return nil
		},
	},
	"request.threshold": {
		get: func(c *Config) string {
			if c.Request.Threshold == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Request.Threshold, 'g', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for request.threshold: %w", err)
			}
			c.Request.Threshold = f
			return nil
		},
	},
	"request.temperature": {
		get: func(c *Config) string {
			if c.Request.Temperature == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Request.Temperature, 'g', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for request.temperature: %w", err)
			}
			c.Request.Temperature = f
			return nil
		},
	},
	"request.max_tokens": {
		get: func(c *Config) string {
			if c.Request.MaxTokens == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Request.MaxTokens), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for request.max_tokens: %w", err)
			}
			c.Request.MaxTokens = uint(n)
			return nil
		},
	},
	"history.driver": {
		get: func(c *Config) string { return c.History.Driver },
		set: func(c *Config, v string) error { c.History.Driver = v; return nil },
	},
	"history.sqlite_path": {
		get: func(c *Config) string { return c.History.SQLitePath },
		set: func(c *Config, v string) error { c.History.SQLitePath = v; return nil },
	},
	"history.postgres_url": {
		get: func(c *Config) string { return c.History.PostgresURL },
		set: func(c *Config, v string) error { c.History.PostgresURL = v; return nil },
	},
	"events.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Events.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for events.enabled: %w", err)
			}
			c.Events.Enabled = b
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitBrokers(v)
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"serve.listen": {
		get: func(c *Config) string { return c.Serve.Listen },
		set: func(c *Config, v string) error { c.Serve.Listen = v; return nil },
	},
	"serve.mcp_listen": {
		get: func(c *Config) string { return c.Serve.MCPListen },
		set: func(c *Config, v string) error { c.Serve.MCPListen = v; return nil },
	},
	"log.debug": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Debug) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.debug: %w", err)
			}
			c.Log.Debug = b
			return nil
		},
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.json: %w", err)
			}
			c.Log.JSON = b
			return nil
		},
	},
}

// splitBrokers parses a comma-separated broker list, trimming whitespace and
// dropping empty entries.
func splitBrokers(v string) []string {
	parts := strings.Split(v, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	return brokers
}
