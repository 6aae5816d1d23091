package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/glosshq/gloss/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the GLOSS_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (GLOSS_BACKEND_URL, GLOSS_SERVE_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: GLOSS_BACKEND_URL, GLOSS_HISTORY_DRIVER, etc.
	v.SetEnvPrefix("GLOSS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes the effective configuration out of a prepared viper
// instance, so commands see one typed Config after the precedence chain has
// been applied.
func FromViper(v *viper.Viper) *Config {
	brokers := v.GetStringSlice("events.brokers")
	// GLOSS_EVENTS_BROKERS arrives as one comma-separated string.
	if len(brokers) == 1 && strings.Contains(brokers[0], ",") {
		brokers = splitBrokers(brokers[0])
	}

	return &Config{
		Version: v.GetInt("version"),
		Backend: BackendConfig{
			URL:            v.GetString("backend.url"),
			ChatPath:       v.GetString("backend.chat_path"),
			StreamPath:     v.GetString("backend.stream_path"),
			DeeperPath:     v.GetString("backend.deeper_path"),
			FeedbackPath:   v.GetString("backend.feedback_path"),
			TimeoutSeconds: v.GetUint("backend.timeout_seconds"),
		},
		Request: RequestConfig{
			TopK:        v.GetUint("request.top_k"),
			Threshold:   v.GetFloat64("request.threshold"),
			Temperature: v.GetFloat64("request.temperature"),
			MaxTokens:   v.GetUint("request.max_tokens"),
		},
		History: HistoryConfig{
			Driver:      v.GetString("history.driver"),
			SQLitePath:  v.GetString("history.sqlite_path"),
			PostgresURL: v.GetString("history.postgres_url"),
		},
		Events: EventsConfig{
			Enabled: v.GetBool("events.enabled"),
			Brokers: brokers,
			Topic:   v.GetString("events.topic"),
		},
		Serve: ServeConfig{
			Listen:    v.GetString("serve.listen"),
			MCPListen: v.GetString("serve.mcp_listen"),
		},
		Log: LogConfig{
			Debug: v.GetBool("log.debug"),
			JSON:  v.GetBool("log.json"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Backend
	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.chat_path", d.Backend.ChatPath)
	v.SetDefault("backend.stream_path", d.Backend.StreamPath)
	v.SetDefault("backend.deeper_path", d.Backend.DeeperPath)
	v.SetDefault("backend.feedback_path", d.Backend.FeedbackPath)
	v.SetDefault("backend.timeout_seconds", d.Backend.TimeoutSeconds)

	// Request
	v.SetDefault("request.top_k", d.Request.TopK)
	v.SetDefault("request.threshold", d.Request.Threshold)
	v.SetDefault("request.temperature", d.Request.Temperature)
	v.SetDefault("request.max_tokens", d.Request.MaxTokens)

	// History
	v.SetDefault("history.driver", d.History.Driver)
	v.SetDefault("history.sqlite_path", d.History.SQLitePath)
	v.SetDefault("history.postgres_url", d.History.PostgresURL)

	// Events
	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Serve
	v.SetDefault("serve.listen", d.Serve.Listen)
	v.SetDefault("serve.mcp_listen", d.Serve.MCPListen)

	// Log
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)
}
