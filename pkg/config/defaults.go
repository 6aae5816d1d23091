package config

const (
	defaultBackendURL   = "http://localhost:8787"
	defaultChatPath     = "/api/chat"
	defaultStreamPath   = "/api/chat/stream"
	defaultDeeperPath   = "/api/chat/deeper"
	defaultFeedbackPath = "/api/feedback"
	defaultTimeout      = 300

	defaultTopK        = 5
	defaultThreshold   = 0.5
	defaultTemperature = 0.3
	defaultMaxTokens   = 500

	defaultHistoryDriver = "file"

	defaultEventsTopic = "gloss.turns"

	defaultServeListen = ":8787"
	defaultMCPListen   = ":8090"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Backend: BackendConfig{
			URL:            defaultBackendURL,
			ChatPath:       defaultChatPath,
			StreamPath:     defaultStreamPath,
			DeeperPath:     defaultDeeperPath,
			FeedbackPath:   defaultFeedbackPath,
			TimeoutSeconds: defaultTimeout,
		},
		Request: RequestConfig{
			TopK:        defaultTopK,
			Threshold:   defaultThreshold,
			Temperature: defaultTemperature,
			MaxTokens:   defaultMaxTokens,
		},
		History: HistoryConfig{
			Driver: defaultHistoryDriver,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
		Serve: ServeConfig{
			Listen:    defaultServeListen,
			MCPListen: defaultMCPListen,
		},
	}
}
