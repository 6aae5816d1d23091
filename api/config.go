// Package api implements the gloss development backend: a fiber server
// speaking the chat wire protocol with scripted answers. It performs no
// retrieval or generation — responses are deterministic so the client,
// demos, and integration tests have a real backend to talk to.
package api

import (
	"net/http"
	"time"
)

// DefaultListenAddr is where the development backend listens when the
// config leaves the address empty.
const DefaultListenAddr = ":8787"

// defaultInitialQuota is the per-server research quota when the config
// leaves it zero.
const defaultInitialQuota = 25

// Config is the development backend configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g. ":8787").
	ListenAddr string

	// InitialQuota is the number of answers served before the backend
	// starts rejecting with 429, exercising the client's quota paths.
	InitialQuota int

	// StreamDelay paces SSE events so streaming is visible in demos.
	// Zero streams as fast as the pipe drains.
	StreamDelay time.Duration

	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}
