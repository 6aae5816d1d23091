// Package identity provides the stable client identifier sent with every
// backend request.
package identity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/glosshq/gloss/pkg/dotdir"
)

// Provider supplies the stable per-installation client identifier. Hosts
// inject an implementation at client construction; the client never caches
// identity in package-level state.
type Provider interface {
	ClientID() (string, error)
}

const stateFile = "identity.json"

type state struct {
	ClientID string `json:"client_id"`
}

// FileProvider persists a generated UUID under the .gloss/ directory and
// returns the same value on every subsequent call, across processes.
type FileProvider struct {
	dots        *dotdir.Manager
	overrideDir string

	mu     sync.Mutex
	cached string
}

// NewFileProvider creates a FileProvider rooted at the resolved .gloss/
// directory. If overrideDir is non-empty it is used instead of the default
// resolution.
func NewFileProvider(overrideDir string) *FileProvider {
	return &FileProvider{
		dots:        dotdir.NewManager(),
		overrideDir: overrideDir,
	}
}

func (p *FileProvider) ClientID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached, nil
	}

	var s state
	found, err := p.dots.LoadState(p.overrideDir, stateFile, &s)
	if err != nil {
		return "", fmt.Errorf("loading client identity: %w", err)
	}
	if found && s.ClientID != "" {
		p.cached = s.ClientID
		return p.cached, nil
	}

	s.ClientID = uuid.New().String()
	if err := p.dots.SaveState(p.overrideDir, stateFile, &s); err != nil {
		return "", fmt.Errorf("saving client identity: %w", err)
	}

	p.cached = s.ClientID
	return p.cached, nil
}

// Static returns a Provider that always reports the given ID. Useful for
// tests and for hosts that manage identity themselves.
func Static(id string) Provider {
	return staticProvider(id)
}

type staticProvider string

func (s staticProvider) ClientID() (string, error) {
	return string(s), nil
}
