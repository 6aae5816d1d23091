// Package credentials manages bearer tokens for gloss backends.
//
// Tokens live in credentials.toml inside the .gloss/ directory with 0600
// permissions. Requests are anonymous until a token is stored; the client
// attaches Authorization headers only when a token source yields one.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/glosshq/gloss/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// DefaultBackend is the backend name used when none is specified.
	DefaultBackend = "default"

	// EnvToken overrides any stored token when set.
	EnvToken = "GLOSS_TOKEN"
)

// Manager manages reading and writing credentials.toml in the .gloss/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .gloss/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:  currentVersion,
				Backends: make(map[string]BackendCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Backends == nil {
		creds.Backends = make(map[string]BackendCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetToken stores a bearer token for the given backend.
func (m *Manager) SetToken(backend, token string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Backends[backend] = BackendCredential{Token: token}

	return m.Save(creds)
}

// Token returns the stored bearer token for the given backend.
// Returns an empty string if no token is stored.
func (m *Manager) Token(backend string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	bc, ok := creds.Backends[backend]
	if !ok {
		return "", nil
	}

	return bc.Token, nil
}

// RemoveToken deletes the stored credential for a backend.
func (m *Manager) RemoveToken(backend string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Backends, backend)

	return m.Save(creds)
}

// ListBackends returns the names of backends that have stored credentials.
func (m *Manager) ListBackends() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	backends := make([]string, 0, len(creds.Backends))
	for name := range creds.Backends {
		backends = append(backends, name)
	}

	sort.Strings(backends)

	return backends, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}
