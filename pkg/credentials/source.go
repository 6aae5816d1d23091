package credentials

import "os"

// Source yields the token for one named backend on demand. It satisfies the
// client's TokenProvider contract: requests carry a bearer header only while
// a token is available, so logging out takes effect without rebuilding the
// client.
type Source struct {
	mgr     *Manager
	backend string
}

// Source returns a token source bound to the named backend.
func (m *Manager) Source(backend string) *Source {
	return &Source{mgr: m, backend: backend}
}

// Token returns the current token and whether one is available. The
// GLOSS_TOKEN environment variable takes precedence over the stored value.
func (s *Source) Token() (string, bool) {
	if env := os.Getenv(EnvToken); env != "" {
		return env, true
	}

	tok, err := s.mgr.Token(s.backend)
	if err != nil || tok == "" {
		return "", false
	}

	return tok, true
}
