package credentials

// Credentials represents the stored backend tokens in credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Backends map[string]BackendCredential `toml:"backends"`
}

// BackendCredential holds the bearer token for a single named backend.
type BackendCredential struct {
	Token string `toml:"token"`
}
