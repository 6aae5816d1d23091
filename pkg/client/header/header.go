// Package header assembles the headers gloss attaches to every backend
// request: the JSON content type, the stable client identifier, and the
// bearer token when one is available.
package header

import (
	"net/http"
	"strings"
)

// ClientIDHeader carries the stable per-installation client identifier.
const ClientIDHeader = "X-Client-ID"

// Apply sets the standard request headers on req. token may be empty for
// anonymous requests, in which case no Authorization header is sent.
func Apply(req *http.Request, clientID, token string) {
	req.Header.Set("Content-Type", "application/json")

	if clientID != "" {
		req.Header.Set(ClientIDHeader, clientID)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Redacted flattens h into a loggable map with credential values masked.
func Redacted(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if strings.EqualFold(k, "Authorization") {
			out[k] = "Bearer [redacted]"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}

	return out
}
