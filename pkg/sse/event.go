// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// decoder for the gloss client. It is designed to parse the `event:`/`data:`
// line pairs the gloss backend emits from a chunked byte stream, tolerating
// arbitrary chunk boundaries mid-line.
//
// This package intentionally does NOT implement the full SSE specification:
// there is no id/retry field handling and no multi-line data accumulation,
// because the backend never emits them. Blank lines carry no meaning here;
// only line prefixes do.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "encoding/json"

// Event represents a single decoded SSE event: one `data:` line paired with
// the `event:` line immediately preceding it.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means no event line preceded the data line; consumers
	// must treat such events as unknown and ignore them.
	Type string

	// Data is the raw JSON payload from the "data:" field. It is guaranteed
	// to be syntactically valid JSON; events with malformed payloads are
	// dropped by the decoder before they reach consumers.
	Data json.RawMessage
}

// Event types emitted by the gloss backend on the streaming endpoints.
const (
	TypeConnected = "connected"
	TypeOutline   = "outline"
	TypeStatus    = "status"
	TypeAnswer    = "answer"
	TypeDone      = "done"
	TypeError     = "error"
	TypeAnalysis  = "analysis"
)
