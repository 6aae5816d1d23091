package sse

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/glosshq/gloss/pkg/logger"
)

const (
	eventPrefix = "event: "
	dataPrefix  = "data: "
)

// Decoder groups consecutive `event:`/`data:` line pairs into discrete
// events. It is stateful: an `event:` line stores a pending event type that
// the next `data:` line consumes. Lines with any other prefix, including
// blank lines, are ignored.
type Decoder struct {
	pending string
	log     *slog.Logger
}

// NewDecoder returns a decoder that reports dropped events through log.
// A nil log discards diagnostics.
func NewDecoder(log *slog.Logger) *Decoder {
	if log == nil {
		log = logger.Nop()
	}

	return &Decoder{log: log}
}

// Decode consumes one framed line. It returns an Event and true when the
// line completes an event, false otherwise.
//
// A `data:` line with a malformed JSON payload drops the event: a warning is
// logged and the pending event type is reset, but the stream itself is not
// failed. A `data:` line with no preceding `event:` line yields an event of
// empty type.
func (d *Decoder) Decode(line string) (Event, bool) {
	switch {
	case strings.HasPrefix(line, eventPrefix):
		d.pending = strings.TrimSpace(line[len(eventPrefix):])
		return Event{}, false

	case strings.HasPrefix(line, dataPrefix):
		payload := line[len(dataPrefix):]
		eventType := d.pending
		d.pending = ""

		if !json.Valid([]byte(payload)) {
			d.log.Warn("dropping SSE event with malformed payload", "type", eventType)
			return Event{}, false
		}

		return Event{Type: eventType, Data: json.RawMessage(payload)}, true

	default:
		return Event{}, false
	}
}
