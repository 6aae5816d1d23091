package sse

import (
	"errors"
	"io"
	"log/slog"

	"github.com/glosshq/gloss/pkg/logger"
)

// readChunkSize is the transport read size. Small enough that framing across
// chunk boundaries is exercised constantly in production, large enough not
// to matter for throughput at chat-response volumes.
const readChunkSize = 4 * 1024

// Reader decodes SSE events from a raw byte stream.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
//          │ chunks
//          ▼
// ┌──────────────────┐
// │    LineFramer    │
// └──────────────────┘
//          │ lines
//          ▼
// ┌──────────────────┐
// │     Decoder      │
// └──────────────────┘
//          │
//          ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
//
// The Reader makes no assumptions about where chunk boundaries fall: an
// event split across two reads decodes identically to one delivered whole.
type Reader struct {
	src    io.Reader
	framer *LineFramer
	dec    *Decoder
	log    *slog.Logger

	buf   []byte
	queue []Event
	done  bool
}

// NewReader returns a Reader that decodes SSE events from src.
// A nil log discards diagnostics.
func NewReader(src io.Reader, log *slog.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}

	return &Reader{
		src:    src,
		framer: NewLineFramer(),
		dec:    NewDecoder(log),
		log:    log,
		buf:    make([]byte, readChunkSize),
	}
}

// Next returns the next decoded SSE event. It blocks until a complete event
// is available. Next returns nil, nil when the source is exhausted; any
// partial line buffered at that point is discarded, never decoded.
func (r *Reader) Next() (*Event, error) {
	for {
		if len(r.queue) > 0 {
			ev := r.queue[0]
			r.queue = r.queue[1:]
			return &ev, nil
		}

		if r.done {
			return nil, nil
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			for _, line := range r.framer.Feed(r.buf[:n]) {
				if ev, ok := r.dec.Decode(line); ok {
					r.queue = append(r.queue, ev)
				}
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}

			if tail := r.framer.Pending(); tail != "" {
				r.log.Debug("discarding partial line at stream end", "bytes", len(tail))
			}
			r.done = true
		}
	}
}
