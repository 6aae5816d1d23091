package sse

import "strings"

// LineFramer splits an arbitrary byte stream into newline-delimited lines,
// carrying a partial tail across chunk boundaries. Feeding the same byte
// stream through any sequence of chunk splits yields the same line sequence.
//
// A trailing '\r' is trimmed from each line so CRLF streams frame identically
// to LF streams. Empty lines are emitted like any other line; the decoder
// ignores them.
type LineFramer struct {
	partial string
}

// NewLineFramer returns a framer with no buffered partial line.
func NewLineFramer() *LineFramer {
	return &LineFramer{}
}

// Feed appends chunk to any buffered partial line and returns all complete
// lines found. The segment after the last newline is retained and prepended
// to the next chunk.
func (f *LineFramer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	buf := f.partial + string(chunk)

	var lines []string
	for {
		i := strings.IndexByte(buf, '\n')
		if i < 0 {
			break
		}

		lines = append(lines, strings.TrimSuffix(buf[:i], "\r"))
		buf = buf[i+1:]
	}

	f.partial = buf
	return lines
}

// Pending returns the buffered partial line, if any. At end of input a
// non-empty partial is never a complete event; callers discard it.
func (f *LineFramer) Pending() string {
	return f.partial
}
