package sse

import (
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// dribbleReader returns one byte per Read call, forcing every possible chunk
// boundary through the framer.
type dribbleReader struct {
	data string
	pos  int
}

func (d *dribbleReader) Read(p []byte) (int, error) {
	if d.pos >= len(d.data) {
		return 0, io.EOF
	}

	p[0] = d.data[d.pos]
	d.pos++
	return 1, nil
}

// failingReader yields its data, then a read error.
type failingReader struct {
	data string
	err  error
	read bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.read {
		f.read = true
		n := copy(p, f.data)
		return n, nil
	}

	return 0, f.err
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		Context("with a well-formed stream", func() {
			It("decodes events in arrival order", func() {
				input := "event: connected\ndata: {}\n\n" +
					"event: status\ndata: {\"message\":\"thinking\"}\n\n" +
					"event: done\ndata: {\"sessionId\":\"s1\"}\n\n"
				r := NewReader(strings.NewReader(input), nil)

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal(TypeConnected))

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal(TypeStatus))
				Expect(string(ev.Data)).To(Equal("{\"message\":\"thinking\"}"))

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal(TypeDone))
				Expect(string(ev.Data)).To(Equal("{\"sessionId\":\"s1\"}"))

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("returns nil, nil on every call after exhaustion", func() {
				r := NewReader(strings.NewReader("event: done\ndata: {}\n"), nil)

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal(TypeDone))

				for i := 0; i < 3; i++ {
					ev, err = r.Next()
					Expect(err).NotTo(HaveOccurred())
					Expect(ev).To(BeNil())
				}
			})
		})

		Context("with pathological chunking", func() {
			It("decodes a byte-at-a-time stream identically to a whole one", func() {
				input := "event: outline\ndata: {\"outline\":[\"intro\",\"body\"],\"model\":\"gpt-4o\"}\n\n" +
					"event: answer\ndata: {\"answer\":\"Hello there\",\"model\":\"gpt-4o\"}\n\n" +
					"event: done\ndata: {\"sessionId\":\"s1\",\"canGoDeeper\":true}\n\n"

				whole := NewReader(strings.NewReader(input), nil)
				dribbled := NewReader(&dribbleReader{data: input}, nil)

				for {
					wev, werr := whole.Next()
					dev, derr := dribbled.Next()

					Expect(werr).NotTo(HaveOccurred())
					Expect(derr).NotTo(HaveOccurred())
					Expect(dev).To(Equal(wev))

					if wev == nil {
						break
					}
				}
			})

			It("decodes an event/data pair split across transport chunks", func() {
				r := NewReader(io.MultiReader(
					strings.NewReader("event: do"),
					strings.NewReader("ne\ndata: {\"sess"),
					strings.NewReader("ionId\":\"s1\"}\n"),
				), nil)

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal(TypeDone))
				Expect(string(ev.Data)).To(Equal("{\"sessionId\":\"s1\"}"))
			})
		})

		Context("with malformed input", func() {
			It("skips dropped events and keeps decoding", func() {
				input := "event: status\ndata: {broken\n" +
					"event: done\ndata: {\"sessionId\":\"s1\"}\n"
				r := NewReader(strings.NewReader(input), nil)

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal(TypeDone))
			})

			It("discards a partial line at end of input", func() {
				// The data line never saw its newline, so it must not decode.
				r := NewReader(strings.NewReader("event: done\ndata: {\"sessionId\":\"s1\"}"), nil)

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})
		})

		Context("with transport failures", func() {
			It("propagates read errors", func() {
				readErr := errors.New("connection reset")
				r := NewReader(&failingReader{data: "event: status\ndata: {}\n", err: readErr}, nil)

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal(TypeStatus))

				_, err = r.Next()
				Expect(err).To(MatchError(readErr))
			})
		})
	})
})
