package sse

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glosshq/gloss/pkg/logger"
)

var _ = Describe("Decoder", func() {
	var d *Decoder

	BeforeEach(func() {
		d = NewDecoder(nil)
	})

	Describe("Decode", func() {
		It("pairs an event line with the following data line", func() {
			_, ok := d.Decode("event: status")
			Expect(ok).To(BeFalse())

			ev, ok := d.Decode("data: {\"message\":\"thinking\"}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(Equal("status"))
			Expect(string(ev.Data)).To(Equal("{\"message\":\"thinking\"}"))
		})

		It("yields an empty type for a data line with no preceding event line", func() {
			ev, ok := d.Decode("data: {\"orphan\":true}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(BeEmpty())
			Expect(string(ev.Data)).To(Equal("{\"orphan\":true}"))
		})

		It("resets the pending type after emitting an event", func() {
			d.Decode("event: done")
			ev, ok := d.Decode("data: {}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(Equal("done"))

			ev, ok = d.Decode("data: {}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(BeEmpty())
		})

		It("lets a later event line replace the pending type", func() {
			d.Decode("event: outline")
			d.Decode("event: status")

			ev, ok := d.Decode("data: {}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(Equal("status"))
		})

		It("trims whitespace around the event type", func() {
			d.Decode("event:  done ")

			ev, ok := d.Decode("data: {}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(Equal("done"))
		})

		It("drops events with malformed JSON payloads", func() {
			d.Decode("event: answer")

			_, ok := d.Decode("data: {not json")
			Expect(ok).To(BeFalse())
		})

		It("resets the pending type when a payload is dropped", func() {
			d.Decode("event: answer")
			_, ok := d.Decode("data: {not json")
			Expect(ok).To(BeFalse())

			// The dropped event must not leak its type onto the next data line.
			ev, ok := d.Decode("data: {\"answer\":\"hi\"}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(BeEmpty())
		})

		It("keeps decoding after a dropped payload", func() {
			d.Decode("event: status")
			_, ok := d.Decode("data: oops")
			Expect(ok).To(BeFalse())

			d.Decode("event: done")
			ev, ok := d.Decode("data: {\"sessionId\":\"s1\"}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(Equal("done"))
		})

		It("logs a warning when dropping a malformed payload", func() {
			var buf bytes.Buffer
			d = NewDecoder(logger.New(logger.WithWriter(&buf)))

			d.Decode("event: answer")
			d.Decode("data: {broken")

			Expect(buf.String()).To(ContainSubstring("dropping SSE event"))
			Expect(buf.String()).To(ContainSubstring("answer"))
		})

		It("ignores blank lines", func() {
			d.Decode("event: done")

			_, ok := d.Decode("")
			Expect(ok).To(BeFalse())

			// Pending type survives the blank line.
			ev, ok := d.Decode("data: {}")
			Expect(ok).To(BeTrue())
			Expect(ev.Type).To(Equal("done"))
		})

		It("ignores unrecognized line prefixes", func() {
			_, ok := d.Decode(": keep-alive comment")
			Expect(ok).To(BeFalse())

			_, ok = d.Decode("retry: 3000")
			Expect(ok).To(BeFalse())

			_, ok = d.Decode("random noise")
			Expect(ok).To(BeFalse())
		})

		It("ignores event and data lines missing the prefix space", func() {
			_, ok := d.Decode("event:done")
			Expect(ok).To(BeFalse())

			_, ok = d.Decode("data:{}")
			Expect(ok).To(BeFalse())
		})

		It("accepts any valid JSON payload shape", func() {
			ev, ok := d.Decode("data: [1,2,3]")
			Expect(ok).To(BeTrue())
			Expect(string(ev.Data)).To(Equal("[1,2,3]"))

			ev, ok = d.Decode("data: \"plain string\"")
			Expect(ok).To(BeTrue())
			Expect(string(ev.Data)).To(Equal("\"plain string\""))

			ev, ok = d.Decode("data: null")
			Expect(ok).To(BeTrue())
			Expect(string(ev.Data)).To(Equal("null"))
		})
	})
})
