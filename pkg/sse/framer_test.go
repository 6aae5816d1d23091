package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LineFramer", func() {
	var f *LineFramer

	BeforeEach(func() {
		f = NewLineFramer()
	})

	Describe("Feed", func() {
		It("returns a single complete line", func() {
			lines := f.Feed([]byte("event: done\n"))
			Expect(lines).To(Equal([]string{"event: done"}))
			Expect(f.Pending()).To(BeEmpty())
		})

		It("returns multiple lines from one chunk", func() {
			lines := f.Feed([]byte("event: status\ndata: {\"message\":\"thinking\"}\n"))
			Expect(lines).To(Equal([]string{
				"event: status",
				"data: {\"message\":\"thinking\"}",
			}))
		})

		It("carries a partial line across chunk boundaries", func() {
			lines := f.Feed([]byte("event: st"))
			Expect(lines).To(BeEmpty())
			Expect(f.Pending()).To(Equal("event: st"))

			lines = f.Feed([]byte("atus\ndata: {}\n"))
			Expect(lines).To(Equal([]string{"event: status", "data: {}"}))
			Expect(f.Pending()).To(BeEmpty())
		})

		It("trims a trailing carriage return from each line", func() {
			lines := f.Feed([]byte("event: done\r\ndata: {}\r\n"))
			Expect(lines).To(Equal([]string{"event: done", "data: {}"}))
		})

		It("passes empty lines through", func() {
			lines := f.Feed([]byte("event: done\n\ndata: {}\n"))
			Expect(lines).To(Equal([]string{"event: done", "", "data: {}"}))
		})

		It("returns nothing for an empty chunk", func() {
			Expect(f.Feed(nil)).To(BeEmpty())
			Expect(f.Feed([]byte{})).To(BeEmpty())
		})

		It("holds an unterminated final segment instead of emitting it", func() {
			lines := f.Feed([]byte("data: {\"complete\":true}\ndata: {\"partial\""))
			Expect(lines).To(Equal([]string{"data: {\"complete\":true}"}))
			Expect(f.Pending()).To(Equal("data: {\"partial\""))
		})

		It("produces identical lines regardless of chunk boundaries", func() {
			input := "event: outline\r\ndata: {\"outline\":[\"a\",\"b\"]}\n\nevent: done\ndata: {\"sessionId\":\"s1\"}\n"

			whole := NewLineFramer().Feed([]byte(input))

			for split := 1; split < len(input); split++ {
				chunked := NewLineFramer()
				var lines []string
				lines = append(lines, chunked.Feed([]byte(input[:split]))...)
				lines = append(lines, chunked.Feed([]byte(input[split:]))...)
				Expect(lines).To(Equal(whole), "split at byte %d", split)
			}
		})

		It("produces identical lines when fed one byte at a time", func() {
			input := "event: status\ndata: {\"message\":\"ok\"}\n"

			whole := NewLineFramer().Feed([]byte(input))

			var lines []string
			for i := range input {
				lines = append(lines, f.Feed([]byte{input[i]})...)
			}
			Expect(lines).To(Equal(whole))
		})
	})
})
