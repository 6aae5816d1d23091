package export_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/export"
)

var _ = Describe("Render", func() {
	conversation := []chat.Message{
		{
			Role:      chat.RoleUser,
			Content:   "What did the study find?",
			Timestamp: time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC),
			Mode:      chat.ModeResearch,
		},
		{
			Role:       chat.RoleAssistant,
			Content:    "The study found X.",
			Timestamp:  time.Date(2026, 8, 24, 10, 1, 0, 0, time.UTC),
			Mode:       chat.ModeResearch,
			Confidence: chat.Float(85),
			Outline:    []string{"Key findings", "Limitations"},
			Sources: []chat.Source{
				{Title: "The Study", URL: "https://example.org/study", Excerpt: "We measured X.", Score: 0.92},
			},
			DeeperAnalysis: "The methodology relies on Y.",
		},
	}

	It("opens with a TOML frontmatter block", func() {
		doc, err := export.Render(chat.TrackResearch, conversation, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())

		Expect(doc).To(HavePrefix("+++\n"))
		Expect(doc).To(ContainSubstring(`track = "research"`))
		Expect(doc).To(ContainSubstring("messages = 2"))
		Expect(doc).To(ContainSubstring("exported_at = 2026-08-24T12:00:00Z"))
	})

	It("renders one section per message", func() {
		doc, err := export.Render(chat.TrackResearch, conversation, time.Now())
		Expect(err).NotTo(HaveOccurred())

		Expect(doc).To(ContainSubstring("# Conversation: research"))
		Expect(doc).To(ContainSubstring("## [1] user (2026-08-24T10:00:00Z)"))
		Expect(doc).To(ContainSubstring("What did the study find?"))
		Expect(doc).To(ContainSubstring("## [2] assistant (2026-08-24T10:01:00Z)"))
		Expect(doc).To(ContainSubstring("The study found X."))
	})

	It("renders outline, sources, confidence and deeper analysis", func() {
		doc, err := export.Render(chat.TrackResearch, conversation, time.Now())
		Expect(err).NotTo(HaveOccurred())

		Expect(doc).To(ContainSubstring("**Outline**"))
		Expect(doc).To(ContainSubstring("- Key findings"))
		Expect(doc).To(ContainSubstring("**Sources**"))
		Expect(doc).To(ContainSubstring("- The Study (score 0.92): We measured X."))
		Expect(doc).To(ContainSubstring("<https://example.org/study>"))
		Expect(doc).To(ContainSubstring("_Confidence: 85_"))
		Expect(doc).To(ContainSubstring("**Deeper analysis**"))
		Expect(doc).To(ContainSubstring("The methodology relies on Y."))
	})

	It("marks messages without content", func() {
		doc, err := export.Render(chat.TrackStandard, []chat.Message{
			{Role: chat.RoleAssistant},
		}, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc).To(ContainSubstring("_(no content)_"))
	})
})

var _ = Describe("Write", func() {
	It("writes the document to the target path", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "conversation.md")

		err := export.Write(path, chat.TrackStandard, []chat.Message{
			{Role: chat.RoleUser, Content: "Hello"},
			{Role: chat.RoleAssistant, Content: "Hi!"},
		})
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HavePrefix("+++\n"))
		Expect(string(data)).To(ContainSubstring("Hello"))
		Expect(string(data)).To(ContainSubstring("Hi!"))
	})

	It("leaves no temp file behind", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "conversation.md")

		err := export.Write(path, chat.TrackStandard, []chat.Message{
			{Role: chat.RoleUser, Content: "Hello"},
		})
		Expect(err).NotTo(HaveOccurred())

		leftovers, err := filepath.Glob(filepath.Join(dir, ".gloss-export-*"))
		Expect(err).NotTo(HaveOccurred())
		Expect(leftovers).To(BeEmpty())
	})

	It("creates missing parent directories", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "exports", "august", "conversation.md")

		err := export.Write(path, chat.TrackStandard, []chat.Message{
			{Role: chat.RoleUser, Content: "Hello"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(BeAnExistingFile())
	})

	It("refuses to export an empty track", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "conversation.md")

		err := export.Write(path, chat.TrackStandard, nil)
		Expect(err).To(MatchError(export.ErrEmptyTrack))
		Expect(path).NotTo(BeAnExistingFile())
	})
})

var _ = Describe("DefaultFilename", func() {
	It("names the file after the track and day", func() {
		now := time.Date(2026, 8, 24, 18, 30, 0, 0, time.UTC)
		Expect(export.DefaultFilename(chat.TrackResearch, now)).To(Equal("gloss-research-2026-08-24.md"))
		Expect(export.DefaultFilename(chat.TrackStandard, now)).To(Equal("gloss-standard-2026-08-24.md"))
	})
})
