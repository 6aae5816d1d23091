package feedbackcmder

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/history/file"
)

var _ = Describe("Feedback Command", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "feedback-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewFeedbackCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := NewFeedbackCmd()
			Expect(cmd.Use).To(Equal("feedback"))
			Expect(cmd.Short).NotTo(BeEmpty())
		})

		It("has --up and --down flags", func() {
			cmd := NewFeedbackCmd()
			Expect(cmd.Flags().Lookup("up")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("down")).NotTo(BeNil())
		})
	})

	Describe("running", func() {
		It("requires a direction", func() {
			cmd := NewFeedbackCmd()
			cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
			cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
			cmd.SetArgs([]string{"--config-dir", tmpDir})

			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("--up or --down"))
		})

		It("rejects voting with no saved answer", func() {
			cmd := NewFeedbackCmd()
			cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
			cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
			cmd.SetArgs([]string{"--up", "--config-dir", tmpDir})

			err := cmd.Execute()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no saved answer"))
		})

		It("queues a vote on the last saved answer", func() {
			store := file.New(tmpDir)
			Expect(store.SaveTrack(chat.TrackStandard, []chat.Message{
				{Role: chat.RoleUser, Content: "What changed?"},
				{Role: chat.RoleAssistant, Content: "The method changed."},
			})).To(Succeed())

			cmd := NewFeedbackCmd()
			cmd.PersistentFlags().String("config-dir", "", "Override path to .gloss/ config directory")
			cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
			cmd.SetArgs([]string{"--up", "--config-dir", tmpDir})

			// Delivery is fire-and-forget, so the command succeeds even
			// with no backend listening.
			Expect(cmd.Execute()).To(Succeed())
		})
	})

	Describe("lastExchange", func() {
		It("pairs the answer with the closest preceding question", func() {
			question, answer, found := lastExchange([]chat.Message{
				{Role: chat.RoleUser, Content: "first?"},
				{Role: chat.RoleAssistant, Content: "first answer"},
				{Role: chat.RoleUser, Content: "second?"},
				{Role: chat.RoleAssistant, Content: "second answer"},
			})

			Expect(found).To(BeTrue())
			Expect(question).To(Equal("second?"))
			Expect(answer.Content).To(Equal("second answer"))
		})

		It("skips streaming answers", func() {
			question, answer, found := lastExchange([]chat.Message{
				{Role: chat.RoleUser, Content: "settled?"},
				{Role: chat.RoleAssistant, Content: "settled answer"},
				{Role: chat.RoleUser, Content: "in flight?"},
				{Role: chat.RoleAssistant, Content: "partial", IsStreaming: true},
			})

			Expect(found).To(BeTrue())
			Expect(question).To(Equal("settled?"))
			Expect(answer.Content).To(Equal("settled answer"))
		})

		It("reports no exchange on an empty track", func() {
			_, _, found := lastExchange(nil)
			Expect(found).To(BeFalse())
		})
	})
})
