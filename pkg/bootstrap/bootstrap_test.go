package bootstrap_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glosshq/gloss/pkg/bootstrap"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/history"
)

var _ = Describe("Load", func() {
	var (
		ctx context.Context
		dir string
		cfg *config.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		cfg = config.NewDefaultConfig()
	})

	It("assembles an app with the default config", func() {
		app, err := bootstrap.Load(ctx, bootstrap.Options{ConfigDir: dir, Config: cfg})
		Expect(err).NotTo(HaveOccurred())
		defer app.Close()

		Expect(app.Client).NotTo(BeNil())
		Expect(app.Store).NotTo(BeNil())
		Expect(app.History).NotTo(BeNil())
		Expect(app.Config.Backend.URL).To(Equal("http://localhost:8787"))
	})

	It("leaves history nil when the driver is none", func() {
		cfg.History.Driver = "none"

		app, err := bootstrap.Load(ctx, bootstrap.Options{ConfigDir: dir, Config: cfg})
		Expect(err).NotTo(HaveOccurred())
		defer app.Close()

		Expect(app.History).To(BeNil())
		Expect(app.Store.Len(chat.TrackResearch)).To(BeZero())
	})

	It("restores persisted tracks into the store", func() {
		hist, err := history.Open(ctx, cfg.History, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(hist.SaveTrack(chat.TrackResearch, []chat.Message{
			chat.NewUserMessage("what does the article claim?", chat.ModeResearch),
		})).To(Succeed())
		Expect(hist.Close()).To(Succeed())

		app, err := bootstrap.Load(ctx, bootstrap.Options{ConfigDir: dir, Config: cfg})
		Expect(err).NotTo(HaveOccurred())
		defer app.Close()

		msgs := app.Store.Messages(chat.TrackResearch)
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Content).To(Equal("what does the article claim?"))
	})

	It("loads config from the dot directory when none is supplied", func() {
		app, err := bootstrap.Load(ctx, bootstrap.Options{ConfigDir: dir})
		Expect(err).NotTo(HaveOccurred())
		defer app.Close()

		Expect(app.Config).NotTo(BeNil())
		Expect(app.Config.History.Driver).To(Equal("file"))
	})

	It("rejects enabled events without brokers", func() {
		cfg.Events.Enabled = true

		_, err := bootstrap.Load(ctx, bootstrap.Options{ConfigDir: dir, Config: cfg})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("event stream"))
	})
})
