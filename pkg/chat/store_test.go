package chat_test

import (
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/glosshq/gloss/pkg/chat"
)

// fakePersister records snapshot saves and clears per track.
type fakePersister struct {
	mu     sync.Mutex
	saves  map[chat.Track][][]chat.Message
	clears []chat.Track
	err    error
}

func newFakePersister() *fakePersister {
	return &fakePersister{saves: make(map[chat.Track][][]chat.Message)}
}

func (f *fakePersister) SaveTrack(track chat.Track, msgs []chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.saves[track] = append(f.saves[track], msgs)
	return nil
}

func (f *fakePersister) ClearTrack(track chat.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.clears = append(f.clears, track)
	return nil
}

func (f *fakePersister) saveCount(track chat.Track) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves[track])
}

func (f *fakePersister) lastSave(track chat.Track) []chat.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	saves := f.saves[track]
	if len(saves) == 0 {
		return nil
	}

	return saves[len(saves)-1]
}

var _ = Describe("Message constructors", func() {
	It("builds a user message stamped with the current time", func() {
		msg := chat.NewUserMessage("What is attention?", chat.ModeResearch)
		Expect(msg.Role).To(Equal(chat.RoleUser))
		Expect(msg.Content).To(Equal("What is attention?"))
		Expect(msg.Mode).To(Equal(chat.ModeResearch))
		Expect(msg.Timestamp).NotTo(BeZero())
		Expect(msg.IsStreaming).To(BeFalse())
	})

	It("builds a streaming placeholder", func() {
		msg := chat.NewStreamingPlaceholder("Analyzing article...")
		Expect(msg.Role).To(Equal(chat.RoleAssistant))
		Expect(msg.Content).To(BeEmpty())
		Expect(msg.Mode).To(Equal(chat.ModeResearch))
		Expect(msg.IsStreaming).To(BeTrue())
		Expect(msg.StreamingStatus).To(Equal("Analyzing article..."))
	})
})

var _ = Describe("Store", func() {
	var store *chat.Store

	BeforeEach(func() {
		store = chat.NewStore()
	})

	Describe("Append", func() {
		It("returns sequential indices", func() {
			Expect(store.Append(chat.TrackResearch, chat.NewUserMessage("one", chat.ModeResearch))).To(Equal(0))
			Expect(store.Append(chat.TrackResearch, chat.NewUserMessage("two", chat.ModeResearch))).To(Equal(1))
			Expect(store.Len(chat.TrackResearch)).To(Equal(2))
		})

		It("keeps tracks independent", func() {
			store.Append(chat.TrackStandard, chat.NewUserMessage("standard q", chat.ModeRegular))
			Expect(store.Append(chat.TrackResearch, chat.NewUserMessage("research q", chat.ModeResearch))).To(Equal(0))

			Expect(store.Len(chat.TrackStandard)).To(Equal(1))
			Expect(store.Len(chat.TrackResearch)).To(Equal(1))
			Expect(store.Messages(chat.TrackStandard)[0].Content).To(Equal("standard q"))
			Expect(store.Messages(chat.TrackResearch)[0].Content).To(Equal("research q"))
		})
	})

	Describe("Patch", func() {
		It("merges only the fields set on the patch", func() {
			idx := store.Append(chat.TrackResearch, chat.NewStreamingPlaceholder("Analyzing article..."))

			ok := store.Patch(chat.TrackResearch, idx, chat.MessagePatch{
				Content:     chat.String("partial answer"),
				Model:       chat.String("gpt-4o"),
				IsStreaming: chat.Bool(false),
			})
			Expect(ok).To(BeTrue())

			msg, found := store.Message(chat.TrackResearch, idx)
			Expect(found).To(BeTrue())
			Expect(msg.Content).To(Equal("partial answer"))
			Expect(msg.Model).To(Equal("gpt-4o"))
			Expect(msg.IsStreaming).To(BeFalse())
			// Untouched fields survive.
			Expect(msg.Role).To(Equal(chat.RoleAssistant))
			Expect(msg.StreamingStatus).To(Equal("Analyzing article..."))
		})

		It("is a no-op for an index beyond the sequence", func() {
			store.Append(chat.TrackResearch, chat.NewUserMessage("q", chat.ModeResearch))

			Expect(store.Patch(chat.TrackResearch, 5, chat.MessagePatch{Content: chat.String("x")})).To(BeFalse())
			Expect(store.Patch(chat.TrackResearch, -1, chat.MessagePatch{Content: chat.String("x")})).To(BeFalse())
			Expect(store.Messages(chat.TrackResearch)[0].Content).To(Equal("q"))
		})

		It("is a no-op for an index made stale by Clear", func() {
			idx := store.Append(chat.TrackResearch, chat.NewUserMessage("q", chat.ModeResearch))
			store.Clear(chat.TrackResearch)

			Expect(store.Patch(chat.TrackResearch, idx, chat.MessagePatch{Content: chat.String("x")})).To(BeFalse())
			Expect(store.Len(chat.TrackResearch)).To(Equal(0))
		})

		It("never reassigns a session identifier", func() {
			idx := store.Append(chat.TrackResearch, chat.NewStreamingPlaceholder("..."))

			store.Patch(chat.TrackResearch, idx, chat.MessagePatch{SessionID: chat.String("s1")})
			store.Patch(chat.TrackResearch, idx, chat.MessagePatch{SessionID: chat.String("s2")})

			msg, _ := store.Message(chat.TrackResearch, idx)
			Expect(msg.SessionID).To(Equal("s1"))
		})

		It("distinguishes an empty outline from an unset one", func() {
			idx := store.Append(chat.TrackResearch, chat.NewStreamingPlaceholder("..."))

			store.Patch(chat.TrackResearch, idx, chat.MessagePatch{Outline: []string{"intro", "body"}})
			msg, _ := store.Message(chat.TrackResearch, idx)
			Expect(msg.Outline).To(Equal([]string{"intro", "body"}))

			// Nil leaves the outline alone.
			store.Patch(chat.TrackResearch, idx, chat.MessagePatch{Content: chat.String("x")})
			msg, _ = store.Message(chat.TrackResearch, idx)
			Expect(msg.Outline).To(Equal([]string{"intro", "body"}))

			// An explicit empty slice clears it.
			store.Patch(chat.TrackResearch, idx, chat.MessagePatch{Outline: []string{}})
			msg, _ = store.Message(chat.TrackResearch, idx)
			Expect(msg.Outline).To(BeEmpty())
		})

		It("sets confidence through a pointer", func() {
			idx := store.Append(chat.TrackResearch, chat.NewStreamingPlaceholder("..."))

			store.Patch(chat.TrackResearch, idx, chat.MessagePatch{Confidence: chat.Float(85)})

			msg, _ := store.Message(chat.TrackResearch, idx)
			Expect(msg.Confidence).NotTo(BeNil())
			Expect(*msg.Confidence).To(Equal(85.0))
		})
	})

	Describe("Clear", func() {
		It("empties the track", func() {
			store.Append(chat.TrackResearch, chat.NewUserMessage("q", chat.ModeResearch))
			store.Clear(chat.TrackResearch)

			Expect(store.Len(chat.TrackResearch)).To(Equal(0))
			Expect(store.Messages(chat.TrackResearch)).To(BeEmpty())
		})

		It("leaves the other track untouched", func() {
			store.Append(chat.TrackStandard, chat.NewUserMessage("keep me", chat.ModeRegular))
			store.Append(chat.TrackResearch, chat.NewUserMessage("drop me", chat.ModeResearch))

			store.Clear(chat.TrackResearch)

			Expect(store.Len(chat.TrackStandard)).To(Equal(1))
			Expect(store.Len(chat.TrackResearch)).To(Equal(0))
		})
	})

	Describe("Restore", func() {
		It("replaces track contents with persisted messages", func() {
			msgs := []chat.Message{
				chat.NewUserMessage("hello", chat.ModeResearch),
				{Role: chat.RoleAssistant, Content: "hi", Mode: chat.ModeResearch, SessionID: "s1"},
			}

			store.Restore(chat.TrackResearch, msgs)

			Expect(store.Len(chat.TrackResearch)).To(Equal(2))
			Expect(store.Messages(chat.TrackResearch)[1].SessionID).To(Equal("s1"))
		})
	})

	Describe("LastSessionID", func() {
		It("returns empty when no assistant message carries a session", func() {
			store.Append(chat.TrackResearch, chat.NewUserMessage("q", chat.ModeResearch))
			Expect(store.LastSessionID(chat.TrackResearch)).To(BeEmpty())
		})

		It("returns the most recent assistant session identifier", func() {
			store.Append(chat.TrackResearch, chat.Message{Role: chat.RoleAssistant, SessionID: "s1"})
			store.Append(chat.TrackResearch, chat.NewUserMessage("follow up", chat.ModeResearch))
			store.Append(chat.TrackResearch, chat.Message{Role: chat.RoleAssistant, SessionID: "s2"})

			Expect(store.LastSessionID(chat.TrackResearch)).To(Equal("s2"))
		})

		It("ignores user messages", func() {
			store.Append(chat.TrackResearch, chat.Message{Role: chat.RoleAssistant, SessionID: "s1"})
			store.Append(chat.TrackResearch, chat.Message{Role: chat.RoleUser, Content: "q"})

			Expect(store.LastSessionID(chat.TrackResearch)).To(Equal("s1"))
		})
	})

	Describe("persistence side effects", func() {
		var persister *fakePersister

		BeforeEach(func() {
			persister = newFakePersister()
			store = chat.NewStore(chat.WithPersister(persister))
		})

		It("saves a snapshot on every append", func() {
			store.Append(chat.TrackResearch, chat.NewUserMessage("q", chat.ModeResearch))
			Expect(persister.saveCount(chat.TrackResearch)).To(Equal(1))

			store.Append(chat.TrackResearch, chat.NewStreamingPlaceholder("..."))
			Expect(persister.saveCount(chat.TrackResearch)).To(Equal(2))

			saved := persister.lastSave(chat.TrackResearch)
			Expect(saved).To(HaveLen(2))
		})

		It("saves a snapshot on every successful patch", func() {
			idx := store.Append(chat.TrackResearch, chat.NewStreamingPlaceholder("..."))

			store.Patch(chat.TrackResearch, idx, chat.MessagePatch{Content: chat.String("answer")})

			Expect(persister.saveCount(chat.TrackResearch)).To(Equal(2))
			Expect(persister.lastSave(chat.TrackResearch)[idx].Content).To(Equal("answer"))
		})

		It("does not save on a stale patch", func() {
			store.Patch(chat.TrackResearch, 9, chat.MessagePatch{Content: chat.String("x")})
			Expect(persister.saveCount(chat.TrackResearch)).To(Equal(0))
		})

		It("keys snapshots per track", func() {
			store.Append(chat.TrackStandard, chat.NewUserMessage("a", chat.ModeRegular))
			store.Append(chat.TrackResearch, chat.NewUserMessage("b", chat.ModeResearch))

			Expect(persister.saveCount(chat.TrackStandard)).To(Equal(1))
			Expect(persister.saveCount(chat.TrackResearch)).To(Equal(1))
		})

		It("drops the persisted snapshot on clear", func() {
			store.Append(chat.TrackResearch, chat.NewUserMessage("q", chat.ModeResearch))
			store.Clear(chat.TrackResearch)

			Expect(persister.clears).To(Equal([]chat.Track{chat.TrackResearch}))
		})

		It("does not re-persist on restore", func() {
			store.Restore(chat.TrackResearch, []chat.Message{chat.NewUserMessage("q", chat.ModeResearch)})
			Expect(persister.saveCount(chat.TrackResearch)).To(Equal(0))
		})

		It("applies the mutation even when persistence fails", func() {
			persister.err = errors.New("disk full")

			idx := store.Append(chat.TrackResearch, chat.NewUserMessage("q", chat.ModeResearch))

			Expect(idx).To(Equal(0))
			Expect(store.Len(chat.TrackResearch)).To(Equal(1))
		})
	})

	Describe("Subscribe", func() {
		It("notifies observers after every mutation", func() {
			var gotTracks []chat.Track
			var lastLen int
			store.Subscribe(func(track chat.Track, msgs []chat.Message) {
				gotTracks = append(gotTracks, track)
				lastLen = len(msgs)
			})

			idx := store.Append(chat.TrackResearch, chat.NewStreamingPlaceholder("..."))
			store.Patch(chat.TrackResearch, idx, chat.MessagePatch{Content: chat.String("done")})
			store.Clear(chat.TrackResearch)

			Expect(gotTracks).To(Equal([]chat.Track{chat.TrackResearch, chat.TrackResearch, chat.TrackResearch}))
			Expect(lastLen).To(Equal(0))
		})

		It("hands observers the updated contents", func() {
			var seen []chat.Message
			store.Subscribe(func(_ chat.Track, msgs []chat.Message) {
				seen = msgs
			})

			store.Append(chat.TrackStandard, chat.NewUserMessage("hello", chat.ModeRegular))

			Expect(seen).To(HaveLen(1))
			Expect(seen[0].Content).To(Equal("hello"))
		})

		It("stops notifying after unsubscribe", func() {
			calls := 0
			unsubscribe := store.Subscribe(func(chat.Track, []chat.Message) {
				calls++
			})

			store.Append(chat.TrackStandard, chat.NewUserMessage("one", chat.ModeRegular))
			unsubscribe()
			store.Append(chat.TrackStandard, chat.NewUserMessage("two", chat.ModeRegular))

			Expect(calls).To(Equal(1))
		})

		It("leaves other observers in place on unsubscribe", func() {
			var first, second int
			unsubscribe := store.Subscribe(func(chat.Track, []chat.Message) { first++ })
			store.Subscribe(func(chat.Track, []chat.Message) { second++ })

			unsubscribe()
			store.Append(chat.TrackStandard, chat.NewUserMessage("q", chat.ModeRegular))

			Expect(first).To(Equal(0))
			Expect(second).To(Equal(1))
		})
	})
})
