package worker

import (
	"context"
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// newTestPool creates a small worker pool. Callers should wp.Close() to drain
// enqueued jobs before asserting side effects.
func newTestPool(numWorkers, queueSize uint) *Pool {
	wp, err := NewPool(&Config{
		NumWorkers: numWorkers,
		QueueSize:  queueSize,
	})
	Expect(err).NotTo(HaveOccurred())

	return wp
}

var _ = Describe("Worker Pool", func() {
	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			wp := newTestPool(1, 4)

			ok := wp.Enqueue(Job{
				Kind: "test",
				Run:  func(ctx context.Context) error { return nil },
			})
			Expect(ok).To(BeTrue())
			wp.Close()
		})

		It("drops jobs when the queue is saturated", func() {
			wp := newTestPool(1, 1)

			started := make(chan struct{})
			gate := make(chan struct{})
			var secondRan, thirdRan atomic.Bool

			// First job occupies the single worker until the gate opens.
			Expect(wp.Enqueue(Job{
				Kind: "blocker",
				Run: func(ctx context.Context) error {
					close(started)
					<-gate
					return nil
				},
			})).To(BeTrue())
			Eventually(started).Should(BeClosed())

			// Second fills the queue, third has nowhere to go.
			Expect(wp.Enqueue(Job{
				Kind: "queued",
				Run: func(ctx context.Context) error {
					secondRan.Store(true)
					return nil
				},
			})).To(BeTrue())
			Expect(wp.Enqueue(Job{
				Kind: "dropped",
				Run: func(ctx context.Context) error {
					thirdRan.Store(true)
					return nil
				},
			})).To(BeFalse())

			close(gate)
			wp.Close()

			Expect(secondRan.Load()).To(BeTrue())
			Expect(thirdRan.Load()).To(BeFalse())
		})
	})

	Describe("Close", func() {
		It("drains every enqueued job before returning", func() {
			wp := newTestPool(3, 64)

			var ran atomic.Int64
			for i := 0; i < 20; i++ {
				Expect(wp.Enqueue(Job{
					Kind: "count",
					Run: func(ctx context.Context) error {
						ran.Add(1)
						return nil
					},
				})).To(BeTrue())
			}

			wp.Close()
			Expect(ran.Load()).To(Equal(int64(20)))
		})
	})

	Describe("processJob", func() {
		It("keeps working after a job fails", func() {
			wp := newTestPool(1, 4)

			var ran atomic.Bool
			Expect(wp.Enqueue(Job{
				Kind: "failing",
				Run: func(ctx context.Context) error {
					return errors.New("broker unreachable")
				},
			})).To(BeTrue())
			Expect(wp.Enqueue(Job{
				Kind: "following",
				Run: func(ctx context.Context) error {
					ran.Store(true)
					return nil
				},
			})).To(BeTrue())

			wp.Close()
			Expect(ran.Load()).To(BeTrue())
		})

		It("discards jobs with no work", func() {
			wp := newTestPool(1, 4)

			Expect(wp.Enqueue(Job{Kind: "empty"})).To(BeTrue())
			wp.Close()
		})
	})

	Describe("NewPool", func() {
		It("applies worker and queue defaults", func() {
			wp, err := NewPool(&Config{})
			Expect(err).NotTo(HaveOccurred())
			Expect(wp.config.NumWorkers).To(Equal(uint(3)))
			Expect(wp.config.QueueSize).To(Equal(uint(256)))
			wp.Close()
		})
	})
})
