// Package worker provides a bounded asynchronous job pool for fire-and-forget
// work such as turn event publishes and feedback submissions.
//
// The pool decouples background side effects from the interactive ask/answer
// path so a slow broker or feedback endpoint never delays a conversation.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"log/slog"

	"github.com/glosshq/gloss/pkg/logger"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	// Kind identifies the job in logs.
	Kind string

	// Run does the work. The pool supplies a background context, so jobs
	// outlive the request that enqueued them.
	Run func(ctx context.Context) error
}

// Config is the configuration options for the worker pool.
type Config struct {
	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the logger for job lifecycle events.
	Logger *slog.Logger
}

// Pool processes jobs asynchronously via a fixed set of workers.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued", "kind", job.Kind)
		return true
	default:
		p.logger.Warn("job not queued, queue full, job dropped", "kind", job.Kind)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the interactive surfaces have stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue.
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob runs a job and logs the outcome. Job errors never propagate:
// background work is best-effort.
func (p *Pool) processJob(job Job) {
	if job.Run == nil {
		p.logger.Warn("job with no work discarded", "kind", job.Kind)
		return
	}

	if err := job.Run(context.Background()); err != nil {
		p.logger.Error("background job failed", "kind", job.Kind, "error", err)
		return
	}

	p.logger.Debug("job completed", "kind", job.Kind)
}
