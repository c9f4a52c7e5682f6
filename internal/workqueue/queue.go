// Package workqueue runs jobs through a Processor with a concurrency cap, a
// bounded backlog and a minimum spacing between dispatches.
package workqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrQueueFull is returned by Submit when the backlog is at capacity.
	// Callers treat it as backpressure.
	ErrQueueFull = errors.New("queue full")

	// ErrQueueClosed is returned by Submit after the queue was stopped or drained.
	ErrQueueClosed = errors.New("queue closed")
)

// Processor handles one job. Returned errors are logged and the job is dropped.
type Processor[J any] interface {
	Process(ctx context.Context, job J) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc[J any] func(ctx context.Context, job J) error

// Process calls f(ctx, job).
func (f ProcessorFunc[J]) Process(ctx context.Context, job J) error { return f(ctx, job) }

// Config bounds a queue.
type Config struct {
	MaxConcurrent int           // C: jobs running at once
	Backlog       int           // N: jobs waiting for dispatch
	Delay         time.Duration // d: minimum gap between two dispatches
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}
	if c.Backlog < 1 {
		c.Backlog = 1
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	return c
}

// Stats is a point-in-time view of a queue.
type Stats struct {
	Name      string
	Pending   int
	Running   int64
	Submitted int64
	Processed int64
	Failed    int64
	Rejected  int64
}

// Queue dispatches submitted jobs to a Processor.
type Queue[J any] struct {
	name    string
	cfg     Config
	proc    Processor[J]
	logger  *slog.Logger
	pending chan J
	sem     *semaphore.Weighted
	limiter *rate.Limiter

	mu     sync.RWMutex
	closed bool

	running   atomic.Int64
	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
}

// New creates a queue. Jobs may be submitted before Start; they wait in the backlog.
func New[J any](name string, cfg Config, p Processor[J], logger *slog.Logger) *Queue[J] {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Queue[J]{
		name:    name,
		cfg:     cfg,
		proc:    p,
		logger:  logger.With("component", "workqueue", "queue", name),
		pending: make(chan J, cfg.Backlog),
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		limiter: rate.NewLimiter(rate.Every(cfg.Delay), 1),
	}
}

// Name returns the queue name.
func (q *Queue[J]) Name() string { return q.name }

// Submit enqueues a job without blocking.
func (q *Queue[J]) Submit(job J) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.pending <- job:
		q.submitted.Add(1)
		return nil
	default:
		q.rejected.Add(1)
		return fmt.Errorf("%s: %w (backlog %d)", q.name, ErrQueueFull, q.cfg.Backlog)
	}
}

// Stats reports counters and current occupancy.
func (q *Queue[J]) Stats() Stats {
	return Stats{
		Name:      q.name,
		Pending:   len(q.pending),
		Running:   q.running.Load(),
		Submitted: q.submitted.Load(),
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Rejected:  q.rejected.Load(),
	}
}

// closeInput stops accepting jobs. The dispatcher still sees buffered jobs.
func (q *Queue[J]) closeInput() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.pending)
	}
}

// Start launches the dispatcher. It runs until the returned Handle is
// stopped or drained, or ctx is cancelled.
func (q *Queue[J]) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
		close:  q.closeInput,
		left:   q.discard,
	}
	go func() {
		defer close(h.done)
		q.dispatch(ctx)
	}()
	q.logger.Info("queue started",
		"max_concurrent", q.cfg.MaxConcurrent,
		"backlog", q.cfg.Backlog,
		"delay", q.cfg.Delay)
	return h
}

func (q *Queue[J]) dispatch(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		if err := q.sem.Acquire(ctx, 1); err != nil {
			return
		}

		var job J
		var ok bool
		select {
		case <-ctx.Done():
			q.sem.Release(1)
			return
		case job, ok = <-q.pending:
		}
		if !ok {
			q.sem.Release(1)
			return
		}

		if err := q.limiter.Wait(ctx); err != nil {
			q.sem.Release(1)
			q.logger.Debug("dropping job on shutdown")
			return
		}

		wg.Add(1)
		q.running.Add(1)
		go func() {
			defer wg.Done()
			defer q.sem.Release(1)
			defer q.running.Add(-1)
			q.run(ctx, job)
		}()
	}
}

func (q *Queue[J]) run(ctx context.Context, job J) {
	defer func() {
		if r := recover(); r != nil {
			q.failed.Add(1)
			q.logger.Error("job panicked", "panic", r)
		}
	}()

	start := time.Now()
	if err := q.proc.Process(ctx, job); err != nil {
		q.failed.Add(1)
		q.logger.Warn("job failed", "error", err, "duration", time.Since(start))
		return
	}
	q.processed.Add(1)
	q.logger.Debug("job done", "duration", time.Since(start))
}

// discard empties the backlog after shutdown and returns how many jobs were dropped.
func (q *Queue[J]) discard() int {
	dropped := 0
	for {
		select {
		case _, ok := <-q.pending:
			if !ok {
				return dropped
			}
			dropped++
		default:
			return dropped
		}
	}
}
