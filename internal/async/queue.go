// Package async runs jobs on a fixed pool of workers and streams results back.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Handler processes one job. The context carries the per-job timeout.
type Handler[J, R any] func(ctx context.Context, job J) R

// Queue is a worker pool fed by plain job values; each job yields one result.
type Queue[J, R any] struct {
	handle  Handler[J, R]
	logger  *slog.Logger
	workers int
	timeout time.Duration
	size    int

	ch      chan J
	results chan R
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

type config struct {
	workers int
	size    int
	timeout time.Duration
}

// Option configures a Queue.
type Option func(*config)

func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.size = n
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New starts the workers. ctx bounds every job; cancel it to abandon work.
func New[J, R any](ctx context.Context, handle func(ctx context.Context, job J) R, logger *slog.Logger, opts ...Option) *Queue[J, R] {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := config{workers: 4, size: 64, timeout: 3 * time.Minute}
	for _, o := range opts {
		o(&cfg)
	}
	q := &Queue[J, R]{
		handle:  handle,
		logger:  logger,
		workers: cfg.workers,
		timeout: cfg.timeout,
		size:    cfg.size,
		ch:      make(chan J, cfg.size),
		results: make(chan R, cfg.size),
	}
	q.start(ctx)
	return q
}

func (q *Queue[J, R]) start(ctx context.Context) {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					jobCtx, cancel := context.WithTimeout(ctx, q.timeout)
					res := q.handle(jobCtx, job)
					cancel()
					q.results <- res
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
		go func() {
			q.wg.Wait()
			close(q.results)
		}()
	})
}

// Results yields one value per handled job and is closed after Shutdown once
// every worker has finished.
func (q *Queue[J, R]) Results() <-chan R { return q.results }

// Workers returns the pool width.
func (q *Queue[J, R]) Workers() int { return q.workers }

// Enqueue blocks while the queue is full.
func (q *Queue[J, R]) Enqueue(ctx context.Context, job J) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		return nil
	default:
	}
	q.logger.Debug("queue full, applying backpressure")
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs; queued jobs are still handled.
func (q *Queue[J, R]) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Wait blocks until every worker has exited or ctx is done.
func (q *Queue[J, R]) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
		return ctx.Err()
	case <-done:
		q.logger.Debug("queue drained, shutdown complete")
		return nil
	}
}
