package async

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// KeyProcessor runs the extraction pipeline for one stored object key.
type KeyProcessor interface {
	ProcessKey(ctx context.Context, key string) error
}

type WorkerQueue struct {
	proc    KeyProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*WorkerQueue)

func WithWorkers(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *WorkerQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewWorkerQueue(proc KeyProcessor, logger *slog.Logger, opts ...Option) *WorkerQueue {
	q := &WorkerQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *WorkerQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.proc.ProcessKey(ctx, job.Key)
					cancel()

					if err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "key", job.Key, "correlation_id", job.CorrelationID, "error", err)
					} else {
						q.logger.Info("processed receipt successfully", "worker_id", workerID, "key", job.Key, "correlation_id", job.CorrelationID)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *WorkerQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "key", job.Key)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued receipt for processing", "key", job.Key, "correlation_id", job.CorrelationID)
	default:
		q.logger.Warn("queue full, applying backpressure", "key", job.Key)
		q.ch <- job
	}
	return nil
}

func (q *WorkerQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
