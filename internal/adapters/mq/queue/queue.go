// Package queue provides the in-process job queue feeding the scoring workers.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/talentscore/pkg/metrics"
)

const defaultCapacity = 1000

// Job asks the workers to score one application.
type Job struct {
	ApplicationID string
	Force         bool
	EnqueuedAt    time.Time
}

// Queue is the contract workers and producers share.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Dequeue(ctx context.Context) <-chan Job
	Len(ctx context.Context) int
	Close() error
}

// InMemoryQueue is a bounded channel-backed Queue. Enqueue never blocks.
type InMemoryQueue struct {
	ch       chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue builds a queue with the given options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.ch = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds job without blocking. It fails with ErrFull when the buffer
// is at capacity and ErrStopped after Close.
func (q *InMemoryQueue) Enqueue(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job.ApplicationID == "" {
		metrics.RecordQueueEnqueueError()
		return ErrEmptyJob
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "stopped")
		return ErrStopped
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	select {
	case q.ch <- job:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.ch))
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "full")
		return ErrFull
	}
}

// Dequeue returns a channel of jobs. It is closed when ctx ends or the queue
// is closed and drained.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.ch:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.ch))
				select {
				case out <- job:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the number of buffered jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.ch)
}

// Capacity returns the buffer size.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops accepting jobs. Buffered jobs are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.ch)
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
