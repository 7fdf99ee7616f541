// Package queue holds uploads between the HTTP handler and the analysis workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/postpulse/internal/domain/model"
	"github.com/okian/postpulse/pkg/metrics"
)

const defaultQueueCapacity = 64

// Upload is the payload type flowing through the queue.
type Upload = model.Upload

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an upload to the queue without blocking.
	// Returns ErrQueueFull when no slot is free and ErrClosed after Close.
	Enqueue(ctx context.Context, u Upload) error

	// Dequeue returns a channel that will receive uploads as they become available.
	// The channel will be closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Upload

	// Len returns the current number of queued uploads.
	Len(ctx context.Context) int

	// Close stops accepting uploads. Uploads already queued are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	uploads  chan Upload
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.uploads = make(chan Upload, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0, q.capacity)

	return q
}

// Capacity reports the maximum number of queued uploads.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Enqueue adds an upload to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, u Upload) error { //nolint:gocritic // hugeParam: sent by value over the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.uploads <- u:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.uploads), q.capacity)
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrQueueFull
	}
}

// Dequeue returns a channel that will receive uploads as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Upload {
	out := make(chan Upload)
	go func() {
		defer close(out)
		for {
			// Wait for a consumer before taking an upload off the buffer so
			// cancellation never swallows one.
			select {
			case <-ctx.Done():
				return
			case u, ok := <-q.uploads:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.uploads), q.capacity)
				select {
				case out <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued uploads.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.uploads)
	metrics.UpdateQueueSize(size, q.capacity)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.uploads)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
