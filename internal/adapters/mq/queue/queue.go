// Package queue buffers item generation requests for the worker pool.
//
// Enqueue never blocks: a full queue refuses the request so callers can
// report backpressure instead of stalling.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/pkg/metrics"
)

const defaultQueueCapacity = 64

// Request is one pending item generation.
type Request struct {
	ID string `json:"id"`
	generator.Request
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request. It returns ErrFull or ErrClosed when the
	// request was not accepted.
	Enqueue(ctx context.Context, r Request) error

	// Dequeue returns a channel that receives requests as they become
	// available. The channel is closed when the queue is closed and drained
	// or when ctx is done.
	Dequeue(ctx context.Context) <-chan Request

	// Len returns the current number of pending requests.
	Len(ctx context.Context) int

	// Cap returns the maximum number of pending requests.
	Cap() int

	// Close stops accepting requests. Pending requests stay readable.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.requests = make(chan Request, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.publish()

	return q
}

func (q *InMemoryQueue) publish() {
	size := len(q.requests)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Enqueue adds a request to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) error {
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
	if r.EnqueuedAt.IsZero() {
		r.EnqueuedAt = time.Now()
	}

	select {
	case q.requests <- r:
		metrics.RecordQueueEnqueue()
		q.publish()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive requests as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Request {
	out := make(chan Request)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-q.requests:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				q.publish()
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of pending requests.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.publish()
	return len(q.requests)
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops accepting requests.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.requests)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
