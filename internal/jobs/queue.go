package jobs

import (
	"errors"
	"sync"
)

var (
	ErrQueueFull   = errors.New("jobs: queue full")
	ErrQueueClosed = errors.New("jobs: queue closed")
)

// Queue is a bounded FIFO of pending work. Enqueue never blocks.
type Queue[T any] struct {
	mu     sync.RWMutex
	items  chan T
	closed bool
}

// NewQueue allocates a queue holding at most capacity items.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue[T]{items: make(chan T, capacity)}
}

// Enqueue adds item or returns ErrQueueFull when saturated.
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.items <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting work. Items already queued remain available to the pool.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
}

// Len reports queued items.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Cap reports the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.items)
}

func (q *Queue[T]) receive() <-chan T {
	return q.items
}
