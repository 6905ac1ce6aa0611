package stream

import (
	"context"
	"sync"
)

// deliveryQueue is the bounded FIFO hand-off between the receive loop and
// the consumer. Overflow policy: the producer blocks when the queue is full,
// so a slow consumer throttles reads and TCP flow control pushes back on the
// venue rather than the queue growing without bound.
type deliveryQueue struct {
	ch   chan Envelope
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	enqueued  int64
	delivered int64
}

// QueueStats contains delivery queue counters.
type QueueStats struct {
	Depth     int
	Capacity  int
	Enqueued  int64
	Delivered int64
}

func newDeliveryQueue(capacity int) *deliveryQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &deliveryQueue{
		ch:   make(chan Envelope, capacity),
		done: make(chan struct{}),
	}
}

// push enqueues an envelope, blocking while the queue is full. Returns false
// once the queue is closed.
func (q *deliveryQueue) push(env Envelope) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.ch <- env:
		q.mu.Lock()
		q.enqueued++
		q.mu.Unlock()
		return true
	case <-q.done:
		return false
	}
}

// pop dequeues the next envelope, blocking until one is available, the
// context is cancelled, or the queue is closed.
func (q *deliveryQueue) pop(ctx context.Context) (Envelope, error) {
	select {
	case <-q.done:
		return Envelope{}, ErrClosed
	default:
	}
	select {
	case env := <-q.ch:
		q.mu.Lock()
		q.delivered++
		q.mu.Unlock()
		return env, nil
	case <-q.done:
		return Envelope{}, ErrClosed
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

// close terminates the queue. Pending envelopes are dropped; pop returns
// ErrClosed from then on.
func (q *deliveryQueue) close() {
	q.once.Do(func() { close(q.done) })
}

func (q *deliveryQueue) stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Depth:     len(q.ch),
		Capacity:  cap(q.ch),
		Enqueued:  q.enqueued,
		Delivered: q.delivered,
	}
}
