// Package queue implements the bounded, thread-safe, multi-producer/
// multi-consumer message queue described by this module: a single mutex
// with two condition variables (not-empty, not-full), a sentinel-headed
// internal linked list, four blocking disciplines per direction, and a
// one-way shutdown transition that drains rather than discards.
package queue

import (
	"sync"
	"time"

	"github.com/roasbeef/tsqueue/envelope"
	"github.com/roasbeef/tsqueue/errcode"
)

// DefaultCapacity is the default queue size used by callers that don't
// pick an explicit capacity, matching the source's
// PUBSUB_DEFAULT_QUEUE_SIZE.
const DefaultCapacity = 10000

// Sentinel errors for errors.Is. Every error this package returns
// carries the matching errcode.Code, so errors.Is(err, ErrShutdown) is
// true for any SHUTDOWN failure regardless of its contextual message.
var (
	// ErrQueueFull is returned by TryPush when the queue is at capacity.
	ErrQueueFull = errcode.New(errcode.QueueFull, "queue is full")

	// ErrQueueEmpty is returned by TryPop when the queue holds nothing.
	ErrQueueEmpty = errcode.New(errcode.QueueEmpty, "queue is empty")

	// ErrShutdown is returned once the queue has shut down and, for pop
	// operations, drained.
	ErrShutdown = errcode.New(errcode.Shutdown, "queue is shut down")

	// ErrTimeout is returned by the timed variants when the deadline
	// elapses before the operation could complete.
	ErrTimeout = errcode.New(errcode.Timeout, "operation timed out")
)

// Queue is a bounded FIFO of envelope.Envelope values, safe for
// concurrent use by any number of producer and consumer goroutines.
//
// The zero value is not usable; construct one with New.
type Queue struct {
	mu sync.Mutex

	// notEmpty is signalled by a successful push and broadcast by
	// Shutdown; consumers wait on it.
	notEmpty *sync.Cond

	// notFull is signalled by a successful pop and broadcast by
	// Shutdown; producers wait on it.
	notFull *sync.Cond

	head *node
	tail *node

	size     int
	capacity int

	shutdown bool
}

// New constructs a Queue with the given capacity. Capacity must be at
// least 1; an unbounded queue is not supported.
func New(capacity int) (*Queue, error) {
	if capacity < 1 {
		return nil, errcode.Errorf(
			errcode.NullParam,
			"capacity must be >= 1, got %d", capacity,
		)
	}

	sentinel := &node{}

	q := &Queue{
		head:     sentinel,
		tail:     sentinel,
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)

	return q, nil
}

// Push enqueues e, blocking until there is room, the queue is shut
// down, or the queue's capacity frees up. On any non-nil return, the
// caller retains ownership of e.
func (q *Queue) Push(e *envelope.Envelope) error {
	if e == nil {
		return errcode.New(errcode.NullParam, "envelope must not be nil")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size >= q.capacity && !q.shutdown {
		q.notFull.Wait()
	}

	if q.shutdown {
		return ErrShutdown
	}

	q.enqueueLocked(e)
	q.notEmpty.Signal()

	log.Tracef("push: topic=%s size=%d/%d", e.Topic, q.size, q.capacity)

	return nil
}

// PushTimeout enqueues e, blocking for at most timeout. The deadline is
// computed once at entry and re-used across spurious wake-ups, so the
// total wait is bounded by timeout regardless of wake-up count. On a
// TIMEOUT or SHUTDOWN return, the caller retains ownership of e.
func (q *Queue) PushTimeout(
	e *envelope.Envelope, timeout time.Duration,
) error {

	if e == nil {
		return errcode.New(errcode.NullParam, "envelope must not be nil")
	}

	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	timer := time.AfterFunc(timeout, func() {
		q.mu.Lock()
		q.notFull.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	for {
		if q.shutdown {
			return ErrShutdown
		}
		if q.size < q.capacity {
			break
		}
		if !time.Now().Before(deadline) {
			return ErrTimeout
		}

		q.notFull.Wait()
	}

	q.enqueueLocked(e)
	q.notEmpty.Signal()

	return nil
}

// TryPush enqueues e without blocking. Shutdown takes priority over a
// full queue: if the queue has shut down, TryPush returns ErrShutdown
// even if a slot happens to be free from the perspective of a racing
// caller. On any non-nil return, the caller retains ownership of e.
func (q *Queue) TryPush(e *envelope.Envelope) error {
	if e == nil {
		return errcode.New(errcode.NullParam, "envelope must not be nil")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shutdown {
		return ErrShutdown
	}
	if q.size >= q.capacity {
		return ErrQueueFull
	}

	q.enqueueLocked(e)
	q.notEmpty.Signal()

	return nil
}

// Pop dequeues and returns the oldest envelope, blocking until one is
// available or the queue shuts down with nothing left to deliver.
// Already-enqueued envelopes remain dequeuable after shutdown until the
// queue is empty.
func (q *Queue) Pop() (*envelope.Envelope, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.shutdown {
		q.notEmpty.Wait()
	}

	if q.size == 0 {
		return nil, ErrShutdown
	}

	e := q.dequeueLocked()
	q.notFull.Signal()

	log.Tracef("pop: topic=%s size=%d/%d", e.Topic, q.size, q.capacity)

	return e, nil
}

// PopTimeout dequeues and returns the oldest envelope, blocking for at
// most timeout. The deadline is computed once at entry, matching
// PushTimeout.
func (q *Queue) PopTimeout(
	timeout time.Duration,
) (*envelope.Envelope, error) {

	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	timer := time.AfterFunc(timeout, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	for {
		if q.size == 0 && q.shutdown {
			return nil, ErrShutdown
		}
		if q.size > 0 {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrTimeout
		}

		q.notEmpty.Wait()
	}

	e := q.dequeueLocked()
	q.notFull.Signal()

	return e, nil
}

// TryPop dequeues and returns the oldest envelope without blocking. It
// returns ErrQueueEmpty on an empty, non-shut-down queue, and
// ErrShutdown only when the queue is both empty and shut down -- a
// non-empty queue always yields its next envelope regardless of
// shutdown state.
func (q *Queue) TryPop() (*envelope.Envelope, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		if q.shutdown {
			return nil, ErrShutdown
		}

		return nil, ErrQueueEmpty
	}

	e := q.dequeueLocked()
	q.notFull.Signal()

	return e, nil
}

// Size returns a point-in-time snapshot of the element count. The
// result is not stable after return: concurrent pushes/pops may have
// already changed it.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.size
}

// IsEmpty reports whether the queue held zero elements at the moment
// the mutex was acquired.
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}

// Shutdown transitions the queue to its terminal state, waking every
// blocked Push/PushTimeout/Pop/PopTimeout caller. It is safe to call
// more than once: only the first call has an effect. Already-enqueued
// envelopes remain dequeuable until drained; no new envelopes are
// admitted after this returns.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shutdown {
		return
	}

	log.Debugf("queue shutting down: %d envelope(s) still pending", q.size)

	q.shutdown = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Close shuts the queue down (if not already) and releases every
// envelope still enqueued. Close must not be called while other
// goroutines are still pushing or popping: callers must first stop or
// join their producers/consumers, using Shutdown as the coordination
// point, before calling Close.
func (q *Queue) Close() {
	q.Shutdown()

	q.mu.Lock()
	defer q.mu.Unlock()

	drained := 0
	for q.head.next != nil {
		e := q.dequeueLocked()
		envelope.Release(e)
		drained++
	}

	log.Debugf("queue closed, released %d remaining envelope(s)", drained)
}
