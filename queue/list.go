package queue

import "github.com/roasbeef/tsqueue/envelope"

// node is a single link in the queue's internal FIFO. A sentinel node
// (with a nil msg) is always present at head, so enqueue always writes
// to tail.next and dequeue always removes head.next, removing the
// empty/one-element special cases described in spec §4.2.
type node struct {
	msg  *envelope.Envelope
	next *node
}

// enqueueLocked appends e to the tail. Callers must hold q.mu.
func (q *Queue) enqueueLocked(e *envelope.Envelope) {
	n := &node{msg: e}
	q.tail.next = n
	q.tail = n
	q.size++
}

// dequeueLocked removes and returns the envelope at the head. Callers
// must hold q.mu and must have already verified q.size > 0.
func (q *Queue) dequeueLocked() *envelope.Envelope {
	n := q.head.next
	q.head.next = n.next

	if q.tail == n {
		q.tail = q.head
	}

	q.size--

	return n.msg
}
