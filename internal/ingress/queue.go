// Package ingress implements the chunked FIFO queue used to buffer values
// handed to the event loop from other goroutines.
package ingress

import (
	"sync"
)

// chunkSize is the number of values per node in the linked list.
const chunkSize = 128

// Queue is a chunked linked-list FIFO queue.
//
// Thread Safety: Queue is NOT thread-safe. The caller must provide external
// synchronization.
//
// Fixed-size chunks amortize allocations, and exhausted chunks are recycled
// through a pool owned by the queue.
type Queue[T any] struct {
	pool   sync.Pool
	head   *chunk[T]
	tail   *chunk[T]
	length int
}

// chunk is a fixed-size node, with readPos/pos cursors for O(1) push/pop.
type chunk[T any] struct {
	values  [chunkSize]T
	next    *chunk[T]
	readPos int // first unread slot
	pos     int // first unused slot
}

func (q *Queue[T]) newChunk() *chunk[T] {
	if c, ok := q.pool.Get().(*chunk[T]); ok {
		return c
	}
	return new(chunk[T])
}

// returnChunk clears the slots of an exhausted chunk, so it doesn't retain
// references, then returns it to the pool.
func (q *Queue[T]) returnChunk(c *chunk[T]) {
	var zero T
	for i := 0; i < c.pos; i++ {
		c.values[i] = zero
	}
	c.pos = 0
	c.readPos = 0
	c.next = nil
	q.pool.Put(c)
}

// Push appends a value to the tail of the queue.
func (q *Queue[T]) Push(v T) {
	if q.tail == nil {
		q.tail = q.newChunk()
		q.head = q.tail
	}
	if q.tail.pos == len(q.tail.values) {
		next := q.newChunk()
		q.tail.next = next
		q.tail = next
	}
	q.tail.values[q.tail.pos] = v
	q.tail.pos++
	q.length++
}

// Pop removes and returns the value at the head of the queue, returning
// false if the queue is empty.
func (q *Queue[T]) Pop() (v T, ok bool) {
	if q.head == nil || q.head.readPos >= q.head.pos {
		return v, false
	}

	var zero T
	v = q.head.values[q.head.readPos]
	q.head.values[q.head.readPos] = zero
	q.head.readPos++
	q.length--

	if q.head.readPos >= q.head.pos {
		if q.head == q.tail {
			q.head.pos = 0
			q.head.readPos = 0
		} else {
			old := q.head
			q.head = q.head.next
			q.returnChunk(old)
		}
	}

	return v, true
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return q.length
}

// Drain pops every value, in order, into fn. Values pushed by fn are not
// visited.
func (q *Queue[T]) Drain(fn func(v T)) {
	for n := q.length; n > 0; n-- {
		v, _ := q.Pop()
		fn(v)
	}
}

// Clear discards every queued value, returning how many were dropped.
func (q *Queue[T]) Clear() int {
	n := q.length
	for q.head != nil {
		next := q.head.next
		q.returnChunk(q.head)
		q.head = next
	}
	q.tail = nil
	q.length = 0
	return n
}
