package winloop

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-winloop/internal/ingress"
)

// shared is the state of an event loop that proxies reference, and that
// outlives the loop.
type shared[T any] struct {
	backend Backend
	queue   ingress.Queue[T]
	state   fastState
	mu      sync.Mutex
	closed  bool
	// wakePending deduplicates Backend.Wake calls, between Begin calls.
	wakePending atomic.Bool
}

// push queues ev, waking the backend if the loop is sleeping.
//
// The state is loaded after the push, while holding mu. Runner.Plan stores
// stateSleeping before checking the queue length, while holding mu, so
// either the loop sees the value, or the sender sees it sleeping.
func (x *shared[T]) push(ev T) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return false
	}
	x.queue.Push(ev)
	if x.state.load() == stateSleeping && x.wakePending.CompareAndSwap(false, true) {
		x.backend.Wake()
	}
	return true
}

func (x *shared[T]) pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.queue.Len()
}

// drain moves every queued value into buf, returning it.
func (x *shared[T]) drain(buf []T) []T {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.queue.Drain(func(v T) { buf = append(buf, v) })
	return buf
}

// close fails all subsequent sends, returning the number of dropped values.
func (x *shared[T]) close() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.closed = true
	x.state.store(stateTerminated)
	return x.queue.Clear()
}

// Proxy sends user events to an [EventLoop], from any goroutine. Copies of a
// Proxy are equivalent, and the zero value behaves as if the loop were
// closed.
type Proxy[T any] struct {
	s *shared[T]
}

// SendEvent queues ev for delivery as a [UserEvent], waking the loop if it
// is waiting. It never blocks on the loop. Events sent from the same
// goroutine are delivered in order, exactly once.
//
// Once the loop has been closed, SendEvent returns an
// *[EventLoopClosedError] carrying ev.
func (x Proxy[T]) SendEvent(ev T) error {
	if x.s == nil || !x.s.push(ev) {
		return &EventLoopClosedError[T]{Event: ev}
	}
	return nil
}
