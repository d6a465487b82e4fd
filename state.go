package winloop

import (
	"sync/atomic"
)

// loopState is the run state of an event loop, shared with proxies so they
// know when a wake is required.
//
// State Machine:
//
//	stateAwake → stateRunning          [RunReturn]
//	stateRunning → stateSleeping       [Runner.Plan via CAS]
//	stateSleeping → stateRunning       [Runner.Plan / Runner.Begin via CAS]
//	stateRunning → stateAwake          [RunReturn returns]
//	any → stateTerminated              [Close]
//	stateTerminated → (terminal)
//
// Use tryTransition (CAS) for the temporary states, and store only for
// stateTerminated, or when the loop goroutine is the only writer.
type loopState uint32

const (
	// stateAwake indicates the loop exists, but is not running.
	stateAwake loopState = iota
	// stateRunning indicates the loop is dispatching events.
	stateRunning
	// stateSleeping indicates the loop is, or is about to be, blocked in the
	// backend's native wait, and must be woken to observe user events.
	stateSleeping
	// stateTerminated indicates the loop has been closed.
	stateTerminated
)

func (s loopState) String() string {
	switch s {
	case stateAwake:
		return "Awake"
	case stateRunning:
		return "Running"
	case stateSleeping:
		return "Sleeping"
	case stateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state holder, with cache-line padding.
type fastState struct { // betteralign:ignore
	_ [64]byte      //nolint:unused
	v atomic.Uint32 // loopState
	_ [60]byte      //nolint:unused
}

func (s *fastState) load() loopState {
	return loopState(s.v.Load())
}

func (s *fastState) store(state loopState) {
	s.v.Store(uint32(state))
}

func (s *fastState) tryTransition(from, to loopState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
