package winloop

import (
	"sync/atomic"
)

// constructionGuard reserves the single event loop a process may have.
type constructionGuard struct {
	held atomic.Bool
}

// loopGuard is the process-wide reservation.
var loopGuard constructionGuard

// guardToken is held by the live event loop, and released when it closes.
type guardToken struct {
	g        *constructionGuard
	released atomic.Bool
}

func (x *constructionGuard) acquire() (*guardToken, bool) {
	if !x.held.CompareAndSwap(false, true) {
		return nil, false
	}
	return &guardToken{g: x}, true
}

// release is idempotent.
func (x *guardToken) release() {
	if x != nil && x.released.CompareAndSwap(false, true) {
		x.g.held.Store(false)
	}
}

// abandoned is released if an event loop becomes unreachable without being
// closed. It must not reference the loop. The backend is left open, and the
// thread lock stays, as neither may be undone from the cleanup goroutine.
type abandoned struct {
	guard *guardToken
	// close fails sends from any remaining proxies.
	close func() int
}

func (x abandoned) release() {
	x.close()
	x.guard.release()
}
