package winloop

import (
	"runtime"

	"github.com/joeycumines/go-winloop/internal/goroutine"
)

func init() {
	// Backends that require the main thread need the main goroutine to stay
	// on it.
	runtime.LockOSThread()
}

// affinity binds a value to the goroutine, and OS thread, that created it.
type affinity struct {
	id     uint64
	locked bool
}

// bindAffinity locks the calling goroutine to its OS thread, until release.
func bindAffinity() affinity {
	runtime.LockOSThread()
	return affinity{id: goroutine.ID(), locked: true}
}

// check panics with ErrWrongThread if called from any other goroutine.
func (x *affinity) check() {
	if goroutine.ID() != x.id {
		panic(ErrWrongThread)
	}
}

func (x *affinity) release() {
	if x.locked {
		x.locked = false
		runtime.UnlockOSThread()
	}
}
