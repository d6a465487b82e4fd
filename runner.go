package winloop

import (
	"time"
)

// WaitMode is how a backend should wait, see [WaitPlan].
type WaitMode uint8

const (
	// WaitNone means don't block: collect whatever is ready, then continue.
	WaitNone WaitMode = iota
	// WaitForever means block until a native event arrives, or Wake is
	// called.
	WaitForever
	// WaitDeadline means block as for WaitForever, but no later than the
	// deadline.
	WaitDeadline
)

func (m WaitMode) String() string {
	switch m {
	case WaitNone:
		return "None"
	case WaitForever:
		return "Forever"
	case WaitDeadline:
		return "Deadline"
	default:
		return "Unknown"
	}
}

// WaitPlan tells a backend how to wait before the next iteration.
type WaitPlan struct {
	// Deadline is set for WaitDeadline.
	Deadline time.Time
	Mode     WaitMode
}

// Timeout returns how long to block, relative to now. Negative means block
// without a timeout.
func (x WaitPlan) Timeout(now time.Time) time.Duration {
	switch x.Mode {
	case WaitForever:
		return -1
	case WaitDeadline:
		if d := x.Deadline.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// TimeoutMillis is Timeout in whole milliseconds, rounded up, clamped to the
// int32 range, as expected by poll(2) style APIs (-1 is infinite).
func (x WaitPlan) TimeoutMillis(now time.Time) int {
	d := x.Timeout(now)
	if d < 0 {
		return -1
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms > 1<<31-1 {
		ms = 1<<31 - 1
	}
	return int(ms)
}

// Expired reports whether a WaitDeadline plan's deadline has passed.
func (x WaitPlan) Expired(now time.Time) bool {
	return x.Mode == WaitDeadline && !now.Before(x.Deadline)
}

// engine is implemented by EventLoop, behind a Runner.
type engine interface {
	begin()
	dispatch(ev Event)
	cleared() bool
	plan() WaitPlan
	exiting() bool
}

// Runner is the event loop as seen by a [Backend]. Every iteration follows
// the same sequence, which Pump implements for pollable backends:
//
//  1. Begin, which reports NewEvents
//  2. Dispatch, for each native event that is ready, in order
//  3. Cleared, which delivers queued user events then AboutToWait, and
//     returns false once the loop is exiting, after LoopDestroyed
//  4. Plan, then wait as planned, before starting again
//
// Runner methods must be called from the goroutine that called Backend.Run.
type Runner struct {
	e engine
}

// Begin starts an iteration.
func (x *Runner) Begin() { x.e.begin() }

// Dispatch delivers a native event, subject to the device event filter.
// Nil events are ignored.
func (x *Runner) Dispatch(ev Event) { x.e.dispatch(ev) }

// Cleared ends the iteration. If it returns false the backend must return
// from Run, without calling any further Runner methods.
func (x *Runner) Cleared() bool { return x.e.cleared() }

// Plan returns how to wait before the next iteration. Once it has been
// called, Backend.Wake may be called at any time, to cut the wait short.
func (x *Runner) Plan() WaitPlan { return x.e.plan() }

// Exiting reports whether the handler has requested exit, meaning the
// current iteration is the last.
func (x *Runner) Exiting() bool { return x.e.exiting() }
