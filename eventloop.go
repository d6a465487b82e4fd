package winloop

import (
	"os"
	"runtime"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// Handler is invoked synchronously, on the loop's goroutine, for every
// event. It may change cf to control what the loop does once the current
// iteration's events are handled. Once cf has been observed as an exit, it
// can no longer be changed.
//
// Handlers must not block for long: nothing is delivered in the meantime.
type Handler[T any] func(ev Event, target *WindowTarget[T], cf *ControlFlow)

// EventLoop delivers native events, and user events of type T sent through
// a [Proxy], to a [Handler].
//
// An EventLoop is bound to the goroutine that built it, which is locked to
// its OS thread until the loop is closed. Calling any method from another
// goroutine panics with ErrWrongThread.
//
// A loop must be closed, by Run or Close, before another can be built. If an
// unclosed loop is garbage collected, its proxies fail and another loop may
// be built, but its backend is never closed.
type EventLoop[T any] struct {
	opts        *loopOptions
	log         *logiface.Logger[logiface.Event]
	shared      *shared[T]
	target      *WindowTarget[T]
	guard       *guardToken
	slowLimiter *catrate.Limiter
	handler     Handler[T]
	// focused is the set of focused windows, for FilterUnfocused.
	focused     map[WindowID]struct{}
	userBuf     []T
	backendName string
	// waitStart and waitFlow describe the last plan, for NewEvents.
	waitStart time.Time
	waitFlow  ControlFlow
	cf        ControlFlow
	affinity  affinity
	cleanup   runtime.Cleanup
	// iteration counts Begin calls, in the current run.
	iteration uint64
	running   bool
	destroyed bool
	closed    bool
	// windowed is set once the backend reports a window being created or
	// focused.
	windowed bool
}

// CreateProxy returns a handle for sending user events from any goroutine.
func (x *EventLoop[T]) CreateProxy() Proxy[T] {
	x.affinity.check()
	return Proxy[T]{s: x.shared}
}

// WindowTarget returns the query view of the loop, the same value that is
// passed to the handler.
func (x *EventLoop[T]) WindowTarget() *WindowTarget[T] {
	x.affinity.check()
	return x.target
}

// BackendName returns the name the backend was registered under, or
// "custom".
func (x *EventLoop[T]) BackendName() string {
	x.affinity.check()
	return x.backendName
}

// Run runs the loop until the handler requests exit, then closes the loop
// and exits the process, with the requested code. It never returns.
func (x *EventLoop[T]) Run(handler Handler[T]) {
	code := x.RunReturn(handler)
	if err := x.Close(); err != nil {
		x.log.Err().Err(err).Log(`failed to close event loop`)
	}
	exit := x.opts.exit
	if exit == nil {
		exit = os.Exit
	}
	exit(code)
	panic("winloop: exit returned")
}

// RunReturn runs the loop until the handler requests exit, returning the
// exit code. The control flow starts as Poll on every call. The last event
// delivered is always LoopDestroyed.
//
// If the backend fails, e.g. because the display connection was lost, the
// error is logged and 1 is returned. The loop may be run again, afterwards.
//
// It panics if the loop is closed, or already running.
func (x *EventLoop[T]) RunReturn(handler Handler[T]) int {
	x.affinity.check()
	switch {
	case x.closed:
		panic(ErrLoopClosed)
	case x.running:
		panic(ErrReentrantRun)
	case handler == nil:
		panic("winloop: nil handler")
	}

	x.running = true
	x.handler = handler
	x.cf = Poll()
	x.waitFlow = Poll()
	x.iteration = 0
	x.destroyed = false
	x.shared.state.store(stateRunning)
	defer func() {
		x.running = false
		x.handler = nil
		if !x.shared.state.tryTransition(stateRunning, stateAwake) {
			x.shared.state.tryTransition(stateSleeping, stateAwake)
		}
	}()

	x.log.Debug().Str(`backend`, x.backendName).Log(`event loop started`)

	err := x.shared.backend.Run(&Runner{e: x})
	if err != nil {
		x.log.Err().Err(err).Str(`backend`, x.backendName).Log(`event loop backend failed`)
		x.destroy()
		return 1
	}
	x.destroy()

	code, _ := x.cf.ExitCode()
	x.log.Debug().Int64(`code`, int64(code)).Log(`event loop exited`)
	return int(code)
}

// Close destroys the loop, releasing the backend and allowing another loop
// to be built. Proxies fail from then on, and undelivered user events are
// dropped. Close is idempotent, and must not be called while running.
// Loops run with RunReturn must be closed explicitly.
func (x *EventLoop[T]) Close() error {
	x.affinity.check()
	if x.running {
		return ErrReentrantRun
	}
	if x.closed {
		return nil
	}
	x.closed = true
	x.cleanup.Stop()
	if n := x.shared.close(); n > 0 {
		x.log.Warning().Int(`dropped`, n).Log(`dropped undelivered user events`)
	}
	err := x.target.shutdown()
	x.guard.release()
	x.affinity.release()
	return err
}

// emit calls the handler, enforcing sticky exit.
func (x *EventLoop[T]) emit(ev Event) {
	prev := x.cf
	start := time.Now()
	x.handler(ev, x.target, &x.cf)
	if prev.IsExit() {
		x.cf = prev
	}
	x.logSlowHandler(ev, time.Since(start))
}

// destroy emits LoopDestroyed, once per run.
func (x *EventLoop[T]) destroy() {
	if !x.destroyed {
		x.destroyed = true
		x.emit(LoopDestroyed{})
	}
}

func (x *EventLoop[T]) begin() {
	x.shared.state.tryTransition(stateSleeping, stateRunning)
	x.shared.wakePending.Store(false)

	x.iteration++
	var cause StartCause
	switch {
	case x.iteration == 1:
		cause.Kind = CauseInit
	case x.waitFlow.Kind() == ControlFlowWait:
		cause = StartCause{Kind: CauseWaitCancelled, Start: x.waitStart}
	case x.waitFlow.Kind() == ControlFlowWaitUntil:
		deadline, _ := x.waitFlow.Deadline()
		cause = StartCause{Kind: CauseWaitCancelled, Start: x.waitStart, RequestedResume: deadline}
		if !time.Now().Before(deadline) {
			cause.Kind = CauseResumeTimeReached
		}
	default:
		cause.Kind = CausePoll
	}

	x.emit(NewEvents{Cause: cause})
	if cause.Kind == CauseInit {
		x.emit(Resumed{})
	}
}

func (x *EventLoop[T]) dispatch(ev Event) {
	switch e := ev.(type) {
	case nil:
		return
	case WindowEvent:
		switch w := e.Event.(type) {
		case Created:
			x.windowed = true
		case Focused:
			x.windowed = true
			if w.Focused {
				x.focused[e.WindowID] = struct{}{}
			} else {
				delete(x.focused, e.WindowID)
			}
		case Destroyed:
			delete(x.focused, e.WindowID)
		}
	case DeviceEvent:
		if !x.deviceEventAllowed() {
			return
		}
	}
	x.emit(ev)
}

// deviceEventAllowed applies the filter. FilterUnfocused only applies once
// the backend has reported a window being created or focused, so windowless
// backends deliver device events, even after e.g. a CloseRequested for a
// window that was never created.
func (x *EventLoop[T]) deviceEventAllowed() bool {
	switch x.target.DeviceEventFilter() {
	case FilterAlways:
		return false
	case FilterNever:
		return true
	default:
		return !x.windowed || len(x.focused) != 0
	}
}

func (x *EventLoop[T]) cleared() bool {
	x.userBuf = x.shared.drain(x.userBuf[:0])
	for i, v := range x.userBuf {
		var zero T
		x.userBuf[i] = zero
		x.emit(UserEvent[T]{Payload: v})
	}
	x.emit(AboutToWait{})
	if x.cf.IsExit() {
		x.destroy()
		return false
	}
	return true
}

func (x *EventLoop[T]) plan() WaitPlan {
	x.waitFlow = x.cf
	x.waitStart = time.Now()

	var p WaitPlan
	switch x.cf.Kind() {
	case ControlFlowWait:
		p.Mode = WaitForever
	case ControlFlowWaitUntil:
		p.Mode = WaitDeadline
		p.Deadline, _ = x.cf.Deadline()
	default:
		return p
	}

	// check-then-sleep: publish the intent to sleep, then recheck the queue
	if !x.shared.state.tryTransition(stateRunning, stateSleeping) && x.shared.state.load() != stateSleeping {
		return WaitPlan{}
	}
	if x.shared.pending() != 0 {
		x.shared.state.tryTransition(stateSleeping, stateRunning)
		return WaitPlan{}
	}
	return p
}

func (x *EventLoop[T]) exiting() bool {
	return x.cf.IsExit()
}
