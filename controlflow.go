package winloop

import (
	"strconv"
	"time"
)

// ControlFlowKind enumerates the states of a [ControlFlow].
type ControlFlowKind uint8

const (
	// ControlFlowPoll starts the next iteration as soon as the current one
	// is done, reporting any native events that arrived meanwhile.
	ControlFlowPoll ControlFlowKind = iota
	// ControlFlowWait blocks until a native event or user event arrives.
	ControlFlowWait
	// ControlFlowWaitUntil blocks until an event arrives or the deadline
	// passes, whichever happens first.
	ControlFlowWaitUntil
	// ControlFlowExit stops the loop. This state is sticky.
	ControlFlowExit
)

func (k ControlFlowKind) String() string {
	switch k {
	case ControlFlowPoll:
		return "Poll"
	case ControlFlowWait:
		return "Wait"
	case ControlFlowWaitUntil:
		return "WaitUntil"
	case ControlFlowExit:
		return "ExitWithCode"
	default:
		return "ControlFlowKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ControlFlow tells the event loop what to do once the current iteration's
// events have been handled. The zero value is Poll.
//
// Indicating Wait or WaitUntil only sets an upper bound on how long the loop
// may block; it may still be woken early, e.g. by a proxy. Once an
// ExitWithCode value has been observed by the loop it is sticky: any later
// write is reverted, and the loop finishes the current iteration then exits.
type ControlFlow struct {
	deadline time.Time
	code     int32
	kind     ControlFlowKind
}

// Poll returns a ControlFlow that never blocks.
func Poll() ControlFlow { return ControlFlow{} }

// Wait returns a ControlFlow that blocks until there is something to do.
func Wait() ControlFlow { return ControlFlow{kind: ControlFlowWait} }

// WaitUntil returns a ControlFlow that blocks until there is something to do,
// or until deadline, whichever comes first. A deadline in the past resumes
// immediately.
func WaitUntil(deadline time.Time) ControlFlow {
	return ControlFlow{kind: ControlFlowWaitUntil, deadline: deadline}
}

// ExitWithCode returns a ControlFlow that stops the loop with the given
// process exit code.
func ExitWithCode(code int32) ControlFlow {
	return ControlFlow{kind: ControlFlowExit, code: code}
}

// Exit is ExitWithCode(0).
func Exit() ControlFlow { return ExitWithCode(0) }

// Kind returns the state.
func (x ControlFlow) Kind() ControlFlowKind { return x.kind }

// Deadline returns the WaitUntil deadline, and false for any other state.
func (x ControlFlow) Deadline() (time.Time, bool) {
	if x.kind != ControlFlowWaitUntil {
		return time.Time{}, false
	}
	return x.deadline, true
}

// ExitCode returns the exit code, and false for any state other than
// ExitWithCode.
func (x ControlFlow) ExitCode() (int32, bool) {
	if x.kind != ControlFlowExit {
		return 0, false
	}
	return x.code, true
}

// IsExit reports whether x is an ExitWithCode state.
func (x ControlFlow) IsExit() bool { return x.kind == ControlFlowExit }

func (x ControlFlow) String() string {
	switch x.kind {
	case ControlFlowWaitUntil:
		return "WaitUntil(" + x.deadline.Format(time.RFC3339Nano) + ")"
	case ControlFlowExit:
		return "ExitWithCode(" + strconv.FormatInt(int64(x.code), 10) + ")"
	default:
		return x.kind.String()
	}
}

// SetPoll is shorthand for *x = Poll().
func (x *ControlFlow) SetPoll() { *x = Poll() }

// SetWait is shorthand for *x = Wait().
func (x *ControlFlow) SetWait() { *x = Wait() }

// SetWaitUntil is shorthand for *x = WaitUntil(deadline).
func (x *ControlFlow) SetWaitUntil(deadline time.Time) { *x = WaitUntil(deadline) }

// SetExitWithCode is shorthand for *x = ExitWithCode(code).
func (x *ControlFlow) SetExitWithCode(code int32) { *x = ExitWithCode(code) }

// SetExit is shorthand for *x = Exit().
func (x *ControlFlow) SetExit() { *x = Exit() }
