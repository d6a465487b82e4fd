// Package winloop provides a cross-platform event loop, that turns native
// event sources (window systems, input devices, display hotplug, signals)
// into one ordered stream of typed events, delivered to a single handler.
//
// # Architecture
//
// An [EventLoop] owns exactly one [Backend], the component that talks to
// the native event source. Backends register themselves by name, from the
// init function of their package (see [RegisterBackend]), so applications
// select the platforms they support by importing backend packages:
//
//	import _ "github.com/joeycumines/go-winloop/backend/headless"
//
// The backend drives the loop through a [Runner], which owns all of the
// semantics: control flow, user event delivery, and the iteration
// structure. Backends with a blocking primitive (a file descriptor, a
// channel) implement [Pollable] and use [Pump]. Backends that own the
// thread (e.g. a game loop) call the Runner from their own callbacks.
//
// # Iterations
//
// Each iteration delivers, in order:
//  1. [NewEvents], with the reason the iteration started
//  2. native events, in the order the backend reports them
//  3. [UserEvent] values sent through a [Proxy], in FIFO order
//  4. [AboutToWait], exactly once
//
// The first iteration of a run also delivers [Resumed], after NewEvents.
// The last event of a run is always [LoopDestroyed].
//
// # Control Flow
//
// The handler sets a [ControlFlow] to choose how the loop waits before the
// next iteration: Poll (don't), Wait (until there is an event), or
// WaitUntil (an event or a deadline). ExitWithCode ends the loop after the
// current iteration, and is sticky: the handler can't revert it.
//
// [EventLoop.RunReturn] returns the exit code, and may be called again.
// [EventLoop.Run] exits the process with it.
//
// # Thread Safety
//
// Many native APIs only work from the main thread, so this package locks
// the main goroutine to it, during initialization. The event loop is bound
// to the goroutine that built it, and most backends require that to be the
// main goroutine.
//
// Only the following are safe to use from other goroutines:
//   - [Proxy.SendEvent], which never blocks
//   - [WindowTarget] methods
//   - [MonitorHandle] and [VideoMode] values, which are immutable snapshots
//
// # Configuration
//
// Options are passed to [NewBuilder]. The environment variables
// WINLOOP_BACKEND and WINLOOP_LOG_LEVEL select a backend, and enable JSON
// logging to stderr.
package winloop
