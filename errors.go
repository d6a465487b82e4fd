package winloop

import (
	"errors"
	"fmt"
)

var (
	// ErrLoopAlreadyExists is the panic value when a second event loop is
	// built while another one is alive.
	ErrLoopAlreadyExists = errors.New("winloop: creating an EventLoop multiple times is not supported")

	// ErrNotMainThread is the panic value when a backend that requires the
	// main thread is built from any other goroutine.
	ErrNotMainThread = errors.New("winloop: initializing the event loop outside of the main thread is a significant cross-platform compatibility hazard; use WithAnyThread if you really, absolutely need to")

	// ErrWrongThread is the panic value when an event loop or window target
	// method that is bound to the creating thread is called from another
	// goroutine.
	ErrWrongThread = errors.New("winloop: event loop used from a goroutine other than the one that created it")

	// ErrReentrantRun is the panic value when Run or RunReturn is called from
	// within the handler of the same loop.
	ErrReentrantRun = errors.New("winloop: event loop is already running")

	// ErrLoopClosed is the panic value when a closed event loop is run.
	ErrLoopClosed = errors.New("winloop: event loop has been closed")

	// ErrUnknownBackend is the panic value when the requested backend is not
	// registered.
	ErrUnknownBackend = errors.New("winloop: unknown backend")

	// ErrNoBackend is the panic value when no registered backend could be
	// initialized.
	ErrNoBackend = errors.New("winloop: no backend could be initialized")

	// ErrDisplayDisconnected should be returned by a backend when its
	// connection to the display server or session is lost. The loop exits
	// with code 1.
	ErrDisplayDisconnected = errors.New("winloop: display connection lost")

	// ErrNotSupported is returned by queries the backend cannot answer.
	ErrNotSupported = errors.New("winloop: not supported by backend")
)

// EventLoopClosedError is returned by [Proxy.SendEvent] once the event loop
// no longer exists. It carries the event that could not be delivered.
type EventLoopClosedError[T any] struct {
	Event T
}

func (e *EventLoopClosedError[T]) Error() string {
	return "Tried to wake up a closed `EventLoop`"
}

// Is matches any *EventLoopClosedError[T], as well as ErrLoopClosed.
func (e *EventLoopClosedError[T]) Is(target error) bool {
	if target == ErrLoopClosed {
		return true
	}
	_, ok := target.(*EventLoopClosedError[T])
	return ok
}

// BadIconKind enumerates the reasons an icon buffer is rejected.
type BadIconKind uint8

const (
	// BadIconDimensionsZero is reported when width or height is zero.
	BadIconDimensionsZero BadIconKind = iota + 1
	// BadIconByteCountNotDivisibleBy4 is reported when the buffer length is
	// not a whole number of RGBA pixels.
	BadIconByteCountNotDivisibleBy4
	// BadIconDimensionsMultiplyOverflow is reported when width * height
	// overflows.
	BadIconDimensionsMultiplyOverflow
	// BadIconDimensionsVsPixelCount is reported when width * height does not
	// match the number of pixels in the buffer.
	BadIconDimensionsVsPixelCount
)

// BadIconError describes why [IconFromRGBA] rejected its input. The fields
// that apply depend on Kind.
type BadIconError struct {
	Kind      BadIconKind
	ByteCount int
	Width     uint32
	Height    uint32
	// Expected and Actual are pixel counts, for BadIconDimensionsVsPixelCount.
	Expected uint64
	Actual   uint64
}

func (e *BadIconError) Error() string {
	switch e.Kind {
	case BadIconDimensionsZero:
		return fmt.Sprintf("The specified dimensions (%dx%d) must be greater than zero.", e.Width, e.Height)
	case BadIconByteCountNotDivisibleBy4:
		return fmt.Sprintf("The length of the `rgba` argument (%d) isn't divisible by 4, making it impossible to interpret as 32bpp RGBA pixels.", e.ByteCount)
	case BadIconDimensionsMultiplyOverflow:
		return fmt.Sprintf("The specified dimensions multiplication has overflowed (%dx%d).", e.Width, e.Height)
	case BadIconDimensionsVsPixelCount:
		return fmt.Sprintf("The specified dimensions (%dx%d) don't match the number of pixels supplied by the `rgba` argument (%d). For those dimensions, the expected pixel count is %d.", e.Width, e.Height, e.Actual, e.Expected)
	default:
		return "winloop: bad icon"
	}
}

// Is matches any *BadIconError with the same Kind, or any Kind if the target
// Kind is zero.
func (e *BadIconError) Is(target error) bool {
	t, ok := target.(*BadIconError)
	return ok && (t.Kind == 0 || t.Kind == e.Kind)
}

// BackendError wraps a failure to initialize a named backend.
type BackendError struct {
	Err  error
	Name string
}

func (e *BackendError) Error() string {
	return "winloop: backend " + e.Name + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }
