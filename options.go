package winloop

import (
	"errors"
	"time"

	"github.com/joeycumines/logiface"
)

// loopOptions holds configuration options for EventLoop creation.
type loopOptions struct {
	logger               *logiface.Logger[logiface.Event]
	backendFactory       BackendFactory
	exit                 func(code int)
	backendName          string
	slowHandlerThreshold time.Duration
	anyThread            bool
	deviceEventFilter    DeviceEventFilter
}

// LoopOption configures an EventLoop, see [NewBuilder].
type LoopOption interface {
	applyLoop(*loopOptions) error
}

// loopOptionImpl implements LoopOption.
type loopOptionImpl struct {
	applyLoopFunc func(*loopOptions) error
}

func (l *loopOptionImpl) applyLoop(opts *loopOptions) error {
	return l.applyLoopFunc(opts)
}

// WithLogger sets the structured logger used by the loop and passed to the
// backend. A nil logger disables logging, which is the default unless the
// WINLOOP_LOG_LEVEL environment variable is set.
func WithLogger(logger *logiface.Logger[logiface.Event]) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithBackend selects a registered backend by name, taking precedence over
// the WINLOOP_BACKEND environment variable. See [RegisterBackend].
func WithBackend(name string) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if name == "" {
			return errors.New("winloop: empty backend name")
		}
		opts.backendName = name
		return nil
	}}
}

// WithBackendFactory bypasses the registry, constructing the backend using
// factory.
func WithBackendFactory(factory BackendFactory) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if factory == nil {
			return errors.New("winloop: nil backend factory")
		}
		opts.backendFactory = factory
		return nil
	}}
}

// WithAnyThread allows building the loop off the main thread, even if the
// backend requires it. This is a significant portability hazard, and is
// intended for tests and for platforms that tolerate it.
func WithAnyThread(enabled bool) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.anyThread = enabled
		return nil
	}}
}

// WithSlowHandlerThreshold sets the handler duration beyond which a
// (rate limited) warning is logged. Zero disables the warning. Defaults to
// 100ms.
func WithSlowHandlerThreshold(d time.Duration) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if d < 0 {
			return errors.New("winloop: negative slow handler threshold")
		}
		opts.slowHandlerThreshold = d
		return nil
	}}
}

// WithDeviceEventFilter sets the initial device event filter, see
// [WindowTarget.SetDeviceEventFilter].
func WithDeviceEventFilter(filter DeviceEventFilter) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if filter > FilterNever {
			return errors.New("winloop: invalid device event filter")
		}
		opts.deviceEventFilter = filter
		return nil
	}}
}

// withExitFunc replaces os.Exit, for Run.
func withExitFunc(exit func(code int)) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.exit = exit
		return nil
	}}
}

// resolveLoopOptions applies LoopOption instances to loopOptions.
func resolveLoopOptions(opts []LoopOption) (*loopOptions, error) {
	cfg := &loopOptions{
		slowHandlerThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
