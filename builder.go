package winloop

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joeycumines/go-winloop/internal/goroutine"
)

// Builder configures and builds the [EventLoop], for user events of type T.
type Builder[T any] struct {
	attrs Attributes
	opts  []LoopOption
}

// NewBuilder returns a builder for an event loop with user events of type T.
func NewBuilder[T any](opts ...LoopOption) *Builder[T] {
	return &Builder[T]{opts: opts}
}

// New builds an event loop without user events, using the default options.
func New() *EventLoop[struct{}] {
	return NewBuilder[struct{}]().Build()
}

// WithAttributes merges attrs into the attributes passed to the backend
// factory.
func (x *Builder[T]) WithAttributes(attrs Attributes) *Builder[T] {
	if x.attrs == nil {
		x.attrs = make(Attributes, len(attrs))
	}
	for k, v := range attrs {
		x.attrs[k] = v
	}
	return x
}

// Build builds the event loop, binding it to the calling goroutine.
//
// Misuse is fatal, so Build panics if: an option is invalid; another event
// loop exists (ErrLoopAlreadyExists); the requested backend is not
// registered (ErrUnknownBackend) or fails to initialize; no registered
// backend initializes (ErrNoBackend); or the backend requires the main
// thread, and Build was called from any other goroutine, without
// WithAnyThread (ErrNotMainThread).
//
// The backend is chosen, in order of precedence, by WithBackendFactory,
// WithBackend, the WINLOOP_BACKEND environment variable, or else the
// highest priority registered backend that initializes.
func (x *Builder[T]) Build() *EventLoop[T] {
	opts, err := resolveLoopOptions(x.opts)
	if err != nil {
		panic(err)
	}

	env, err := loadEnvConfig(os.Getenv)
	if err != nil {
		panic(err)
	}

	logger := opts.logger
	if logger == nil && env.logLevelSet {
		logger = NewLogger(os.Stderr, env.logLevel)
	}

	token, ok := loopGuard.acquire()
	if !ok {
		panic(ErrLoopAlreadyExists)
	}
	var success bool
	defer func() {
		if !success {
			token.release()
		}
	}()

	attrs := make(Attributes, len(x.attrs))
	for k, v := range x.attrs {
		attrs[k] = v
	}

	backend, name, err := newBackend(opts, env, BackendConfig{Attributes: attrs, Logger: logger})
	if err != nil {
		panic(err)
	}

	if b, ok := backend.(MainThreadBound); ok && b.RequiresMainThread() && !opts.anyThread && !goroutine.IsMain() {
		if err := backend.Close(); err != nil {
			logger.Err().Err(err).Str(`backend`, name).Log(`failed to close backend`)
		}
		panic(fmt.Errorf("%w (backend %s)", ErrNotMainThread, name))
	}

	l := &EventLoop[T]{
		opts:        opts,
		log:         logger,
		shared:      &shared[T]{backend: backend},
		guard:       token,
		slowLimiter: newSlowHandlerLimiter(),
		focused:     make(map[WindowID]struct{}),
		backendName: name,
	}
	l.target = &WindowTarget[T]{backend: backend, log: logger}
	l.target.SetDeviceEventFilter(opts.deviceEventFilter)
	l.affinity = bindAffinity()
	l.cleanup = runtime.AddCleanup(l, abandoned.release, abandoned{guard: token, close: l.shared.close})

	logger.Info().
		Str(`backend`, name).
		Bool(`main_thread`, goroutine.IsMain()).
		Log(`event loop built`)

	success = true
	return l
}
