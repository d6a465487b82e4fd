package winloop

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failEvent makes fakeBackend.Drain fail, with ErrDisplayDisconnected.
type failEvent struct{}

func (failEvent) ImplementsEvent() {}

// fakeBackend is a pollable backend fed through a channel.
type fakeBackend struct {
	events     chan Event
	wake       chan struct{}
	sleeping   chan WaitPlan
	monitors   []MonitorHandle
	buffered   []Event
	cursor     PhysicalPosition
	cursorErr  error
	runErr     error
	mainThread bool
	closed     atomic.Int32
	wakes      atomic.Int32

	mu       sync.Mutex
	theme    Theme
	badge    int
	progress *ProgressBarState
	filter   *DeviceEventFilter
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		events:    make(chan Event, 64),
		wake:      make(chan struct{}, 1),
		sleeping:  make(chan WaitPlan, 64),
		cursorErr: ErrNotSupported,
		monitors: []MonitorHandle{
			NewMonitorHandle(MonitorInfo{ID: 2, Name: "right", X: 1920, Size: PhysicalSize{Width: 1920, Height: 1080}}),
			NewMonitorHandle(MonitorInfo{ID: 1, Name: "left", Size: PhysicalSize{Width: 1920, Height: 1080}}),
		},
	}
}

func (b *fakeBackend) factory() BackendFactory {
	return func(BackendConfig) (Backend, error) { return b, nil }
}

func (b *fakeBackend) Run(r *Runner) error {
	if b.runErr != nil {
		return b.runErr
	}
	return Pump(r, b)
}

func (b *fakeBackend) Wait(plan WaitPlan) error {
	if plan.Mode == WaitNone {
		return nil
	}
	var timeout <-chan time.Time
	if plan.Mode == WaitDeadline {
		timer := time.NewTimer(plan.Timeout(time.Now()))
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case b.sleeping <- plan:
	default:
	}
	select {
	case <-b.wake:
	case ev := <-b.events:
		b.buffered = append(b.buffered, ev)
	case <-timeout:
	}
	return nil
}

func (b *fakeBackend) Drain(emit func(Event)) error {
	for {
		var ev Event
		if len(b.buffered) != 0 {
			ev, b.buffered = b.buffered[0], b.buffered[1:]
		} else {
			select {
			case ev = <-b.events:
			default:
				return nil
			}
		}
		if _, ok := ev.(failEvent); ok {
			return ErrDisplayDisconnected
		}
		emit(ev)
	}
}

func (b *fakeBackend) Wake() {
	b.wakes.Add(1)
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *fakeBackend) AvailableMonitors() []MonitorHandle { return b.monitors }

func (b *fakeBackend) PrimaryMonitor() (MonitorHandle, bool) {
	for _, m := range b.monitors {
		if m.ID() == 1 {
			return m, true
		}
	}
	return MonitorHandle{}, false
}

func (b *fakeBackend) MonitorFromPoint(x, y float64) (MonitorHandle, bool) {
	return MonitorAt(b.monitors, x, y)
}

func (b *fakeBackend) CursorPosition() (PhysicalPosition, error) { return b.cursor, b.cursorErr }

func (b *fakeBackend) Close() error {
	b.closed.Add(1)
	return nil
}

func (b *fakeBackend) RequiresMainThread() bool { return b.mainThread }

func (b *fakeBackend) SetTheme(theme Theme) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.theme = theme
}

func (b *fakeBackend) SetBadgeCount(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.badge = count
}

func (b *fakeBackend) SetProgressBar(state ProgressBarState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.progress = &state
}

func (b *fakeBackend) SetDeviceEventFilter(filter DeviceEventFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = &filter
}

// buildFake builds a loop on b, closing it at the end of the test.
func buildFake[T any](t *testing.T, b *fakeBackend, opts ...LoopOption) *EventLoop[T] {
	t.Helper()
	l := NewBuilder[T](append([]LoopOption{WithBackendFactory(b.factory())}, opts...)...).Build()
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// recoverError calls fn, returning the error it panicked with.
func recoverError(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		var ok bool
		if err, ok = r.(error); !ok {
			t.Fatalf("expected error panic, got %T: %v", r, r)
		}
	}()
	fn()
	return nil
}

func init() {
	RegisterBackend("zz-test-broken", 1000, func(BackendConfig) (Backend, error) {
		return nil, errors.New("no display")
	})
	RegisterBackend("zz-test-ok", 999, func(cfg BackendConfig) (Backend, error) {
		b := newFakeBackend()
		if v, ok := Lookup[int](cfg.Attributes, "test.badge"); ok {
			b.badge = v
		}
		return b, nil
	})
}

func TestRegistry_order(t *testing.T) {
	names := Backends()
	require.GreaterOrEqual(t, len(names), 2)
	assert.Equal(t, []string{"zz-test-broken", "zz-test-ok"}, names[:2])
}

func TestRegisterBackend_panics(t *testing.T) {
	f := func(BackendConfig) (Backend, error) { return nil, nil }
	assert.Panics(t, func() { RegisterBackend("", 0, f) })
	assert.Panics(t, func() { RegisterBackend("zz-test-nil", 0, nil) })
	assert.Panics(t, func() { RegisterBackend("zz-test-ok", 0, f) })
}

func TestBuild_fallsBackToNextBackend(t *testing.T) {
	l := NewBuilder[int]().WithAttributes(Attributes{"test.badge": 7}).Build()
	defer l.Close()
	assert.Equal(t, "zz-test-ok", l.BackendName())
	b := l.shared.backend.(*fakeBackend)
	assert.Equal(t, 7, b.badge)
}

func TestBuild_explicitBackendFailure(t *testing.T) {
	err := recoverError(t, func() { NewBuilder[int](WithBackend("zz-test-broken")).Build() })
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "zz-test-broken", be.Name)
	// the guard must have been released
	NewBuilder[int](WithBackend("zz-test-ok")).Build().Close()
}

func TestBuild_unknownBackend(t *testing.T) {
	err := recoverError(t, func() { NewBuilder[int](WithBackend("nope")).Build() })
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.ErrorContains(t, err, `"nope"`)
}

func TestBuild_unknownBackendFromEnv(t *testing.T) {
	t.Setenv(EnvBackend, "also-nope")
	err := recoverError(t, func() { NewBuilder[int]().Build() })
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestBuild_backendFromEnv(t *testing.T) {
	t.Setenv(EnvBackend, "zz-test-ok")
	l := New()
	defer l.Close()
	assert.Equal(t, "zz-test-ok", l.BackendName())
}

func TestBuild_optionTakesPrecedenceOverEnv(t *testing.T) {
	t.Setenv(EnvBackend, "also-nope")
	l := NewBuilder[int](WithBackend("zz-test-ok")).Build()
	defer l.Close()
	assert.Equal(t, "zz-test-ok", l.BackendName())
}

func TestBuild_invalidLogLevelEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "chatty")
	err := recoverError(t, func() { New() })
	assert.ErrorContains(t, err, EnvLogLevel)
}
