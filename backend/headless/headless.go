// Package headless implements a winloop backend without a display, fed by
// events injected from any goroutine. It is useful for tests, servers, and
// as a fallback when no other backend is available.
//
// Importing this package registers the backend as "headless", with the
// lowest priority. Attributes (see [winloop.Attributes]):
//   - "headless.monitors" ([]winloop.MonitorInfo): simulated monitors
//   - "headless.primary" (uint64): id of the primary monitor
//   - "headless.buffer" (int): capacity of the injection buffer
package headless

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"golang.org/x/exp/slices"

	"github.com/joeycumines/go-winloop"
	"github.com/joeycumines/go-winloop/internal/longpoll"
)

// Name is the registered backend name.
const Name = "headless"

// Priority is the registered priority, lower than any display backend.
const Priority = -100

// Attribute keys.
const (
	AttrMonitors = "headless.monitors"
	AttrPrimary  = "headless.primary"
	AttrBuffer   = "headless.buffer"
)

func init() {
	winloop.RegisterBackend(Name, Priority, FromConfig)
}

// ErrClosed is returned by Inject once the backend is closed.
var ErrClosed = errors.New("headless: backend closed")

// DefaultMonitor is the monitor simulated when none are configured.
var DefaultMonitor = winloop.MonitorInfo{
	ID:          1,
	Name:        "HEADLESS-1",
	Size:        winloop.PhysicalSize{Width: 1920, Height: 1080},
	ScaleFactor: 1,
	VideoModes: []winloop.VideoModeInfo{
		{Size: winloop.PhysicalSize{Width: 1920, Height: 1080}, BitDepth: 32, RefreshRate: 60},
		{Size: winloop.PhysicalSize{Width: 1280, Height: 720}, BitDepth: 32, RefreshRate: 60},
	},
}

// Options configures a Backend.
type Options struct {
	Logger *logiface.Logger[logiface.Event]
	// Monitors defaults to DefaultMonitor. Use an empty, non-nil slice for
	// no monitors.
	Monitors []winloop.MonitorInfo
	// Primary is the id of the primary monitor, defaulting to the first.
	Primary *uint64
	// Buffer is the number of injected events that may be pending before
	// Inject blocks. Defaults to 256.
	Buffer int
}

// Backend is the headless backend. Its methods are safe for concurrent use.
type Backend struct {
	log      *logiface.Logger[logiface.Event]
	inbox    chan item
	done     chan struct{}
	buffered []item
	monitors []winloop.MonitorHandle
	primary  uint64
	cursor   atomic.Pointer[winloop.PhysicalPosition]
	settings struct {
		progress winloop.ProgressBarState
		theme    winloop.Theme
		badge    int
	}
	mu        sync.RWMutex
	closeOnce sync.Once
}

type item struct {
	ev         winloop.Event
	disconnect bool
}

// New returns a backend. Use [Backend.Factory] to build an event loop on it.
func New(opts Options) *Backend {
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.Monitors == nil {
		opts.Monitors = []winloop.MonitorInfo{DefaultMonitor}
	}
	b := &Backend{
		log:   opts.Logger,
		inbox: make(chan item, opts.Buffer),
		done:  make(chan struct{}),
	}
	b.setMonitors(opts.Monitors, opts.Primary)
	return b
}

// FromConfig is the registered factory.
func FromConfig(cfg winloop.BackendConfig) (winloop.Backend, error) {
	opts := Options{Logger: cfg.Logger}
	if v, ok := winloop.Lookup[[]winloop.MonitorInfo](cfg.Attributes, AttrMonitors); ok {
		opts.Monitors = v
	}
	if v, ok := winloop.Lookup[uint64](cfg.Attributes, AttrPrimary); ok {
		opts.Primary = &v
	}
	if v, ok := winloop.Lookup[int](cfg.Attributes, AttrBuffer); ok {
		opts.Buffer = v
	}
	return New(opts), nil
}

// Factory returns a factory that always returns b, adopting the loop's
// logger if b has none.
func (b *Backend) Factory() winloop.BackendFactory {
	return func(cfg winloop.BackendConfig) (winloop.Backend, error) {
		if b.log == nil {
			b.log = cfg.Logger
		}
		return b, nil
	}
}

// Inject queues a native event, blocking while the buffer is full. It
// returns ErrClosed once the backend is closed.
func (b *Backend) Inject(ev winloop.Event) error {
	if ev == nil {
		return errors.New("headless: nil event")
	}
	return b.send(item{ev: ev})
}

// Disconnect simulates losing the display connection: the loop stops after
// the events injected before it, and RunReturn returns 1.
func (b *Backend) Disconnect() error {
	return b.send(item{disconnect: true})
}

func (b *Backend) send(it item) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.inbox <- it:
		return nil
	case <-b.done:
		return ErrClosed
	}
}

// Run implements winloop.Backend.
func (b *Backend) Run(r *winloop.Runner) error {
	b.log.Debug().Log(`headless backend running`)
	defer b.log.Debug().Log(`headless backend stopped`)
	return winloop.Pump(r, b)
}

// Wait implements winloop.Pollable.
func (b *Backend) Wait(plan winloop.WaitPlan) error {
	if len(b.buffered) != 0 {
		return nil
	}
	ctx := context.Background()
	if plan.Mode == winloop.WaitDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, plan.Deadline)
		defer cancel()
	}
	_, err := longpoll.Channel(ctx, &longpoll.Config{MaxSize: -1, NoWait: plan.Mode == winloop.WaitNone}, b.inbox, b.receive)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Drain implements winloop.Pollable.
func (b *Backend) Drain(emit func(ev winloop.Event)) error {
	if _, err := longpoll.Channel(context.Background(), &longpoll.Config{MaxSize: -1, NoWait: true}, b.inbox, b.receive); err != nil {
		return err
	}
	for len(b.buffered) != 0 {
		it := b.buffered[0]
		b.buffered[0] = item{}
		b.buffered = b.buffered[1:]
		if it.disconnect {
			return winloop.ErrDisplayDisconnected
		}
		if it.ev != nil {
			emit(it.ev)
		}
	}
	b.buffered = b.buffered[:0]
	return nil
}

func (b *Backend) receive(it item) error {
	b.buffered = append(b.buffered, it)
	return nil
}

// Wake implements winloop.Backend, using an empty item.
func (b *Backend) Wake() {
	select {
	case b.inbox <- item{}:
	default:
		// full, so the wait will return anyway
	}
}

// AvailableMonitors implements winloop.Backend.
func (b *Backend) AvailableMonitors() []winloop.MonitorHandle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.monitors)
}

// PrimaryMonitor implements winloop.Backend.
func (b *Backend) PrimaryMonitor() (winloop.MonitorHandle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := slices.IndexFunc(b.monitors, func(m winloop.MonitorHandle) bool { return m.ID() == b.primary })
	if i < 0 {
		return winloop.MonitorHandle{}, false
	}
	return b.monitors[i], true
}

// MonitorFromPoint implements winloop.Backend.
func (b *Backend) MonitorFromPoint(x, y float64) (winloop.MonitorHandle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return winloop.MonitorAt(b.monitors, x, y)
}

// SetMonitors replaces the simulated monitors, e.g. to simulate hotplug.
// Handles obtained earlier remain valid snapshots.
func (b *Backend) SetMonitors(monitors []winloop.MonitorInfo, primary *uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setMonitors(monitors, primary)
}

func (b *Backend) setMonitors(monitors []winloop.MonitorInfo, primary *uint64) {
	handles := make([]winloop.MonitorHandle, len(monitors))
	for i, m := range monitors {
		handles[i] = winloop.NewMonitorHandle(m)
	}
	winloop.SortMonitors(handles)
	b.monitors = handles
	switch {
	case primary != nil:
		b.primary = *primary
	case len(monitors) != 0:
		b.primary = monitors[0].ID
	default:
		b.primary = 0
	}
}

// RemoveMonitor simulates disconnecting a monitor.
func (b *Backend) RemoveMonitor(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.monitors = slices.DeleteFunc(b.monitors, func(m winloop.MonitorHandle) bool { return m.ID() == id })
}

// SetCursorPosition sets the simulated cursor position.
func (b *Backend) SetCursorPosition(pos winloop.PhysicalPosition) {
	b.cursor.Store(&pos)
}

// CursorPosition implements winloop.Backend, returning ErrNotSupported
// until SetCursorPosition is called.
func (b *Backend) CursorPosition() (winloop.PhysicalPosition, error) {
	if pos := b.cursor.Load(); pos != nil {
		return *pos, nil
	}
	return winloop.PhysicalPosition{}, winloop.ErrNotSupported
}

// SetTheme implements winloop.ThemeSetter, recording the theme.
func (b *Backend) SetTheme(theme winloop.Theme) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.theme = theme
}

// SetBadgeCount implements winloop.BadgeCounter, recording the count.
func (b *Backend) SetBadgeCount(count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.badge = count
}

// SetProgressBar implements winloop.ProgressBarSetter, merging the set
// fields into the recorded state.
func (b *Backend) SetProgressBar(state winloop.ProgressBarState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state.State != nil {
		b.settings.progress.State = state.State
	}
	if state.Progress != nil {
		b.settings.progress.Progress = state.Progress
	}
	if state.DesktopFilename != nil {
		b.settings.progress.DesktopFilename = state.DesktopFilename
	}
}

// Theme returns the theme last set through the window target.
func (b *Backend) Theme() winloop.Theme {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.settings.theme
}

// BadgeCount returns the badge count last set through the window target.
func (b *Backend) BadgeCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.settings.badge
}

// ProgressBar returns the accumulated progress bar state.
func (b *Backend) ProgressBar() winloop.ProgressBarState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.settings.progress
}

// Close implements winloop.Backend. Pending injected events are dropped.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	return nil
}
