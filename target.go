package winloop

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// WindowTarget is the query and side-effect view of an event loop, passed to
// every invocation of the [Handler]. It grants no control over the loop's
// lifecycle, and is safe for concurrent use, including from goroutines other
// than the loop's.
//
// Queries never fail: unsupported features and disconnected monitors are
// reported as absent or neutral values. After the loop is closed, queries
// report nothing and setters do nothing.
type WindowTarget[T any] struct {
	backend Backend
	log     *logiface.Logger[logiface.Event]
	// mu guards closed, and excludes Backend.Close while a query is running.
	mu     sync.RWMutex
	closed bool
	filter atomic.Uint32
}

func (x *WindowTarget[T]) live() bool {
	x.mu.RLock()
	if x.closed {
		x.mu.RUnlock()
		return false
	}
	return true
}

// AvailableMonitors lists the connected monitors, ordered by
// [MonitorHandle.Compare].
func (x *WindowTarget[T]) AvailableMonitors() []MonitorHandle {
	if !x.live() {
		return nil
	}
	defer x.mu.RUnlock()
	monitors := append([]MonitorHandle(nil), x.backend.AvailableMonitors()...)
	SortMonitors(monitors)
	return monitors
}

// PrimaryMonitor returns the primary monitor, if the platform has the
// concept and one is connected.
func (x *WindowTarget[T]) PrimaryMonitor() (MonitorHandle, bool) {
	if !x.live() {
		return MonitorHandle{}, false
	}
	defer x.mu.RUnlock()
	return x.backend.PrimaryMonitor()
}

// MonitorFromPoint returns the monitor containing the point, in physical
// desktop coordinates.
func (x *WindowTarget[T]) MonitorFromPoint(px, py float64) (MonitorHandle, bool) {
	if !x.live() {
		return MonitorHandle{}, false
	}
	defer x.mu.RUnlock()
	return x.backend.MonitorFromPoint(px, py)
}

// CursorPosition returns the cursor position in physical desktop
// coordinates, or (0, 0) if the backend can't report it.
func (x *WindowTarget[T]) CursorPosition() PhysicalPosition {
	if !x.live() {
		return PhysicalPosition{}
	}
	defer x.mu.RUnlock()
	pos, err := x.backend.CursorPosition()
	if err != nil {
		x.log.Debug().Err(err).Log(`cursor position unavailable`)
		return PhysicalPosition{}
	}
	return pos
}

// SetDeviceEventFilter changes when device events are delivered. Backends
// that support it also filter natively.
func (x *WindowTarget[T]) SetDeviceEventFilter(filter DeviceEventFilter) {
	if filter > FilterNever {
		filter = FilterUnfocused
	}
	x.filter.Store(uint32(filter))
	if !x.live() {
		return
	}
	defer x.mu.RUnlock()
	if s, ok := x.backend.(DeviceEventFilterSetter); ok {
		s.SetDeviceEventFilter(filter)
	}
}

// DeviceEventFilter returns the current filter, FilterUnfocused by default.
func (x *WindowTarget[T]) DeviceEventFilter() DeviceEventFilter {
	return DeviceEventFilter(x.filter.Load())
}

// SetTheme sets the application theme, where supported. ThemeSystem follows
// the system preference.
func (x *WindowTarget[T]) SetTheme(theme Theme) {
	if !x.live() {
		return
	}
	defer x.mu.RUnlock()
	if s, ok := x.backend.(ThemeSetter); ok {
		s.SetTheme(theme)
	} else {
		x.log.Debug().Str(`theme`, theme.String()).Log(`theme not supported by backend`)
	}
}

// SetProgressBar updates the taskbar or dock progress indicator, where
// supported.
func (x *WindowTarget[T]) SetProgressBar(state ProgressBarState) {
	if !x.live() {
		return
	}
	defer x.mu.RUnlock()
	if s, ok := x.backend.(ProgressBarSetter); ok {
		s.SetProgressBar(state.Normalized())
	} else {
		x.log.Debug().Log(`progress bar not supported by backend`)
	}
}

// SetBadgeCount sets the application icon badge, where supported. Zero
// clears it.
func (x *WindowTarget[T]) SetBadgeCount(count int) {
	if !x.live() {
		return
	}
	defer x.mu.RUnlock()
	if s, ok := x.backend.(BadgeCounter); ok {
		s.SetBadgeCount(count)
	}
}

// shutdown waits for in-flight queries, then closes the backend.
func (x *WindowTarget[T]) shutdown() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return nil
	}
	x.closed = true
	return x.backend.Close()
}
