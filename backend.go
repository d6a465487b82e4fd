package winloop

import (
	"github.com/joeycumines/logiface"
)

type (
	// Backend owns a native event source, driving a [Runner]. Implementations
	// are selected through the registry, see [RegisterBackend].
	//
	// Run and Close are called only from the goroutine that owns the loop.
	// Every other method must be safe for concurrent use.
	Backend interface {
		// Run pumps native events into r until r.Cleared returns false,
		// returning nil, or until the native event source fails. A lost
		// display connection should be reported as ErrDisplayDisconnected.
		Run(r *Runner) error

		// Wake interrupts (or prevents) the native wait that follows the
		// most recent Runner.Plan. It must not block, and may be called
		// after Run has returned.
		Wake()

		// AvailableMonitors lists the connected monitors, in any order.
		AvailableMonitors() []MonitorHandle

		// PrimaryMonitor returns the primary monitor, if there is one.
		PrimaryMonitor() (MonitorHandle, bool)

		// MonitorFromPoint returns the monitor containing the physical point.
		MonitorFromPoint(x, y float64) (MonitorHandle, bool)

		// CursorPosition returns the cursor position in physical desktop
		// coordinates, or ErrNotSupported.
		CursorPosition() (PhysicalPosition, error)

		// Close releases native resources. It is called at most once.
		Close() error
	}

	// DeviceEventFilterSetter is implemented by backends that can filter
	// device events natively.
	DeviceEventFilterSetter interface {
		SetDeviceEventFilter(filter DeviceEventFilter)
	}

	// ThemeSetter is implemented by backends that support an application
	// theme.
	ThemeSetter interface {
		SetTheme(theme Theme)
	}

	// ProgressBarSetter is implemented by backends with a taskbar or dock
	// progress indicator.
	ProgressBarSetter interface {
		SetProgressBar(state ProgressBarState)
	}

	// BadgeCounter is implemented by backends with an application icon
	// badge.
	BadgeCounter interface {
		SetBadgeCount(count int)
	}

	// MainThreadBound is implemented by backends that may only be built and
	// run on the main thread.
	MainThreadBound interface {
		RequiresMainThread() bool
	}

	// Attributes is an opaque bag of backend-specific settings, passed to the
	// backend factory unmodified. Keys are conventionally prefixed with the
	// backend name, e.g. "unixpoll.evdev".
	Attributes map[string]any

	// BackendConfig is passed to a [BackendFactory].
	BackendConfig struct {
		Attributes Attributes
		Logger     *logiface.Logger[logiface.Event]
	}

	// BackendFactory constructs a backend. Returning an error lets the next
	// registered backend be tried, if the backend was not explicitly
	// requested.
	BackendFactory func(cfg BackendConfig) (Backend, error)
)

// Lookup returns the value for key if it is present and of type V.
func Lookup[V any](attrs Attributes, key string) (v V, ok bool) {
	raw, present := attrs[key]
	if !present {
		return v, false
	}
	v, ok = raw.(V)
	return v, ok
}
