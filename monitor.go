package winloop

import (
	"cmp"
	"fmt"

	"golang.org/x/exp/slices"
)

type (
	// MonitorInfo describes a monitor, as reported by a backend. Backends
	// build handles from it using [NewMonitorHandle].
	MonitorInfo struct {
		// Name is optional, empty means unknown.
		Name string
		// VideoModes lists the fullscreen modes, in any order.
		VideoModes []VideoModeInfo
		// ID must uniquely and stably identify the monitor, within a backend.
		ID          uint64
		Size        PhysicalSize
		X, Y        int32
		ScaleFactor float64
	}

	// VideoModeInfo describes one fullscreen mode, see [MonitorInfo].
	VideoModeInfo struct {
		Size PhysicalSize
		// BitDepth is in bits per pixel.
		BitDepth uint16
		// RefreshRate is in Hz.
		RefreshRate uint16
	}

	// MonitorHandle refers to a physical display. It is an immutable snapshot,
	// taken when the handle was obtained, and so may be stale if the monitor
	// has since changed or been disconnected. The zero value is a valid
	// handle, that refers to no monitor, and reports defaults.
	//
	// Handles are safe for concurrent use, and are ordered by [MonitorHandle.Compare].
	MonitorHandle struct {
		s *monitorSnapshot
	}

	// VideoMode describes a fullscreen mode of a monitor. It is a frozen
	// value, ordered by [VideoMode.Compare].
	VideoMode struct {
		monitor     MonitorHandle
		size        PhysicalSize
		bitDepth    uint16
		refreshRate uint16
	}

	monitorSnapshot struct {
		info  MonitorInfo
		modes []VideoMode
	}
)

// NewMonitorHandle snapshots info. An invalid scale factor is replaced by 1.
func NewMonitorHandle(info MonitorInfo) MonitorHandle {
	if !ValidScaleFactor(info.ScaleFactor) {
		info.ScaleFactor = 1
	}
	s := &monitorSnapshot{info: info}
	s.info.VideoModes = nil
	s.modes = make([]VideoMode, len(info.VideoModes))
	for i, m := range info.VideoModes {
		s.modes[i] = VideoMode{
			monitor:     MonitorHandle{s},
			size:        m.Size,
			bitDepth:    m.BitDepth,
			refreshRate: m.RefreshRate,
		}
	}
	return MonitorHandle{s}
}

// Valid reports whether the handle refers to a monitor.
func (x MonitorHandle) Valid() bool { return x.s != nil }

// ID returns the backend-assigned monitor identifier.
func (x MonitorHandle) ID() uint64 {
	if x.s == nil {
		return 0
	}
	return x.s.info.ID
}

// Name returns a human-readable name, if known.
func (x MonitorHandle) Name() (string, bool) {
	if x.s == nil || x.s.info.Name == "" {
		return "", false
	}
	return x.s.info.Name, true
}

// Size returns the monitor resolution.
func (x MonitorHandle) Size() PhysicalSize {
	if x.s == nil {
		return PhysicalSize{}
	}
	return x.s.info.Size
}

// Position returns the top-left corner of the monitor, relative to the
// larger full screen area.
func (x MonitorHandle) Position() (px, py int32) {
	if x.s == nil {
		return 0, 0
	}
	return x.s.info.X, x.s.info.Y
}

// ScaleFactor returns the ratio between physical and logical pixels, 1 if
// unknown.
func (x MonitorHandle) ScaleFactor() float64 {
	if x.s == nil {
		return 1
	}
	return x.s.info.ScaleFactor
}

// VideoModes returns the supported fullscreen modes, sorted by
// [VideoMode.Compare].
func (x MonitorHandle) VideoModes() []VideoMode {
	if x.s == nil {
		return nil
	}
	modes := append([]VideoMode(nil), x.s.modes...)
	sortVideoModes(modes)
	return modes
}

// Contains reports whether the physical point is within the monitor bounds.
func (x MonitorHandle) Contains(px, py float64) bool {
	if x.s == nil {
		return false
	}
	left, top := float64(x.s.info.X), float64(x.s.info.Y)
	return px >= left && py >= top &&
		px < left+float64(x.s.info.Size.Width) &&
		py < top+float64(x.s.info.Size.Height)
}

// Compare orders handles by ID, with the zero handle first. It returns -1, 0
// or +1.
func (x MonitorHandle) Compare(other MonitorHandle) int {
	switch {
	case x.s == nil && other.s == nil:
		return 0
	case x.s == nil:
		return -1
	case other.s == nil:
		return 1
	}
	return cmp.Compare(x.s.info.ID, other.s.info.ID)
}

// Equal reports whether both handles refer to the same monitor.
func (x MonitorHandle) Equal(other MonitorHandle) bool { return x.Compare(other) == 0 }

func (x MonitorHandle) String() string {
	if x.s == nil {
		return "MonitorHandle(none)"
	}
	name, _ := x.Name()
	return fmt.Sprintf("MonitorHandle(%d %q %dx%d)", x.s.info.ID, name, x.s.info.Size.Width, x.s.info.Size.Height)
}

// MonitorAt returns the first monitor containing the physical point.
func MonitorAt(monitors []MonitorHandle, px, py float64) (MonitorHandle, bool) {
	for _, m := range monitors {
		if m.Contains(px, py) {
			return m, true
		}
	}
	return MonitorHandle{}, false
}

// Size returns the resolution.
func (x VideoMode) Size() PhysicalSize { return x.size }

// BitDepth returns the bits per pixel.
func (x VideoMode) BitDepth() uint16 { return x.bitDepth }

// RefreshRate returns the refresh rate, in Hz.
func (x VideoMode) RefreshRate() uint16 { return x.refreshRate }

// Monitor returns the monitor this mode belongs to.
func (x VideoMode) Monitor() MonitorHandle { return x.monitor }

// Compare orders by monitor, then by the comparison of (resolution, refresh
// rate, bit depth) reversed, so that larger modes sort first. Resolution is
// compared width first. It returns -1, 0 or +1.
func (x VideoMode) Compare(other VideoMode) int {
	if c := x.monitor.Compare(other.monitor); c != 0 {
		return c
	}
	c := cmp.Compare(x.size.Width, other.size.Width)
	if c == 0 {
		c = cmp.Compare(x.size.Height, other.size.Height)
	}
	if c == 0 {
		c = cmp.Compare(x.refreshRate, other.refreshRate)
	}
	if c == 0 {
		c = cmp.Compare(x.bitDepth, other.bitDepth)
	}
	return -c
}

func (x VideoMode) String() string {
	return fmt.Sprintf("%dx%d @ %d Hz (%d bpp)", x.size.Width, x.size.Height, x.refreshRate, x.bitDepth)
}

func sortVideoModes(modes []VideoMode) {
	slices.SortStableFunc(modes, VideoMode.Compare)
}

// SortMonitors sorts monitors by [MonitorHandle.Compare].
func SortMonitors(monitors []MonitorHandle) {
	slices.SortFunc(monitors, MonitorHandle.Compare)
}
