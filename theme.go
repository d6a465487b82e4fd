package winloop

import (
	"strconv"
)

// Theme is an application-wide color theme preference.
type Theme uint8

const (
	// ThemeSystem follows the system preference.
	ThemeSystem Theme = iota
	// ThemeLight forces a light theme.
	ThemeLight
	// ThemeDark forces a dark theme.
	ThemeDark
)

func (t Theme) String() string {
	switch t {
	case ThemeSystem:
		return "System"
	case ThemeLight:
		return "Light"
	case ThemeDark:
		return "Dark"
	default:
		return "Theme(" + strconv.Itoa(int(t)) + ")"
	}
}

// ProgressState is the state shown by a taskbar or dock progress indicator.
type ProgressState uint8

const (
	// ProgressNone hides the indicator.
	ProgressNone ProgressState = iota
	// ProgressNormal shows the progress value.
	ProgressNormal
	// ProgressIndeterminate shows activity without a value.
	ProgressIndeterminate
	// ProgressPaused shows the progress value as paused.
	ProgressPaused
	// ProgressError shows the progress value as failed.
	ProgressError
)

func (s ProgressState) String() string {
	switch s {
	case ProgressNone:
		return "None"
	case ProgressNormal:
		return "Normal"
	case ProgressIndeterminate:
		return "Indeterminate"
	case ProgressPaused:
		return "Paused"
	case ProgressError:
		return "Error"
	default:
		return "ProgressState(" + strconv.Itoa(int(s)) + ")"
	}
}

// ProgressBarState updates the progress indicator. Nil fields are left
// unchanged.
type ProgressBarState struct {
	State *ProgressState
	// Progress is a percentage, clamped to [0, 100].
	Progress *uint64
	// DesktopFilename identifies the application on Linux desktops, e.g.
	// "my-app.desktop".
	DesktopFilename *string
}

// Normalized returns a copy with Progress clamped to [0, 100].
func (x ProgressBarState) Normalized() ProgressBarState {
	if x.Progress != nil && *x.Progress > 100 {
		v := uint64(100)
		x.Progress = &v
	}
	return x
}

// DeviceEventFilter controls when raw device events are delivered.
type DeviceEventFilter uint8

const (
	// FilterUnfocused drops device events while no window of the application
	// has focus. It is the default.
	FilterUnfocused DeviceEventFilter = iota
	// FilterAlways drops all device events.
	FilterAlways
	// FilterNever delivers all device events regardless of focus.
	FilterNever
)

func (f DeviceEventFilter) String() string {
	switch f {
	case FilterUnfocused:
		return "Unfocused"
	case FilterAlways:
		return "Always"
	case FilterNever:
		return "Never"
	default:
		return "DeviceEventFilter(" + strconv.Itoa(int(f)) + ")"
	}
}
