package winloop

import (
	"strconv"
	"time"
)

type (
	// Event is the closed set of values delivered to a [Handler]. The
	// concrete types are [NewEvents], [WindowEvent], [DeviceEvent],
	// [UserEvent], [Suspended], [Resumed], [AboutToWait] and [LoopDestroyed].
	Event interface {
		ImplementsEvent()
	}

	// WindowEventKind is the closed set of payloads of a [WindowEvent].
	WindowEventKind interface {
		ImplementsWindowEvent()
	}

	// DeviceEventKind is the closed set of payloads of a [DeviceEvent].
	DeviceEventKind interface {
		ImplementsDeviceEvent()
	}

	// WindowID identifies a window, within a backend.
	WindowID uint64

	// DeviceID identifies an input device, within a backend.
	DeviceID uint64
)

// StartCauseKind enumerates the reasons an iteration of the loop started.
type StartCauseKind uint8

const (
	// CauseInit is the first iteration of a run.
	CauseInit StartCauseKind = iota
	// CausePoll is an iteration following a Poll control flow.
	CausePoll
	// CauseWaitCancelled is an iteration woken before its deadline, if any,
	// by a native or user event.
	CauseWaitCancelled
	// CauseResumeTimeReached is an iteration that started because its
	// WaitUntil deadline passed.
	CauseResumeTimeReached
)

func (k StartCauseKind) String() string {
	switch k {
	case CauseInit:
		return "Init"
	case CausePoll:
		return "Poll"
	case CauseWaitCancelled:
		return "WaitCancelled"
	case CauseResumeTimeReached:
		return "ResumeTimeReached"
	default:
		return "StartCauseKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// StartCause describes why an iteration started.
type StartCause struct {
	// Start is when the wait began, zero for Init and Poll.
	Start time.Time
	// RequestedResume is the WaitUntil deadline, if any.
	RequestedResume time.Time
	Kind            StartCauseKind
}

type (
	// NewEvents is the first event of every iteration.
	NewEvents struct {
		Cause StartCause
	}

	// WindowEvent is an event targeting one window.
	WindowEvent struct {
		Event    WindowEventKind
		WindowID WindowID
	}

	// DeviceEvent is a raw event from an input device, not associated with
	// any window. Delivery is subject to the [DeviceEventFilter].
	DeviceEvent struct {
		Event    DeviceEventKind
		DeviceID DeviceID
	}

	// UserEvent carries a payload sent through a [Proxy].
	UserEvent[T any] struct {
		Payload T
	}

	// Suspended is sent when the application loses its native resources,
	// e.g. when sent to the background on mobile platforms.
	Suspended struct{}

	// Resumed is sent when the application gains (or regains) its native
	// resources, and is ready to create windows.
	Resumed struct{}

	// AboutToWait is sent once per iteration, after every other event of the
	// iteration, before the loop waits again. Use it to batch per-frame work.
	AboutToWait struct{}

	// LoopDestroyed is the last event of a run.
	LoopDestroyed struct{}
)

func (NewEvents) ImplementsEvent()     {}
func (WindowEvent) ImplementsEvent()   {}
func (DeviceEvent) ImplementsEvent()   {}
func (UserEvent[T]) ImplementsEvent()  {}
func (Suspended) ImplementsEvent()     {}
func (Resumed) ImplementsEvent()       {}
func (AboutToWait) ImplementsEvent()   {}
func (LoopDestroyed) ImplementsEvent() {}

type (
	// Created is sent when a window is created.
	Created struct{}

	// CloseRequested is sent when the user or system asks for a window to be
	// closed. Nothing is closed automatically.
	CloseRequested struct{}

	// Destroyed is sent once a window has been destroyed.
	Destroyed struct{}

	// Resized is sent when the inner size of a window changes.
	Resized struct {
		Size PhysicalSize
	}

	// Moved is sent when the outer position of a window changes.
	Moved struct {
		Position PhysicalPosition
	}

	// Focused is sent when a window gains or loses focus.
	Focused struct {
		Focused bool
	}

	// KeyboardInput is sent for every key press and release.
	KeyboardInput struct {
		Event    KeyEvent
		DeviceID DeviceID
		// IsSynthetic is true for events generated on focus changes, e.g.
		// key releases sent when the window loses focus.
		IsSynthetic bool
	}

	// ReceivedCharacter is sent for text input, after any keyboard layout or
	// input method processing.
	ReceivedCharacter struct {
		Char rune
	}

	// CursorMoved is sent when the cursor moves over a window.
	CursorMoved struct {
		Position PhysicalPosition
		DeviceID DeviceID
	}

	// CursorEntered is sent when the cursor enters a window.
	CursorEntered struct {
		DeviceID DeviceID
	}

	// CursorLeft is sent when the cursor leaves a window.
	CursorLeft struct {
		DeviceID DeviceID
	}

	// MouseWheel is sent for scroll input over a window.
	MouseWheel struct {
		Delta    ScrollDelta
		DeviceID DeviceID
		Phase    TouchPhase
	}

	// MouseInput is sent for mouse button presses and releases.
	MouseInput struct {
		DeviceID DeviceID
		Button   MouseButton
		State    ElementState
	}

	// Touch is sent for touch screen input.
	Touch struct {
		Location PhysicalPosition
		DeviceID DeviceID
		// ID distinguishes simultaneous touches, and is stable for the
		// duration of one touch.
		ID    uint64
		Phase TouchPhase
	}

	// ScaleFactorChanged is sent when the scale factor of a window changes,
	// e.g. when moved to another monitor.
	ScaleFactorChanged struct {
		ScaleFactor  float64
		NewInnerSize PhysicalSize
	}

	// ThemeChanged is sent when the system theme changes.
	ThemeChanged struct {
		Theme Theme
	}
)

func (Created) ImplementsWindowEvent()            {}
func (CloseRequested) ImplementsWindowEvent()     {}
func (Destroyed) ImplementsWindowEvent()          {}
func (Resized) ImplementsWindowEvent()            {}
func (Moved) ImplementsWindowEvent()              {}
func (Focused) ImplementsWindowEvent()            {}
func (KeyboardInput) ImplementsWindowEvent()      {}
func (ReceivedCharacter) ImplementsWindowEvent()  {}
func (CursorMoved) ImplementsWindowEvent()        {}
func (CursorEntered) ImplementsWindowEvent()      {}
func (CursorLeft) ImplementsWindowEvent()         {}
func (MouseWheel) ImplementsWindowEvent()         {}
func (MouseInput) ImplementsWindowEvent()         {}
func (Touch) ImplementsWindowEvent()              {}
func (ScaleFactorChanged) ImplementsWindowEvent() {}
func (ThemeChanged) ImplementsWindowEvent()       {}

type (
	// DeviceAdded is sent when an input device is connected.
	DeviceAdded struct{}

	// DeviceRemoved is sent when an input device is disconnected.
	DeviceRemoved struct{}

	// MouseMotion is relative pointer motion, unaccelerated where possible.
	MouseMotion struct {
		DeltaX, DeltaY float64
	}

	// DeviceMouseWheel is raw scroll input.
	DeviceMouseWheel struct {
		Delta ScrollDelta
	}

	// Motion is relative or absolute motion on any axis.
	Motion struct {
		Axis  uint32
		Value float64
	}

	// Button is a raw button press or release, identified by its native code.
	Button struct {
		Button uint32
		State  ElementState
	}

	// Key is a raw key press or release.
	Key struct {
		PhysicalKey KeyCode
		ScanCode    uint32
		State       ElementState
	}
)

func (DeviceAdded) ImplementsDeviceEvent()      {}
func (DeviceRemoved) ImplementsDeviceEvent()    {}
func (MouseMotion) ImplementsDeviceEvent()      {}
func (DeviceMouseWheel) ImplementsDeviceEvent() {}
func (Motion) ImplementsDeviceEvent()           {}
func (Button) ImplementsDeviceEvent()           {}
func (Key) ImplementsDeviceEvent()              {}

// eventName returns a short, allocation free name for logging.
func eventName(ev Event) string {
	switch ev := ev.(type) {
	case NewEvents:
		return "NewEvents"
	case WindowEvent:
		switch ev.Event.(type) {
		case Created:
			return "WindowEvent/Created"
		case CloseRequested:
			return "WindowEvent/CloseRequested"
		case Destroyed:
			return "WindowEvent/Destroyed"
		case Resized:
			return "WindowEvent/Resized"
		case Moved:
			return "WindowEvent/Moved"
		case Focused:
			return "WindowEvent/Focused"
		case KeyboardInput:
			return "WindowEvent/KeyboardInput"
		case ReceivedCharacter:
			return "WindowEvent/ReceivedCharacter"
		case CursorMoved:
			return "WindowEvent/CursorMoved"
		case CursorEntered:
			return "WindowEvent/CursorEntered"
		case CursorLeft:
			return "WindowEvent/CursorLeft"
		case MouseWheel:
			return "WindowEvent/MouseWheel"
		case MouseInput:
			return "WindowEvent/MouseInput"
		case Touch:
			return "WindowEvent/Touch"
		case ScaleFactorChanged:
			return "WindowEvent/ScaleFactorChanged"
		case ThemeChanged:
			return "WindowEvent/ThemeChanged"
		default:
			return "WindowEvent"
		}
	case DeviceEvent:
		return "DeviceEvent"
	case Suspended:
		return "Suspended"
	case Resumed:
		return "Resumed"
	case AboutToWait:
		return "AboutToWait"
	case LoopDestroyed:
		return "LoopDestroyed"
	default:
		// user events, the only generic variant
		return "UserEvent"
	}
}
