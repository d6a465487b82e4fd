package winloop

import (
	"strconv"
)

// ElementState is the state of a key or button.
type ElementState uint8

const (
	Released ElementState = iota
	Pressed
)

func (s ElementState) String() string {
	if s == Pressed {
		return "Pressed"
	}
	return "Released"
}

// MouseButton identifies a mouse button. Values from MouseButtonOther
// upwards are backend-specific extra buttons.
type MouseButton uint16

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonBack
	MouseButtonForward
	MouseButtonOther
)

func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "Left"
	case MouseButtonRight:
		return "Right"
	case MouseButtonMiddle:
		return "Middle"
	case MouseButtonBack:
		return "Back"
	case MouseButtonForward:
		return "Forward"
	default:
		return "Other(" + strconv.Itoa(int(b-MouseButtonOther)) + ")"
	}
}

// TouchPhase is the phase of a touch or of a scroll gesture.
type TouchPhase uint8

const (
	TouchStarted TouchPhase = iota
	TouchMoved
	TouchEnded
	TouchCancelled
)

// ScrollUnit is the unit of a [ScrollDelta].
type ScrollUnit uint8

const (
	// ScrollLines is used by wheels that scroll in discrete steps.
	ScrollLines ScrollUnit = iota
	// ScrollPixels is used by touchpads and other precise devices.
	ScrollPixels
)

// ScrollDelta is an amount scrolled. Positive Y scrolls up, positive X scrolls
// right.
type ScrollDelta struct {
	X, Y float64
	Unit ScrollUnit
}

// KeyEvent describes a key press or release.
type KeyEvent struct {
	// Text is the text produced by the key press, if any.
	Text        string
	ScanCode    uint32
	PhysicalKey KeyCode
	State       ElementState
	Repeat      bool
}

// KeyCode identifies a physical key, by its position on a US layout
// keyboard. Only common keys are enumerated, others are KeyUnidentified and
// are distinguished by their scan code.
type KeyCode uint16

const (
	KeyUnidentified KeyCode = iota
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeySpace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyShiftLeft
	KeyShiftRight
	KeyControlLeft
	KeyControlRight
	KeyAltLeft
	KeyAltRight
	KeySuperLeft
	KeySuperRight
	KeyCapsLock
	KeyMinus
	KeyEqual
	KeyBracketLeft
	KeyBracketRight
	KeyBackslash
	KeySemicolon
	KeyQuote
	KeyBackquote
	KeyComma
	KeyPeriod
	KeySlash
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	keyCodeCount
)

var keyCodeNames = [keyCodeCount]string{
	"Unidentified",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"Escape", "Enter", "Tab", "Backspace", "Space", "Delete", "Insert",
	"Home", "End", "PageUp", "PageDown",
	"ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight",
	"ShiftLeft", "ShiftRight", "ControlLeft", "ControlRight",
	"AltLeft", "AltRight", "SuperLeft", "SuperRight", "CapsLock",
	"Minus", "Equal", "BracketLeft", "BracketRight", "Backslash",
	"Semicolon", "Quote", "Backquote", "Comma", "Period", "Slash",
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
}

func (k KeyCode) String() string {
	if k < keyCodeCount {
		return keyCodeNames[k]
	}
	return "KeyCode(" + strconv.Itoa(int(k)) + ")"
}
