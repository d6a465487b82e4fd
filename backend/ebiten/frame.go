package ebiten

import (
	eb "github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/exp/slices"

	"github.com/joeycumines/go-winloop"
)

// frame is the input state sampled in one tick. Positions are physical,
// relative to the window unless noted.
type frame struct {
	closing  bool
	focused  bool
	size     winloop.PhysicalSize
	position winloop.PhysicalPosition // of the window, on the desktop
	scale    float64
	cursor   winloop.PhysicalPosition
	wheelX   float64
	wheelY   float64
	pressed  []eb.Key
	released []eb.Key
	chars    []rune
	down     []eb.MouseButton
	up       []eb.MouseButton
	touches  []touch
}

type touch struct {
	id       eb.TouchID
	location winloop.PhysicalPosition
	phase    winloop.TouchPhase
}

// tracker converts successive frames into window events, reporting changes
// in state and every input edge.
type tracker struct {
	last    frame
	held    []eb.Key
	started bool
}

func (x *tracker) events(f frame, emit func(winloop.Event)) {
	window := func(ev winloop.WindowEventKind) {
		emit(winloop.WindowEvent{WindowID: WindowID, Event: ev})
	}

	if !x.started {
		x.started = true
		window(winloop.Created{})
		window(winloop.Resized{Size: f.size})
		window(winloop.Focused{Focused: f.focused})
	} else {
		if f.scale != x.last.scale {
			window(winloop.ScaleFactorChanged{ScaleFactor: f.scale, NewInnerSize: f.size})
		} else if f.size != x.last.size {
			window(winloop.Resized{Size: f.size})
		}
		if f.position != x.last.position {
			window(winloop.Moved{Position: f.position})
		}
		if f.focused != x.last.focused {
			if !f.focused {
				// keys held when focus is lost will never see a release
				for _, k := range x.held {
					window(keyboardInput(k, winloop.Released, true))
				}
				x.held = x.held[:0]
			}
			window(winloop.Focused{Focused: f.focused})
		}
	}

	for _, k := range f.pressed {
		window(keyboardInput(k, winloop.Pressed, false))
		if f.focused && !slices.Contains(x.held, k) {
			x.held = append(x.held, k)
		}
	}
	for _, k := range f.released {
		window(keyboardInput(k, winloop.Released, false))
		x.held = slices.DeleteFunc(x.held, func(v eb.Key) bool { return v == k })
	}
	for _, c := range f.chars {
		window(winloop.ReceivedCharacter{Char: c})
	}

	if f.cursor != x.last.cursor {
		window(winloop.CursorMoved{Position: f.cursor})
	}
	for _, b := range f.down {
		window(winloop.MouseInput{Button: mouseButton(b), State: winloop.Pressed})
	}
	for _, b := range f.up {
		window(winloop.MouseInput{Button: mouseButton(b), State: winloop.Released})
	}
	if f.wheelX != 0 || f.wheelY != 0 {
		window(winloop.MouseWheel{
			Delta: winloop.ScrollDelta{X: f.wheelX, Y: f.wheelY, Unit: winloop.ScrollLines},
			Phase: winloop.TouchMoved,
		})
	}
	for _, t := range f.touches {
		window(winloop.Touch{Location: t.location, ID: uint64(t.id), Phase: t.phase})
	}

	if f.closing {
		window(winloop.CloseRequested{})
	}

	// only the state is compared, the edges are never reused
	x.last = frame{
		focused:  f.focused,
		size:     f.size,
		position: f.position,
		scale:    f.scale,
		cursor:   f.cursor,
	}
}

func keyboardInput(k eb.Key, state winloop.ElementState, synthetic bool) winloop.KeyboardInput {
	return winloop.KeyboardInput{
		Event: winloop.KeyEvent{
			ScanCode:    uint32(k),
			PhysicalKey: keyCode(k),
			State:       state,
		},
		IsSynthetic: synthetic,
	}
}

func mouseButton(b eb.MouseButton) winloop.MouseButton {
	switch b {
	case eb.MouseButtonLeft:
		return winloop.MouseButtonLeft
	case eb.MouseButtonRight:
		return winloop.MouseButtonRight
	case eb.MouseButtonMiddle:
		return winloop.MouseButtonMiddle
	case eb.MouseButton3:
		return winloop.MouseButtonBack
	case eb.MouseButton4:
		return winloop.MouseButtonForward
	default:
		return winloop.MouseButtonOther + winloop.MouseButton(b)
	}
}

// mouseButtons are the buttons sampled each tick.
var mouseButtons = [...]eb.MouseButton{
	eb.MouseButtonLeft,
	eb.MouseButtonRight,
	eb.MouseButtonMiddle,
	eb.MouseButton3,
	eb.MouseButton4,
}

var keyCodes = map[eb.Key]winloop.KeyCode{
	eb.KeyA: winloop.KeyA, eb.KeyB: winloop.KeyB, eb.KeyC: winloop.KeyC, eb.KeyD: winloop.KeyD,
	eb.KeyE: winloop.KeyE, eb.KeyF: winloop.KeyF, eb.KeyG: winloop.KeyG, eb.KeyH: winloop.KeyH,
	eb.KeyI: winloop.KeyI, eb.KeyJ: winloop.KeyJ, eb.KeyK: winloop.KeyK, eb.KeyL: winloop.KeyL,
	eb.KeyM: winloop.KeyM, eb.KeyN: winloop.KeyN, eb.KeyO: winloop.KeyO, eb.KeyP: winloop.KeyP,
	eb.KeyQ: winloop.KeyQ, eb.KeyR: winloop.KeyR, eb.KeyS: winloop.KeyS, eb.KeyT: winloop.KeyT,
	eb.KeyU: winloop.KeyU, eb.KeyV: winloop.KeyV, eb.KeyW: winloop.KeyW, eb.KeyX: winloop.KeyX,
	eb.KeyY: winloop.KeyY, eb.KeyZ: winloop.KeyZ,
	eb.KeyDigit0: winloop.Key0, eb.KeyDigit1: winloop.Key1, eb.KeyDigit2: winloop.Key2,
	eb.KeyDigit3: winloop.Key3, eb.KeyDigit4: winloop.Key4, eb.KeyDigit5: winloop.Key5,
	eb.KeyDigit6: winloop.Key6, eb.KeyDigit7: winloop.Key7, eb.KeyDigit8: winloop.Key8,
	eb.KeyDigit9: winloop.Key9,
	eb.KeyEscape:       winloop.KeyEscape,
	eb.KeyEnter:        winloop.KeyEnter,
	eb.KeyTab:          winloop.KeyTab,
	eb.KeyBackspace:    winloop.KeyBackspace,
	eb.KeySpace:        winloop.KeySpace,
	eb.KeyDelete:       winloop.KeyDelete,
	eb.KeyInsert:       winloop.KeyInsert,
	eb.KeyHome:         winloop.KeyHome,
	eb.KeyEnd:          winloop.KeyEnd,
	eb.KeyPageUp:       winloop.KeyPageUp,
	eb.KeyPageDown:     winloop.KeyPageDown,
	eb.KeyArrowUp:      winloop.KeyArrowUp,
	eb.KeyArrowDown:    winloop.KeyArrowDown,
	eb.KeyArrowLeft:    winloop.KeyArrowLeft,
	eb.KeyArrowRight:   winloop.KeyArrowRight,
	eb.KeyShiftLeft:    winloop.KeyShiftLeft,
	eb.KeyShiftRight:   winloop.KeyShiftRight,
	eb.KeyControlLeft:  winloop.KeyControlLeft,
	eb.KeyControlRight: winloop.KeyControlRight,
	eb.KeyAltLeft:      winloop.KeyAltLeft,
	eb.KeyAltRight:     winloop.KeyAltRight,
	eb.KeyMetaLeft:     winloop.KeySuperLeft,
	eb.KeyMetaRight:    winloop.KeySuperRight,
	eb.KeyCapsLock:     winloop.KeyCapsLock,
	eb.KeyMinus:        winloop.KeyMinus,
	eb.KeyEqual:        winloop.KeyEqual,
	eb.KeyBracketLeft:  winloop.KeyBracketLeft,
	eb.KeyBracketRight: winloop.KeyBracketRight,
	eb.KeyBackslash:    winloop.KeyBackslash,
	eb.KeySemicolon:    winloop.KeySemicolon,
	eb.KeyQuote:        winloop.KeyQuote,
	eb.KeyBackquote:    winloop.KeyBackquote,
	eb.KeyComma:        winloop.KeyComma,
	eb.KeyPeriod:       winloop.KeyPeriod,
	eb.KeySlash:        winloop.KeySlash,
	eb.KeyF1: winloop.KeyF1, eb.KeyF2: winloop.KeyF2, eb.KeyF3: winloop.KeyF3, eb.KeyF4: winloop.KeyF4,
	eb.KeyF5: winloop.KeyF5, eb.KeyF6: winloop.KeyF6, eb.KeyF7: winloop.KeyF7, eb.KeyF8: winloop.KeyF8,
	eb.KeyF9: winloop.KeyF9, eb.KeyF10: winloop.KeyF10, eb.KeyF11: winloop.KeyF11, eb.KeyF12: winloop.KeyF12,
}

func keyCode(k eb.Key) winloop.KeyCode {
	return keyCodes[k]
}
