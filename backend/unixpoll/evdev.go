package unixpoll

import (
	"encoding/binary"

	"github.com/joeycumines/go-winloop"
)

// input_event types and codes, from linux/input-event-codes.h.
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03

	synReport  = 0x00
	synDropped = 0x03

	relX      = 0x00
	relY      = 0x01
	relHWheel = 0x06
	relWheel  = 0x08

	btnMisc = 0x100
)

// decoder converts raw input_event records from one device into device
// events. It accumulates relative pointer motion until SYN_REPORT.
type decoder struct {
	id winloop.DeviceID
	// size is the size of a struct input_event, which depends on the size
	// of struct timeval.
	size   int
	dx, dy int32
	// dropped is set after SYN_DROPPED, until the next SYN_REPORT.
	dropped bool
}

// decode emits the events for the whole records in buf, returning the number
// of bytes consumed.
func (x *decoder) decode(buf []byte, emit func(winloop.Event)) int {
	var n int
	for ; len(buf)-n >= x.size; n += x.size {
		rec := buf[n+x.size-8 : n+x.size]
		typ := binary.NativeEndian.Uint16(rec[0:])
		code := binary.NativeEndian.Uint16(rec[2:])
		value := int32(binary.NativeEndian.Uint32(rec[4:]))
		x.record(typ, code, value, emit)
	}
	return n
}

func (x *decoder) record(typ, code uint16, value int32, emit func(winloop.Event)) {
	if x.dropped {
		if typ == evSyn && code == synReport {
			x.dropped = false
			x.dx, x.dy = 0, 0
		}
		return
	}
	switch typ {
	case evSyn:
		switch code {
		case synReport:
			x.flushMotion(emit)
		case synDropped:
			x.dropped = true
		}
	case evKey:
		state := winloop.Released
		if value != 0 {
			// 1 is a press, 2 is autorepeat
			state = winloop.Pressed
		}
		if code >= btnMisc {
			x.device(emit, winloop.Button{Button: uint32(code), State: state})
		} else {
			x.device(emit, winloop.Key{PhysicalKey: linuxKeyCode(code), ScanCode: uint32(code), State: state})
		}
	case evRel:
		switch code {
		case relX:
			x.dx += value
		case relY:
			x.dy += value
		case relWheel:
			x.device(emit, winloop.DeviceMouseWheel{Delta: winloop.ScrollDelta{Y: float64(value), Unit: winloop.ScrollLines}})
		case relHWheel:
			x.device(emit, winloop.DeviceMouseWheel{Delta: winloop.ScrollDelta{X: float64(value), Unit: winloop.ScrollLines}})
		default:
			x.device(emit, winloop.Motion{Axis: uint32(code), Value: float64(value)})
		}
	case evAbs:
		x.device(emit, winloop.Motion{Axis: uint32(code), Value: float64(value)})
	}
}

func (x *decoder) flushMotion(emit func(winloop.Event)) {
	if x.dx != 0 || x.dy != 0 {
		x.device(emit, winloop.MouseMotion{DeltaX: float64(x.dx), DeltaY: float64(x.dy)})
		x.dx, x.dy = 0, 0
	}
}

func (x *decoder) device(emit func(winloop.Event), ev winloop.DeviceEventKind) {
	emit(winloop.DeviceEvent{DeviceID: x.id, Event: ev})
}

// linuxKeys maps KEY_* codes to key codes.
var linuxKeys = map[uint16]winloop.KeyCode{
	1: winloop.KeyEscape,
	2: winloop.Key1, 3: winloop.Key2, 4: winloop.Key3, 5: winloop.Key4, 6: winloop.Key5,
	7: winloop.Key6, 8: winloop.Key7, 9: winloop.Key8, 10: winloop.Key9, 11: winloop.Key0,
	12: winloop.KeyMinus, 13: winloop.KeyEqual, 14: winloop.KeyBackspace, 15: winloop.KeyTab,
	16: winloop.KeyQ, 17: winloop.KeyW, 18: winloop.KeyE, 19: winloop.KeyR, 20: winloop.KeyT,
	21: winloop.KeyY, 22: winloop.KeyU, 23: winloop.KeyI, 24: winloop.KeyO, 25: winloop.KeyP,
	26: winloop.KeyBracketLeft, 27: winloop.KeyBracketRight, 28: winloop.KeyEnter, 29: winloop.KeyControlLeft,
	30: winloop.KeyA, 31: winloop.KeyS, 32: winloop.KeyD, 33: winloop.KeyF, 34: winloop.KeyG,
	35: winloop.KeyH, 36: winloop.KeyJ, 37: winloop.KeyK, 38: winloop.KeyL,
	39: winloop.KeySemicolon, 40: winloop.KeyQuote, 41: winloop.KeyBackquote, 42: winloop.KeyShiftLeft,
	43: winloop.KeyBackslash,
	44: winloop.KeyZ, 45: winloop.KeyX, 46: winloop.KeyC, 47: winloop.KeyV, 48: winloop.KeyB,
	49: winloop.KeyN, 50: winloop.KeyM,
	51: winloop.KeyComma, 52: winloop.KeyPeriod, 53: winloop.KeySlash, 54: winloop.KeyShiftRight,
	56: winloop.KeyAltLeft, 57: winloop.KeySpace, 58: winloop.KeyCapsLock,
	59: winloop.KeyF1, 60: winloop.KeyF2, 61: winloop.KeyF3, 62: winloop.KeyF4, 63: winloop.KeyF5,
	64: winloop.KeyF6, 65: winloop.KeyF7, 66: winloop.KeyF8, 67: winloop.KeyF9, 68: winloop.KeyF10,
	87: winloop.KeyF11, 88: winloop.KeyF12,
	97: winloop.KeyControlRight, 100: winloop.KeyAltRight,
	102: winloop.KeyHome, 103: winloop.KeyArrowUp, 104: winloop.KeyPageUp,
	105: winloop.KeyArrowLeft, 106: winloop.KeyArrowRight, 107: winloop.KeyEnd,
	108: winloop.KeyArrowDown, 109: winloop.KeyPageDown, 110: winloop.KeyInsert, 111: winloop.KeyDelete,
	125: winloop.KeySuperLeft, 126: winloop.KeySuperRight,
}

func linuxKeyCode(code uint16) winloop.KeyCode {
	return linuxKeys[code]
}
