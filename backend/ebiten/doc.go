// Package ebiten implements a winloop backend on Ebitengine, which owns the
// main thread and calls back once per tick. It provides a single window,
// with ID [WindowID].
//
// Ebitengine can't block between ticks, so waiting is emulated: ticks are
// skipped until the wait ends, making the wake latency at most one tick.
//
// Importing this package registers the backend as "ebiten". It must be
// built and run on the main thread. Attributes (see [winloop.Attributes]):
//   - "ebiten.title" (string): the window title
//   - "ebiten.size" (winloop.LogicalSize): the initial inner window size
//   - "ebiten.icon" (*winloop.Icon): the window icon
//   - "ebiten.tps" (int): ticks per second, default 60
package ebiten

// Name is the registered backend name.
const Name = "ebiten"

// Priority is the registered priority, higher than the windowless backends.
const Priority = 100

// WindowID identifies the backend's only window.
const WindowID = 1

// Attribute keys.
const (
	AttrTitle = "ebiten.title"
	AttrSize  = "ebiten.size"
	AttrIcon  = "ebiten.icon"
	AttrTPS   = "ebiten.tps"
)
