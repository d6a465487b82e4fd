// Package unixpoll implements a winloop backend on Linux, for systems
// without a window system (kiosks, embedded devices, consoles): raw input
// from evdev devices, monitors from DRM sysfs, and termination signals,
// multiplexed with epoll, and woken with an eventfd.
//
// Importing this package registers the backend as "unixpoll", on Linux
// only. Attributes (see [winloop.Attributes]):
//   - "unixpoll.evdev" ([]string): evdev device paths, default none, or
//     []string{"auto"} for every /dev/input/event* device
//   - "unixpoll.signals" (bool): report SIGINT and SIGTERM as a
//     CloseRequested window event for window 0, default true
//   - "unixpoll.drm" (string): the DRM sysfs directory, default
//     /sys/class/drm
package unixpoll

// Name is the registered backend name.
const Name = "unixpoll"

// Priority is the registered priority.
const Priority = 0

// Attribute keys.
const (
	AttrEvdev   = "unixpoll.evdev"
	AttrSignals = "unixpoll.signals"
	AttrDRM     = "unixpoll.drm"
)
