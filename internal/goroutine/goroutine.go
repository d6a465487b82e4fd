// Package goroutine identifies goroutines, for thread-affinity checks.
package goroutine

import (
	"runtime"
)

var mainID uint64

func init() {
	mainID = ID()
}

// ID returns the id of the calling goroutine, parsed from the header of its
// stack trace. Zero is returned if the header could not be parsed.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}

// Main returns the id of the goroutine that ran package initialization,
// which is the main goroutine.
func Main() uint64 { return mainID }

// IsMain reports whether the caller is running on the main goroutine.
func IsMain() bool { return ID() == mainID }
