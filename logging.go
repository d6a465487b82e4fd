package winloop

import (
	"io"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// NewLogger returns a JSON logger writing to w, at the given level. It is
// used when logging is enabled through WINLOOP_LOG_LEVEL.
func NewLogger(w io.Writer, level logiface.Level) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

// newSlowHandlerLimiter limits slow handler warnings, per event type.
func newSlowHandlerLimiter() *catrate.Limiter {
	return catrate.NewLimiter(map[time.Duration]int{
		time.Second: 1,
		time.Minute: 10,
	})
}

// logSlowHandler logs a warning if the handler took longer than the
// threshold, at most as often as the limiter allows, per event type.
func (x *EventLoop[T]) logSlowHandler(ev Event, elapsed time.Duration) {
	if x.opts.slowHandlerThreshold <= 0 || elapsed < x.opts.slowHandlerThreshold {
		return
	}
	b := x.log.Warning()
	if !b.Enabled() {
		return
	}
	name := eventName(ev)
	if _, ok := x.slowLimiter.Allow(name); !ok {
		b.Release()
		return
	}
	b.Str(`event`, name).
		Dur(`elapsed`, elapsed).
		Dur(`threshold`, x.opts.slowHandlerThreshold).
		Log(`slow event handler stalls event delivery`)
}
