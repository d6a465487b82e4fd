package winloop

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// describe summarizes events for comparison.
func describe(ev Event) string {
	switch ev := ev.(type) {
	case NewEvents:
		return "NewEvents(" + ev.Cause.Kind.String() + ")"
	case UserEvent[int]:
		return "UserEvent(" + string(rune('0'+ev.Payload)) + ")"
	default:
		return eventName(ev)
	}
}

func TestBuild_secondLoopPanics(t *testing.T) {
	l := buildFake[int](t, newFakeBackend())
	err := recoverError(t, func() { buildFake[int](t, newFakeBackend()) })
	assert.ErrorIs(t, err, ErrLoopAlreadyExists)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	// released on close
	buildFake[int](t, newFakeBackend())
}

func TestBuild_requiresMainThread(t *testing.T) {
	b := newFakeBackend()
	b.mainThread = true
	err := recoverError(t, func() { buildFake[int](t, b) })
	assert.ErrorIs(t, err, ErrNotMainThread)
	assert.Equal(t, int32(1), b.closed.Load())

	b = newFakeBackend()
	b.mainThread = true
	l := buildFake[int](t, b, WithAnyThread(true))
	assert.NotNil(t, l)
}

func TestEventLoop_iterationOrder(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	proxy := l.CreateProxy()
	require.NoError(t, proxy.SendEvent(1))
	require.NoError(t, proxy.SendEvent(2))
	b.events <- WindowEvent{WindowID: 1, Event: Created{}}
	b.events <- WindowEvent{WindowID: 1, Event: Resized{Size: PhysicalSize{Width: 10, Height: 10}}}

	var got []string
	code := l.RunReturn(func(ev Event, target *WindowTarget[int], cf *ControlFlow) {
		got = append(got, describe(ev))
		if _, ok := ev.(AboutToWait); ok {
			cf.SetExitWithCode(4)
		}
	})
	assert.Equal(t, 4, code)
	want := []string{
		"NewEvents(Init)",
		"Resumed",
		"WindowEvent/Created",
		"WindowEvent/Resized",
		"UserEvent(1)",
		"UserEvent(2)",
		"AboutToWait",
		"LoopDestroyed",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestEventLoop_stickyExit(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	b.events <- WindowEvent{Event: Created{}}
	b.events <- WindowEvent{Event: Focused{Focused: true}}
	require.NoError(t, l.CreateProxy().SendEvent(1))

	var (
		observed []ControlFlow
		n        int
	)
	code := l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		observed = append(observed, *cf)
		n++
		switch {
		case n == 1:
			cf.SetExitWithCode(3)
		case n%2 == 0:
			cf.SetPoll()
		default:
			cf.SetWaitUntil(time.Now().Add(time.Hour))
		}
	})
	assert.Equal(t, 3, code)
	require.Greater(t, len(observed), 3)
	assert.Equal(t, Poll(), observed[0])
	for i, cf := range observed[1:] {
		assert.Equal(t, ExitWithCode(3), cf, "event %d", i+1)
	}
}

func TestEventLoop_runReturnTwiceStartsFromPoll(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	for i, exitCode := range []int32{5, 6} {
		var first *ControlFlow
		var events int
		code := l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
			if first == nil {
				v := *cf
				first = &v
			}
			events++
			if _, ok := ev.(AboutToWait); ok {
				cf.SetExitWithCode(exitCode)
			} else {
				cf.SetWait()
			}
		})
		assert.Equal(t, int(exitCode), code, "run %d", i)
		if assert.NotNil(t, first) {
			assert.Equal(t, Poll(), *first, "run %d", i)
		}
		assert.Equal(t, 4, events, "run %d", i)
	}
}

func TestEventLoop_pollCause(t *testing.T) {
	l := buildFake[int](t, newFakeBackend())
	var causes []StartCauseKind
	code := l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		if ev, ok := ev.(NewEvents); ok {
			causes = append(causes, ev.Cause.Kind)
			if len(causes) == 3 {
				cf.SetExit()
			}
		}
	})
	assert.Equal(t, 0, code)
	assert.Equal(t, []StartCauseKind{CauseInit, CausePoll, CausePoll}, causes)
}

func TestEventLoop_waitUntilResumes(t *testing.T) {
	l := buildFake[int](t, newFakeBackend())
	var (
		deadline time.Time
		cause    StartCause
	)
	l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		switch ev := ev.(type) {
		case NewEvents:
			if ev.Cause.Kind != CauseInit {
				cause = ev.Cause
				cf.SetExit()
			}
		case AboutToWait:
			if deadline.IsZero() {
				deadline = time.Now().Add(20 * time.Millisecond)
				cf.SetWaitUntil(deadline)
			}
		}
	})
	assert.Equal(t, CauseResumeTimeReached, cause.Kind)
	assert.True(t, cause.RequestedResume.Equal(deadline))
	assert.False(t, time.Now().Before(deadline))
}

func TestEventLoop_proxyWakesWaitingLoop(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	proxy := l.CreateProxy()

	go func() {
		plan := <-b.sleeping
		if plan.Mode == WaitForever {
			_ = proxy.SendEvent(7)
		}
	}()

	var (
		delivered int
		causes    []StartCauseKind
	)
	code := l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		switch ev := ev.(type) {
		case NewEvents:
			causes = append(causes, ev.Cause.Kind)
		case UserEvent[int]:
			assert.Equal(t, 7, ev.Payload)
			delivered++
			cf.SetExitWithCode(7)
		case AboutToWait:
			if delivered == 0 {
				cf.SetWait()
			}
		}
	})
	assert.Equal(t, 7, code)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []StartCauseKind{CauseInit, CauseWaitCancelled}, causes)
	assert.Equal(t, int32(1), b.wakes.Load())
}

func TestEventLoop_pendingUserEventSkipsWait(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	proxy := l.CreateProxy()
	var delivered int
	l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		switch ev.(type) {
		case UserEvent[int]:
			delivered++
			cf.SetExit()
		case AboutToWait:
			if delivered == 0 {
				// queued after the drain, must not be slept through
				require.NoError(t, proxy.SendEvent(1))
				cf.SetWait()
			}
		}
	})
	assert.Equal(t, 1, delivered)
	assert.Zero(t, b.wakes.Load())
	assert.Empty(t, b.sleeping)
}

func TestEventLoop_proxyAfterClose(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[string](t, b)
	proxy := l.CreateProxy()
	require.NoError(t, proxy.SendEvent("queued"))
	require.NoError(t, l.Close())
	assert.Equal(t, int32(1), b.closed.Load())

	err := proxy.SendEvent("payload")
	var closed *EventLoopClosedError[string]
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, "payload", closed.Event)

	assert.Error(t, Proxy[string]{}.SendEvent("zero"))
	assert.PanicsWithValue(t, ErrLoopClosed, func() {
		l.RunReturn(func(Event, *WindowTarget[string], *ControlFlow) {})
	})
}

func TestEventLoop_unclosedLoopCollected(t *testing.T) {
	b := newFakeBackend()
	built := make(chan Proxy[int])
	// the loop's goroutine exits without closing it, taking its locked thread
	go func() {
		l := NewBuilder[int](WithBackendFactory(b.factory())).Build()
		built <- l.CreateProxy()
	}()
	proxy := <-built
	require.NoError(t, proxy.SendEvent(1))

	assert.Eventually(t, func() bool {
		runtime.GC()
		return !loopGuard.held.Load() && proxy.SendEvent(2) != nil
	}, 5*time.Second, 10*time.Millisecond)

	var closed *EventLoopClosedError[int]
	assert.ErrorAs(t, proxy.SendEvent(3), &closed)
	assert.Zero(t, b.closed.Load())

	l := buildFake[int](t, newFakeBackend())
	require.NoError(t, l.Close())
}

func TestEventLoop_staleCleanupKeepsNewReservation(t *testing.T) {
	first := buildFake[int](t, newFakeBackend())
	stale := abandoned{guard: first.guard, close: first.shared.close}
	require.NoError(t, first.Close())

	next := buildFake[int](t, newFakeBackend())
	proxy := next.CreateProxy()
	stale.release()
	assert.True(t, loopGuard.held.Load())
	assert.NoError(t, proxy.SendEvent(1))
	err := recoverError(t, func() { buildFake[int](t, newFakeBackend()) })
	assert.ErrorIs(t, err, ErrLoopAlreadyExists)
}

func TestEventLoop_proxyConcurrentSendersKeepOrder(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	const senders, perSender = 8, 200
	proxy := l.CreateProxy()

	var g errgroup.Group
	for s := 0; s < senders; s++ {
		g.Go(func() error {
			for i := 0; i < perSender; i++ {
				if err := proxy.SendEvent(s*perSender + i); err != nil {
					return err
				}
			}
			return nil
		})
	}

	last := make([]int, senders)
	for i := range last {
		last[i] = -1
	}
	var received int
	var sendErr atomic.Value
	go func() {
		if err := g.Wait(); err != nil {
			sendErr.Store(err)
		}
	}()
	l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		switch ev := ev.(type) {
		case UserEvent[int]:
			s, i := ev.Payload/perSender, ev.Payload%perSender
			if i <= last[s] {
				t.Errorf("sender %d: %d delivered after %d", s, i, last[s])
			}
			last[s] = i
			received++
			if received == senders*perSender {
				cf.SetExit()
			}
		case AboutToWait:
			if received < senders*perSender {
				cf.SetWait()
			}
		}
	})
	assert.Nil(t, sendErr.Load())
	assert.Equal(t, senders*perSender, received)
}

func TestEventLoop_displayDisconnect(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	b.events <- WindowEvent{Event: Created{}}
	b.events <- failEvent{}
	var got []string
	code := l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		got = append(got, describe(ev))
	})
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"NewEvents(Init)", "Resumed", "WindowEvent/Created", "LoopDestroyed"}, got)
}

func TestEventLoop_backendRunError(t *testing.T) {
	b := newFakeBackend()
	b.runErr = errors.New("boom")
	var buf bytes.Buffer
	l := buildFake[int](t, b, WithLogger(NewLogger(&buf, logiface.LevelError)))
	var got []string
	code := l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		got = append(got, describe(ev))
	})
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"LoopDestroyed"}, got)
	assert.Contains(t, buf.String(), `event loop backend failed`)
	assert.Contains(t, buf.String(), `boom`)
}

func TestEventLoop_deviceEventFilter(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	motion := func(dx float64) Event { return DeviceEvent{DeviceID: 1, Event: MouseMotion{DeltaX: dx}} }

	// windowless: delivered despite the Unfocused default
	b.events <- motion(1)
	b.events <- WindowEvent{WindowID: 9, Event: Created{}}
	b.events <- motion(2) // no focus
	b.events <- WindowEvent{WindowID: 9, Event: Focused{Focused: true}}
	b.events <- motion(3)
	b.events <- WindowEvent{WindowID: 9, Event: Focused{Focused: false}}
	b.events <- motion(4)

	var got []float64
	l.RunReturn(func(ev Event, target *WindowTarget[int], cf *ControlFlow) {
		if ev, ok := ev.(DeviceEvent); ok {
			got = append(got, ev.Event.(MouseMotion).DeltaX)
		}
		if _, ok := ev.(AboutToWait); ok {
			cf.SetExit()
		}
	})
	assert.Equal(t, []float64{1, 3}, got)

	target := l.WindowTarget()
	target.SetDeviceEventFilter(FilterNever)
	assert.Equal(t, FilterNever, target.DeviceEventFilter())
	if assert.NotNil(t, b.filter) {
		assert.Equal(t, FilterNever, *b.filter)
	}
	b.events <- motion(5)
	got = nil
	l.RunReturn(func(ev Event, target *WindowTarget[int], cf *ControlFlow) {
		switch ev := ev.(type) {
		case DeviceEvent:
			got = append(got, ev.Event.(MouseMotion).DeltaX)
			target.SetDeviceEventFilter(FilterAlways)
			b.events <- motion(6)
		case AboutToWait:
			if len(got) != 0 {
				cf.SetExit()
			}
		}
	})
	assert.Equal(t, []float64{5}, got)
}

func TestEventLoop_deviceEventFilter_unknownWindow(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	motion := func(dx float64) Event { return DeviceEvent{DeviceID: 1, Event: MouseMotion{DeltaX: dx}} }

	// a windowless backend may still report e.g. CloseRequested for a signal
	b.events <- WindowEvent{Event: CloseRequested{}}
	b.events <- motion(1)
	b.events <- WindowEvent{WindowID: 3, Event: Resized{Size: PhysicalSize{Width: 1, Height: 1}}}
	b.events <- motion(2)

	var got []float64
	l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		switch ev := ev.(type) {
		case DeviceEvent:
			got = append(got, ev.Event.(MouseMotion).DeltaX)
		case AboutToWait:
			cf.SetExit()
		}
	})
	assert.Equal(t, []float64{1, 2}, got)
}

func TestEventLoop_affinity(t *testing.T) {
	l := buildFake[int](t, newFakeBackend())
	errs := make(chan any, 3)
	go func() {
		for _, fn := range []func(){
			func() { l.CreateProxy() },
			func() { l.WindowTarget() },
			func() { _ = l.Close() },
		} {
			func() {
				defer func() { errs <- recover() }()
				fn()
			}()
		}
	}()
	for i := 0; i < 3; i++ {
		assert.Equal(t, ErrWrongThread, <-errs)
	}
}

func TestEventLoop_reentrantRun(t *testing.T) {
	l := buildFake[int](t, newFakeBackend())
	assert.PanicsWithValue(t, ErrReentrantRun, func() {
		l.RunReturn(func(_ Event, _ *WindowTarget[int], cf *ControlFlow) {
			assert.ErrorIs(t, l.Close(), ErrReentrantRun)
			l.RunReturn(func(Event, *WindowTarget[int], *ControlFlow) {})
		})
	})
	// still usable
	assert.Equal(t, 2, l.RunReturn(func(_ Event, _ *WindowTarget[int], cf *ControlFlow) { cf.SetExitWithCode(2) }))
}

type exitCode int

func TestEventLoop_Run(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b, withExitFunc(func(code int) { panic(exitCode(code)) }))
	proxy := l.CreateProxy()
	defer func() {
		assert.Equal(t, exitCode(9), recover())
		assert.Equal(t, int32(1), b.closed.Load())
		assert.Error(t, proxy.SendEvent(1))
	}()
	l.Run(func(_ Event, _ *WindowTarget[int], cf *ControlFlow) { cf.SetExitWithCode(9) })
}

func TestEventLoop_slowHandlerWarning(t *testing.T) {
	var buf bytes.Buffer
	l := buildFake[int](t, newFakeBackend(),
		WithLogger(NewLogger(&buf, logiface.LevelWarning)),
		WithSlowHandlerThreshold(time.Millisecond),
	)
	l.RunReturn(func(ev Event, _ *WindowTarget[int], cf *ControlFlow) {
		if _, ok := ev.(Resumed); ok {
			time.Sleep(5 * time.Millisecond)
		}
		cf.SetExit()
	})
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`slow event handler`)))
	assert.Contains(t, buf.String(), `"event":"Resumed"`)
}

func TestWindowTarget_queries(t *testing.T) {
	b := newFakeBackend()
	b.cursor = PhysicalPosition{X: 3, Y: 4}
	l := buildFake[int](t, b)
	target := l.WindowTarget()

	monitors := target.AvailableMonitors()
	require.Len(t, monitors, 2)
	assert.Equal(t, uint64(1), monitors[0].ID())
	assert.Equal(t, uint64(2), monitors[1].ID())

	primary, ok := target.PrimaryMonitor()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), primary.ID())

	m, ok := target.MonitorFromPoint(2000, 500)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), m.ID())
	_, ok = target.MonitorFromPoint(-5, 0)
	assert.False(t, ok)

	// unsupported
	assert.Equal(t, PhysicalPosition{}, target.CursorPosition())
	b.cursorErr = nil
	assert.Equal(t, PhysicalPosition{X: 3, Y: 4}, target.CursorPosition())

	target.SetTheme(ThemeDark)
	target.SetBadgeCount(3)
	state, progress := ProgressNormal, uint64(140)
	target.SetProgressBar(ProgressBarState{State: &state, Progress: &progress})
	b.mu.Lock()
	assert.Equal(t, ThemeDark, b.theme)
	assert.Equal(t, 3, b.badge)
	if assert.NotNil(t, b.progress) {
		assert.Equal(t, uint64(100), *b.progress.Progress)
	}
	b.mu.Unlock()

	require.NoError(t, l.Close())
	assert.Nil(t, target.AvailableMonitors())
	_, ok = target.PrimaryMonitor()
	assert.False(t, ok)
	target.SetBadgeCount(1)
	assert.Equal(t, 3, b.badge)
}

func TestWindowTarget_concurrentQueriesWhilePumping(t *testing.T) {
	b := newFakeBackend()
	l := buildFake[int](t, b)
	target := l.WindowTarget()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	var done atomic.Bool
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for n := 0; n < 500; n++ {
				monitors := target.AvailableMonitors()
				if len(monitors) != 2 || monitors[0].ID() != 1 || monitors[1].ID() != 2 {
					return errors.New("torn monitor list")
				}
				if m, ok := target.PrimaryMonitor(); !ok || m.ID() != 1 {
					return errors.New("bad primary monitor")
				}
				if m, ok := target.MonitorFromPoint(1920, 0); !ok || m.ID() != 2 || m.Size() != (PhysicalSize{Width: 1920, Height: 1080}) {
					return errors.New("bad point lookup")
				}
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		done.Store(true)
	}()

	l.RunReturn(func(ev Event, target *WindowTarget[int], cf *ControlFlow) {
		if _, ok := ev.(AboutToWait); ok {
			_ = target.AvailableMonitors()
			if done.Load() {
				cf.SetExit()
			}
		}
	})
	require.NoError(t, g.Wait())
}
