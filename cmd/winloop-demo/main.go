// Command winloop-demo runs an event loop on any registered backend,
// logging every event, with a proxy feeding it a user event per tick.
//
// Usage:
//
//	winloop-demo [-config file.toml] [-backend name] [-log-level level] [-exit-after duration]
//
// The loop exits with code 0 on the first CloseRequested, or after
// -exit-after elapses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joeycumines/logiface"

	"github.com/joeycumines/go-winloop"
	_ "github.com/joeycumines/go-winloop/backend/ebiten"
	_ "github.com/joeycumines/go-winloop/backend/headless"
	_ "github.com/joeycumines/go-winloop/backend/unixpoll"
)

func main() {
	cfg, err := parseArgs(os.Args[1:], os.ReadFile, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	d := newDemo(cfg, os.Stderr)
	d.start()
	d.loop.Run(d.handle)
}

// parseArgs loads the config file, if any, then applies flag overrides.
// Usage is written to usage on -h, which returns flag.ErrHelp.
func parseArgs(args []string, readFile func(string) ([]byte, error), usage io.Writer) (Config, error) {
	fs := flag.NewFlagSet("winloop-demo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath = fs.String("config", "", "TOML config `file`")
		backend    = fs.String("backend", "", "backend `name`, empty selects automatically")
		logLevel   = fs.String("log-level", "", "log `level`")
		exitAfter  = fs.Duration("exit-after", 0, "exit after this `duration`, if positive")
		tick       = fs.Duration("tick", 0, "user event `interval`")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(usage)
			fmt.Fprintf(usage, "Usage of %s:\n", fs.Name())
			fs.PrintDefaults()
		}
		return Config{}, err
	}
	if fs.NArg() != 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %q", fs.Args())
	}

	cfg := defaultConfig()
	if *configPath != "" {
		b, err := readFile(*configPath)
		if err != nil {
			return Config{}, err
		}
		if err := loadConfig(&cfg, string(b)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", *configPath, err)
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "log-level":
			cfg.LogLevel = *logLevel
		case "exit-after":
			cfg.ExitAfter = *exitAfter
		case "tick":
			cfg.Tick = *tick
		}
	})
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type tick struct {
	n  int
	at time.Time
}

type demo struct {
	cfg      Config
	log      *logiface.Logger[logiface.Event]
	loop     *winloop.EventLoop[tick]
	cancel   context.CancelFunc
	deadline time.Time
	ticks    int
}

// newDemo builds the event loop, panicking like Build if it can't.
func newDemo(cfg Config, w io.Writer) *demo {
	level, _ := winloop.ParseLevel(cfg.LogLevel)
	d := &demo{cfg: cfg, log: winloop.NewLogger(w, level)}
	opts := []winloop.LoopOption{winloop.WithLogger(d.log)}
	if cfg.Backend != "" {
		opts = append(opts, winloop.WithBackend(cfg.Backend))
	}
	d.loop = winloop.NewBuilder[tick](opts...).
		WithAttributes(cfg.attributes()).
		Build()
	return d
}

// start begins sending ticks through a proxy, until the loop closes.
func (x *demo) start() {
	if x.cfg.ExitAfter > 0 {
		x.deadline = time.Now().Add(x.cfg.ExitAfter)
	}
	if x.cfg.Tick <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	x.cancel = cancel
	proxy := x.loop.CreateProxy()
	go func() {
		t := time.NewTicker(x.cfg.Tick)
		defer t.Stop()
		for n := 1; ; n++ {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				var closed *winloop.EventLoopClosedError[tick]
				if err := proxy.SendEvent(tick{n: n, at: now}); errors.As(err, &closed) {
					return
				}
			}
		}
	}()
}

func (x *demo) stop() {
	if x.cancel != nil {
		x.cancel()
	}
}

func (x *demo) handle(ev winloop.Event, target *winloop.WindowTarget[tick], cf *winloop.ControlFlow) {
	if x.deadline.IsZero() {
		cf.SetWait()
	} else {
		cf.SetWaitUntil(x.deadline)
	}

	switch ev := ev.(type) {
	case winloop.NewEvents:
		if ev.Cause.Kind == winloop.CauseResumeTimeReached {
			x.log.Info().Log(`exit deadline reached`)
			cf.SetExit()
		}
	case winloop.Resumed:
		x.logMonitors(target)
	case winloop.UserEvent[tick]:
		x.ticks++
		x.log.Info().
			Int(`tick`, ev.Payload.n).
			Dur(`latency`, time.Since(ev.Payload.at)).
			Log(`tick`)
	case winloop.WindowEvent:
		x.log.Debug().
			Uint64(`window`, uint64(ev.WindowID)).
			Str(`kind`, fmt.Sprintf("%T", ev.Event)).
			Log(`window event`)
		if _, ok := ev.Event.(winloop.CloseRequested); ok {
			x.log.Info().Log(`close requested`)
			cf.SetExit()
		}
	case winloop.DeviceEvent:
		x.log.Trace().
			Uint64(`device`, uint64(ev.DeviceID)).
			Str(`kind`, fmt.Sprintf("%T", ev.Event)).
			Log(`device event`)
	case winloop.LoopDestroyed:
		x.stop()
		x.log.Info().
			Int(`ticks`, x.ticks).
			Log(`loop destroyed`)
	}
}

func (x *demo) logMonitors(target *winloop.WindowTarget[tick]) {
	primary, _ := target.PrimaryMonitor()
	for _, m := range target.AvailableMonitors() {
		size := m.Size()
		px, py := m.Position()
		x.log.Info().
			Str(`monitor`, m.String()).
			Uint64(`width`, uint64(size.Width)).
			Uint64(`height`, uint64(size.Height)).
			Int(`x`, int(px)).
			Int(`y`, int(py)).
			Float64(`scale`, m.ScaleFactor()).
			Bool(`primary`, m.Equal(primary)).
			Log(`monitor`)
	}
}
