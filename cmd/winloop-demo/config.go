package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/joeycumines/go-winloop"
	"github.com/joeycumines/go-winloop/backend/ebiten"
	"github.com/joeycumines/go-winloop/backend/headless"
	"github.com/joeycumines/go-winloop/backend/unixpoll"
)

// Config is the demo configuration, loaded from a TOML file, then
// overridden by flags.
type Config struct {
	// Backend is a registered backend name, empty selects automatically.
	Backend  string `toml:"backend"`
	LogLevel string `toml:"log_level"`
	// ExitAfter exits the loop after the given duration, if positive.
	ExitAfter time.Duration `toml:"exit_after"`
	// Tick is the interval between user events, sent by a proxy.
	Tick     time.Duration  `toml:"tick"`
	Headless HeadlessConfig `toml:"headless"`
	Unixpoll UnixpollConfig `toml:"unixpoll"`
	Ebiten   EbitenConfig   `toml:"ebiten"`
}

// HeadlessConfig configures the headless backend.
type HeadlessConfig struct {
	Monitors []MonitorConfig `toml:"monitors"`
}

// MonitorConfig describes a simulated headless monitor.
type MonitorConfig struct {
	Name   string  `toml:"name"`
	Width  uint32  `toml:"width"`
	Height uint32  `toml:"height"`
	X      int32   `toml:"x"`
	Y      int32   `toml:"y"`
	Scale  float64 `toml:"scale"`
}

// UnixpollConfig configures the unixpoll backend, nil fields keep its defaults.
type UnixpollConfig struct {
	Devices []string `toml:"devices"`
	Signals *bool    `toml:"signals"`
}

// EbitenConfig configures the ebiten backend.
type EbitenConfig struct {
	Title string `toml:"title"`
	TPS   int    `toml:"tps"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Tick:     time.Second,
	}
}

// loadConfig decodes a TOML document over cfg, rejecting unknown keys.
func loadConfig(cfg *Config, doc string) error {
	md, err := toml.Decode(doc, cfg)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (x *Config) validate() error {
	if _, err := winloop.ParseLevel(x.LogLevel); err != nil {
		return err
	}
	if x.Tick < 0 {
		return fmt.Errorf("negative tick: %s", x.Tick)
	}
	for i, m := range x.Headless.Monitors {
		if m.Width == 0 || m.Height == 0 {
			return fmt.Errorf("headless monitor %d: zero size", i)
		}
	}
	return nil
}

// attributes converts the backend sections to builder attributes.
func (x *Config) attributes() winloop.Attributes {
	attrs := winloop.Attributes{}
	if len(x.Headless.Monitors) != 0 {
		monitors := make([]winloop.MonitorInfo, len(x.Headless.Monitors))
		for i, m := range x.Headless.Monitors {
			size := winloop.PhysicalSize{Width: m.Width, Height: m.Height}
			monitors[i] = winloop.MonitorInfo{
				Name:        m.Name,
				ID:          uint64(i + 1),
				Size:        size,
				X:           m.X,
				Y:           m.Y,
				ScaleFactor: m.Scale,
				VideoModes:  []winloop.VideoModeInfo{{Size: size, BitDepth: 32, RefreshRate: 60}},
			}
		}
		attrs[headless.AttrMonitors] = monitors
	}
	if x.Unixpoll.Devices != nil {
		attrs[unixpoll.AttrEvdev] = x.Unixpoll.Devices
	}
	if x.Unixpoll.Signals != nil {
		attrs[unixpoll.AttrSignals] = *x.Unixpoll.Signals
	}
	if x.Ebiten.Title != "" {
		attrs[ebiten.AttrTitle] = x.Ebiten.Title
	}
	if x.Ebiten.TPS != 0 {
		attrs[ebiten.AttrTPS] = x.Ebiten.TPS
	}
	return attrs
}
