package ebiten

import (
	"errors"
	"image"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	eb "github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/joeycumines/logiface"
	"golang.org/x/exp/slices"

	"github.com/joeycumines/go-winloop"
)

func init() {
	winloop.RegisterBackend(Name, Priority, FromConfig)
}

// ErrNoDisplay is returned by FromConfig on X11 and Wayland platforms when
// neither DISPLAY nor WAYLAND_DISPLAY is set, letting the next backend be
// tried.
var ErrNoDisplay = errors.New("ebiten: no display")

// iconSizes are the sizes the window icon is offered in.
var iconSizes = [...]uint32{16, 32, 48}

// Options configures a Backend.
type Options struct {
	Logger *logiface.Logger[logiface.Event]
	Title  string
	// Size defaults to 640x480.
	Size winloop.LogicalSize
	Icon *winloop.Icon
	// TPS defaults to 60.
	TPS int
}

// Backend is the Ebitengine backend. Run may only be called on the main
// thread, the rest are safe for concurrent use.
type Backend struct {
	opts    Options
	log     *logiface.Logger[logiface.Event]
	runner  *winloop.Runner
	tracker tracker
	pending []winloop.Event
	plan    winloop.WaitPlan
	sample  struct {
		keys    []eb.Key
		chars   []rune
		touches []eb.TouchID
	}
	woken  atomic.Bool
	cursor atomic.Pointer[winloop.PhysicalPosition]
	mu     sync.RWMutex
	state  struct {
		monitors []winloop.MonitorHandle
		primary  uint64
	}
}

// FromConfig is the registered factory.
func FromConfig(cfg winloop.BackendConfig) (winloop.Backend, error) {
	if !displayAvailable(runtime.GOOS, os.Getenv) {
		return nil, ErrNoDisplay
	}
	opts := Options{Logger: cfg.Logger}
	if v, ok := winloop.Lookup[string](cfg.Attributes, AttrTitle); ok {
		opts.Title = v
	}
	if v, ok := winloop.Lookup[winloop.LogicalSize](cfg.Attributes, AttrSize); ok {
		opts.Size = v
	}
	if v, ok := winloop.Lookup[*winloop.Icon](cfg.Attributes, AttrIcon); ok {
		opts.Icon = v
	}
	if v, ok := winloop.Lookup[int](cfg.Attributes, AttrTPS); ok {
		opts.TPS = v
	}
	return New(opts), nil
}

func displayAvailable(goos string, getenv func(string) string) bool {
	switch goos {
	case "linux", "freebsd", "netbsd", "openbsd", "dragonfly":
		return getenv("DISPLAY") != "" || getenv("WAYLAND_DISPLAY") != ""
	default:
		return true
	}
}

// New returns a backend. Nothing native happens until Run.
func New(opts Options) *Backend {
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		opts.Size = winloop.LogicalSize{Width: 640, Height: 480}
	}
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	return &Backend{opts: opts, log: opts.Logger}
}

// RequiresMainThread implements winloop.MainThreadBound.
func (b *Backend) RequiresMainThread() bool { return true }

// Run implements winloop.Backend, blocking in ebiten.RunGameWithOptions.
func (b *Backend) Run(r *winloop.Runner) error {
	b.runner = r
	b.tracker = tracker{}
	b.plan = winloop.WaitPlan{}

	eb.SetWindowClosingHandled(true)
	eb.SetWindowResizingMode(eb.WindowResizingModeEnabled)
	eb.SetWindowSize(int(b.opts.Size.Width), int(b.opts.Size.Height))
	eb.SetScreenClearedEveryFrame(false)
	eb.SetTPS(b.opts.TPS)
	if b.opts.Title != "" {
		eb.SetWindowTitle(b.opts.Title)
	}
	if b.opts.Icon != nil {
		eb.SetWindowIcon(b.iconImages())
	}

	b.log.Debug().
		Int(`tps`, b.opts.TPS).
		Log(`ebiten backend running`)
	defer b.log.Debug().Log(`ebiten backend stopped`)

	err := eb.RunGameWithOptions(game{b}, &eb.RunGameOptions{SingleThread: true})
	if errors.Is(err, eb.Termination) {
		err = nil
	}
	return err
}

func (b *Backend) iconImages() []image.Image {
	var images []image.Image
	for _, size := range iconSizes {
		icon, err := b.opts.Icon.Scaled(size, size)
		if err != nil {
			b.log.Warning().Err(err).Log(`ebiten: failed to scale window icon`)
			continue
		}
		images = append(images, icon.Image())
	}
	return images
}

type game struct{ b *Backend }

func (g game) Update() error { return g.b.update(time.Now()) }

func (game) Draw(*eb.Image) {}

func (game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// update samples input every tick, so edges are never missed, but only
// runs an iteration when the previous plan allows.
func (b *Backend) update(now time.Time) error {
	b.refreshMonitors()
	b.tracker.events(b.sampleFrame(), func(ev winloop.Event) {
		b.pending = append(b.pending, ev)
	})

	woken := b.woken.Swap(false)
	if !shouldStep(b.plan, now, len(b.pending) != 0, woken) {
		return nil
	}

	b.runner.Begin()
	for i, ev := range b.pending {
		b.pending[i] = nil
		b.runner.Dispatch(ev)
	}
	b.pending = b.pending[:0]
	if !b.runner.Cleared() {
		return eb.Termination
	}
	b.plan = b.runner.Plan()
	return nil
}

func (b *Backend) sampleFrame() frame {
	monitor := eb.Monitor()
	scale := 1.0
	if monitor != nil {
		scale = monitor.DeviceScaleFactor()
	}
	if !winloop.ValidScaleFactor(scale) {
		scale = 1
	}

	var f frame
	f.scale = scale
	f.closing = eb.IsWindowBeingClosed()
	f.focused = eb.IsFocused()
	w, h := eb.WindowSize()
	f.size = winloop.LogicalSize{Width: float64(w), Height: float64(h)}.ToPhysical(scale)
	x, y := eb.WindowPosition()
	f.position = winloop.LogicalPosition{X: float64(x), Y: float64(y)}.ToPhysical(scale)
	cx, cy := eb.CursorPosition()
	f.cursor = winloop.LogicalPosition{X: float64(cx), Y: float64(cy)}.ToPhysical(scale)
	f.wheelX, f.wheelY = eb.Wheel()

	desktop := winloop.PhysicalPosition{X: f.position.X + f.cursor.X, Y: f.position.Y + f.cursor.Y}
	b.cursor.Store(&desktop)

	b.sample.keys = inpututil.AppendJustPressedKeys(b.sample.keys[:0])
	f.pressed = slices.Clone(b.sample.keys)
	b.sample.keys = inpututil.AppendJustReleasedKeys(b.sample.keys[:0])
	f.released = slices.Clone(b.sample.keys)
	b.sample.chars = eb.AppendInputChars(b.sample.chars[:0])
	f.chars = slices.Clone(b.sample.chars)

	for _, button := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(button) {
			f.down = append(f.down, button)
		}
		if inpututil.IsMouseButtonJustReleased(button) {
			f.up = append(f.up, button)
		}
	}

	location := func(x, y int) winloop.PhysicalPosition {
		return winloop.LogicalPosition{X: float64(x), Y: float64(y)}.ToPhysical(scale)
	}
	b.sample.touches = inpututil.AppendJustPressedTouchIDs(b.sample.touches[:0])
	for _, id := range b.sample.touches {
		f.touches = append(f.touches, touch{id: id, location: location(eb.TouchPosition(id)), phase: winloop.TouchStarted})
	}
	b.sample.touches = eb.AppendTouchIDs(b.sample.touches[:0])
	for _, id := range b.sample.touches {
		if inpututil.TouchPressDuration(id) > 1 {
			f.touches = append(f.touches, touch{id: id, location: location(eb.TouchPosition(id)), phase: winloop.TouchMoved})
		}
	}
	b.sample.touches = inpututil.AppendJustReleasedTouchIDs(b.sample.touches[:0])
	for _, id := range b.sample.touches {
		f.touches = append(f.touches, touch{id: id, location: location(inpututil.TouchPositionInPreviousTick(id)), phase: winloop.TouchEnded})
	}

	return f
}

func (b *Backend) refreshMonitors() {
	var handles []winloop.MonitorHandle
	var primary uint64
	current := eb.Monitor()
	for i, m := range eb.AppendMonitors(nil) {
		scale := m.DeviceScaleFactor()
		w, h := m.Size()
		info := winloop.MonitorInfo{
			Name:        m.Name(),
			ID:          uint64(i + 1),
			Size:        winloop.LogicalSize{Width: float64(w), Height: float64(h)}.ToPhysical(validScale(scale)),
			ScaleFactor: scale,
		}
		if m == current {
			primary = info.ID
		}
		handles = append(handles, winloop.NewMonitorHandle(info))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.monitors = handles
	b.state.primary = primary
}

func validScale(f float64) float64 {
	if winloop.ValidScaleFactor(f) {
		return f
	}
	return 1
}

// Wake implements winloop.Backend. The wait ends on the next tick.
func (b *Backend) Wake() { b.woken.Store(true) }

// AvailableMonitors implements winloop.Backend. Monitors are only known
// once running.
func (b *Backend) AvailableMonitors() []winloop.MonitorHandle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.state.monitors)
}

// PrimaryMonitor implements winloop.Backend, returning the monitor the
// window is on.
func (b *Backend) PrimaryMonitor() (winloop.MonitorHandle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := slices.IndexFunc(b.state.monitors, func(m winloop.MonitorHandle) bool { return m.ID() == b.state.primary })
	if i < 0 {
		return winloop.MonitorHandle{}, false
	}
	return b.state.monitors[i], true
}

// MonitorFromPoint implements winloop.Backend. Ebitengine doesn't report
// monitor positions, so only a point on the primary monitor is found.
func (b *Backend) MonitorFromPoint(x, y float64) (winloop.MonitorHandle, bool) {
	m, ok := b.PrimaryMonitor()
	if !ok || !m.Contains(x, y) {
		return winloop.MonitorHandle{}, false
	}
	return m, true
}

// CursorPosition implements winloop.Backend, from the last tick.
func (b *Backend) CursorPosition() (winloop.PhysicalPosition, error) {
	if pos := b.cursor.Load(); pos != nil {
		return *pos, nil
	}
	return winloop.PhysicalPosition{}, winloop.ErrNotSupported
}

// Close implements winloop.Backend. Ebitengine can't be restarted within
// a process once its game has terminated.
func (b *Backend) Close() error { return nil }
