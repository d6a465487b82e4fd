//go:build linux

package unixpoll

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/joeycumines/logiface"
	"golang.org/x/exp/slices"
	"golang.org/x/sys/unix"

	"github.com/joeycumines/go-winloop"
)

func init() {
	winloop.RegisterBackend(Name, Priority, FromConfig)
}

// recordSize is sizeof(struct input_event).
const recordSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

// Options configures a Backend.
type Options struct {
	Logger *logiface.Logger[logiface.Event]
	// Devices are evdev device paths. The single path "auto" selects every
	// /dev/input/event* device that can be opened.
	Devices []string
	// Signals enables reporting SIGINT and SIGTERM as CloseRequested.
	Signals bool
	// DRMRoot defaults to /sys/class/drm.
	DRMRoot string
}

// Backend is the epoll backend. Run, Drain and Wait are called by the loop
// goroutine, the rest are safe for concurrent use.
type Backend struct {
	log      *logiface.Logger[logiface.Event]
	poll     poller
	waker    waker
	drm      fs.FS
	devices  map[int]*device
	signals  chan os.Signal
	done     chan struct{}
	wg       sync.WaitGroup
	readBuf  []byte
	monitors struct {
		handles []winloop.MonitorHandle
		primary uint64
	}
	mu         sync.RWMutex
	closed     bool
	sigPending bool
}

type device struct {
	path    string
	fd      int
	dec     decoder
	partial []byte
	added   bool
}

// FromConfig is the registered factory.
func FromConfig(cfg winloop.BackendConfig) (winloop.Backend, error) {
	opts := Options{Logger: cfg.Logger, Signals: true}
	if v, ok := winloop.Lookup[[]string](cfg.Attributes, AttrEvdev); ok {
		opts.Devices = v
	}
	if v, ok := winloop.Lookup[bool](cfg.Attributes, AttrSignals); ok {
		opts.Signals = v
	}
	if v, ok := winloop.Lookup[string](cfg.Attributes, AttrDRM); ok {
		opts.DRMRoot = v
	}
	return New(opts)
}

// New opens the epoll set, wake fd, and the configured devices.
func New(opts Options) (*Backend, error) {
	if opts.DRMRoot == "" {
		opts.DRMRoot = defaultDRMRoot
	}
	b := &Backend{
		log:     opts.Logger,
		drm:     os.DirFS(opts.DRMRoot),
		devices: make(map[int]*device),
		done:    make(chan struct{}),
		readBuf: make([]byte, recordSize*64),
	}
	if err := b.poll.init(); err != nil {
		return nil, fmt.Errorf("unixpoll: epoll: %w", err)
	}
	if err := b.waker.init(); err != nil {
		_ = b.poll.close()
		return nil, fmt.Errorf("unixpoll: eventfd: %w", err)
	}
	if err := b.poll.add(b.waker.fd); err != nil {
		_ = b.closeFds()
		return nil, fmt.Errorf("unixpoll: register eventfd: %w", err)
	}
	if err := b.openDevices(opts.Devices); err != nil {
		for fd := range b.devices {
			_ = unix.Close(fd)
		}
		_ = b.closeFds()
		return nil, err
	}
	if opts.Signals {
		b.signals = make(chan os.Signal, 1)
		signal.Notify(b.signals, syscall.SIGINT, syscall.SIGTERM)
		b.wg.Add(1)
		go b.forwardSignals()
	}
	return b, nil
}

func (b *Backend) openDevices(paths []string) error {
	auto := len(paths) == 1 && paths[0] == "auto"
	if auto {
		var err error
		if paths, err = filepath.Glob("/dev/input/event*"); err != nil {
			return fmt.Errorf("unixpoll: list devices: %w", err)
		}
	}
	for i, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err == nil {
			if err = b.poll.add(fd); err != nil {
				_ = unix.Close(fd)
			}
		}
		if err != nil {
			if auto {
				b.log.Warning().
					Str(`path`, path).
					Err(err).
					Log(`unixpoll: skipping input device`)
				continue
			}
			return fmt.Errorf("unixpoll: open device %q: %w", path, err)
		}
		b.devices[fd] = &device{
			path: path,
			fd:   fd,
			dec:  decoder{id: winloop.DeviceID(i + 1), size: recordSize},
		}
	}
	return nil
}

func (b *Backend) forwardSignals() {
	defer b.wg.Done()
	for {
		select {
		case sig := <-b.signals:
			b.log.Info().
				Str(`signal`, sig.String()).
				Log(`unixpoll: close requested by signal`)
			b.mu.Lock()
			b.sigPending = true
			if !b.closed {
				b.waker.wake()
			}
			b.mu.Unlock()
		case <-b.done:
			return
		}
	}
}

// Run implements winloop.Backend.
func (b *Backend) Run(r *winloop.Runner) error {
	b.log.Debug().
		Int(`devices`, len(b.devices)).
		Log(`unixpoll backend running`)
	defer b.log.Debug().Log(`unixpoll backend stopped`)
	return winloop.Pump(r, b)
}

// Wait implements winloop.Pollable. Readiness is level-triggered, so the
// ready set is collected again by Drain.
func (b *Backend) Wait(plan winloop.WaitPlan) error {
	if plan.Mode == winloop.WaitNone {
		return nil
	}
	_, err := b.poll.wait(plan.TimeoutMillis(time.Now()))
	return err
}

// Drain implements winloop.Pollable.
func (b *Backend) Drain(emit func(ev winloop.Event)) error {
	b.mu.Lock()
	sigPending := b.sigPending
	b.sigPending = false
	b.mu.Unlock()
	if sigPending {
		emit(winloop.WindowEvent{Event: winloop.CloseRequested{}})
	}

	for _, d := range b.sortedDevices() {
		if !d.added {
			d.added = true
			emit(winloop.DeviceEvent{DeviceID: d.dec.id, Event: winloop.DeviceAdded{}})
		}
	}

	ready, err := b.poll.wait(0)
	if err != nil {
		return err
	}
	for _, ev := range ready {
		fd := int(ev.Fd)
		if fd == b.waker.fd {
			b.waker.drain()
			continue
		}
		if d := b.devices[fd]; d != nil {
			b.readDevice(d, ev.Events, emit)
		}
	}
	return nil
}

// sortedDevices orders devices by id, so DeviceAdded is deterministic.
func (b *Backend) sortedDevices() []*device {
	devices := make([]*device, 0, len(b.devices))
	for _, d := range b.devices {
		devices = append(devices, d)
	}
	slices.SortFunc(devices, func(l, r *device) int { return cmp.Compare(l.dec.id, r.dec.id) })
	return devices
}

func (b *Backend) readDevice(d *device, events uint32, emit func(ev winloop.Event)) {
	for {
		n, err := unix.Read(d.fd, b.readBuf)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			if events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
				b.removeDevice(d, nil, emit)
			}
			return
		}
		if err != nil || n == 0 {
			// ENODEV on unplug, EOF when the writer goes away
			b.removeDevice(d, err, emit)
			return
		}
		buf := b.readBuf[:n]
		if len(d.partial) != 0 {
			buf = append(d.partial, buf...)
		}
		consumed := d.dec.decode(buf, emit)
		d.partial = append(d.partial[:0], buf[consumed:]...)
	}
}

func (b *Backend) removeDevice(d *device, err error, emit func(ev winloop.Event)) {
	entry := b.log.Info().Str(`path`, d.path)
	if err != nil {
		entry = entry.Err(err)
	}
	entry.Log(`unixpoll: input device removed`)
	_ = b.poll.remove(d.fd)
	_ = unix.Close(d.fd)
	delete(b.devices, d.fd)
	emit(winloop.DeviceEvent{DeviceID: d.dec.id, Event: winloop.DeviceRemoved{}})
}

// Wake implements winloop.Backend.
func (b *Backend) Wake() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.closed {
		b.waker.wake()
	}
}

// AvailableMonitors implements winloop.Backend, rescanning the DRM
// connectors.
func (b *Backend) AvailableMonitors() []winloop.MonitorHandle {
	handles, _ := b.scanMonitors()
	return handles
}

// PrimaryMonitor implements winloop.Backend, returning the first connected
// connector.
func (b *Backend) PrimaryMonitor() (winloop.MonitorHandle, bool) {
	handles, primary := b.scanMonitors()
	i := slices.IndexFunc(handles, func(m winloop.MonitorHandle) bool { return m.ID() == primary })
	if i < 0 {
		return winloop.MonitorHandle{}, false
	}
	return handles[i], true
}

// MonitorFromPoint implements winloop.Backend.
func (b *Backend) MonitorFromPoint(x, y float64) (winloop.MonitorHandle, bool) {
	handles, _ := b.scanMonitors()
	return winloop.MonitorAt(handles, x, y)
}

// scanMonitors falls back to the last successful scan if sysfs can't be
// read.
func (b *Backend) scanMonitors() ([]winloop.MonitorHandle, uint64) {
	infos, err := scanDRM(b.drm)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.log.Debug().Err(err).Log(`unixpoll: monitor scan failed`)
		return slices.Clone(b.monitors.handles), b.monitors.primary
	}
	handles := make([]winloop.MonitorHandle, len(infos))
	for i, info := range infos {
		handles[i] = winloop.NewMonitorHandle(info)
	}
	winloop.SortMonitors(handles)
	b.monitors.handles = handles
	b.monitors.primary = 0
	if len(infos) != 0 {
		b.monitors.primary = infos[0].ID
	}
	return slices.Clone(handles), b.monitors.primary
}

// CursorPosition implements winloop.Backend. There is no desktop, so it
// always fails.
func (b *Backend) CursorPosition() (winloop.PhysicalPosition, error) {
	return winloop.PhysicalPosition{}, winloop.ErrNotSupported
}

// Close implements winloop.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	if b.signals != nil {
		signal.Stop(b.signals)
	}
	close(b.done)
	b.wg.Wait()
	var errs []error
	for fd := range b.devices {
		errs = append(errs, unix.Close(fd))
	}
	clear(b.devices)
	errs = append(errs, b.closeFds())
	return errors.Join(errs...)
}

func (b *Backend) closeFds() error {
	return errors.Join(b.waker.close(), b.poll.close())
}
