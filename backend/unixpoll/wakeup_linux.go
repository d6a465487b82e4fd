//go:build linux

package unixpoll

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// waker is an eventfd, readable while a wake is pending.
type waker struct {
	fd int
}

func (w *waker) init() error {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return err
	}
	w.fd = fd
	return nil
}

// wake never blocks. EAGAIN means the counter is saturated, which is still
// a pending wake.
func (w *waker) wake() {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, _ = unix.Write(w.fd, buf[:])
}

// drain consumes any pending wakes.
func (w *waker) drain() {
	var buf [8]byte
	for {
		if _, err := unix.Read(w.fd, buf[:]); err != unix.EINTR {
			return
		}
	}
}

func (w *waker) close() error {
	if w.fd > 0 {
		err := unix.Close(w.fd)
		w.fd = -1
		return err
	}
	return nil
}
