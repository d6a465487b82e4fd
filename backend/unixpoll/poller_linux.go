//go:build linux

package unixpoll

import (
	"golang.org/x/sys/unix"
)

// poller is a minimal level-triggered epoll set. It is owned by the loop
// goroutine, and is not safe for concurrent use.
type poller struct {
	epfd     int
	eventBuf [128]unix.EpollEvent
}

func (p *poller) init() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	p.epfd = epfd
	return nil
}

func (p *poller) close() error {
	if p.epfd > 0 {
		err := unix.Close(p.epfd)
		p.epfd = -1
		return err
	}
	return nil
}

// add registers fd for readability, hangup and error are always reported.
func (p *poller) add(fd int) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *poller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait blocks for up to timeoutMs (-1 is forever), returning the ready
// events, valid until the next call. Interrupts are reported as no events.
func (p *poller) wait(timeoutMs int) ([]unix.EpollEvent, error) {
	n, err := unix.EpollWait(p.epfd, p.eventBuf[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	return p.eventBuf[:n], nil
}
