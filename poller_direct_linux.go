//go:build linux

package evloop

import (
	"time"

	"golang.org/x/sys/unix"
)

func newDirectEngine() (Engine, error) {
	return newEngineCore(&epollPoller{})
}

// epollPoller is the direct Linux readiness backend: a thin wrapper over
// epoll_create1/epoll_ctl/epoll_wait. Unlike the portable reactor backends,
// the kernel maintains the interest set, so wait needs no rebuild step.
type epollPoller struct {
	fd int
}

func (p *epollPoller) init() error {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	p.fd = fd
	return nil
}

func (p *epollPoller) close() error {
	return unix.Close(p.fd)
}

func epollEventsFor(mask FDMask) uint32 {
	var ev uint32
	if mask.has(EventRead) {
		ev |= unix.EPOLLIN
	}
	if mask.has(EventWrite) {
		ev |= unix.EPOLLOUT
	}
	if mask.has(EventExcept) {
		ev |= unix.EPOLLERR | unix.EPOLLHUP
	}
	return ev
}

func fdMaskFromEpoll(ev uint32) FDMask {
	var mask FDMask
	if ev&unix.EPOLLIN != 0 {
		mask |= EventRead
	}
	if ev&unix.EPOLLOUT != 0 {
		mask |= EventWrite
	}
	if ev&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		mask |= EventExcept
	}
	return mask
}

func (p *epollPoller) add(fd int, mask FDMask) error {
	ev := unix.EpollEvent{Events: epollEventsFor(mask)}
	ev.Fd = int32(fd)
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) modify(fd int, mask FDMask) error {
	ev := unix.EpollEvent{Events: epollEventsFor(mask)}
	ev.Fd = int32(fd)
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) del(fd int) error {
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) wait(timeout time.Duration, dispatch func(fd int, fired FDMask)) (int, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	var events [128]unix.EpollEvent
	n, err := unix.EpollWait(p.fd, events[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		dispatch(int(events[i].Fd), fdMaskFromEpoll(events[i].Events))
	}
	return n, nil
}
