//go:build linux || darwin

package evloop

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// reactorVariant selects between the two portable poller flavors. Both are
// built on unix.Poll rather than an OS-specific readiness mechanism,
// occupying the structural slot the ancestor design filled with two
// third-party reactor libraries (see DESIGN.md).
type reactorVariant uint8

const (
	// reactorStrict mirrors the teacher's "maximum safety" alternate: every
	// registration-table access is taken under a single mutex, even though
	// in this package the poller is only ever touched from the loop
	// goroutine, trading a small amount of overhead for defensiveness
	// against a future caller that breaks that invariant.
	reactorStrict reactorVariant = iota
	// reactorFast mirrors the teacher's "maximum performance" alternate: no
	// locking at all, trusting the single-loop-goroutine invariant the rest
	// of the package enforces.
	reactorFast
)

func newReactorEngine(variant reactorVariant) (Engine, error) {
	p := &reactorPoller{
		variant: variant,
		masks:   make(map[int]FDMask),
	}
	return newEngineCore(p)
}

// reactorPoller implements poller on top of unix.Poll, which takes the full
// set of watched fds on every call rather than maintaining kernel-side
// interest like epoll/kqueue. The registration table is rebuilt into a
// []unix.PollFd slice each wait.
type reactorPoller struct {
	variant reactorVariant
	mu      sync.Mutex // only ever locked when variant == reactorStrict
	masks   map[int]FDMask
}

func (p *reactorPoller) lock() {
	if p.variant == reactorStrict {
		p.mu.Lock()
	}
}

func (p *reactorPoller) unlock() {
	if p.variant == reactorStrict {
		p.mu.Unlock()
	}
}

func (p *reactorPoller) init() error { return nil }

func (p *reactorPoller) close() error { return nil }

func (p *reactorPoller) add(fd int, mask FDMask) error {
	p.lock()
	defer p.unlock()
	if _, exists := p.masks[fd]; exists {
		return ErrWatcherRejected
	}
	p.masks[fd] = mask
	return nil
}

func (p *reactorPoller) modify(fd int, mask FDMask) error {
	p.lock()
	defer p.unlock()
	if _, exists := p.masks[fd]; !exists {
		return ErrWatcherRejected
	}
	p.masks[fd] = mask
	return nil
}

func (p *reactorPoller) del(fd int) error {
	p.lock()
	defer p.unlock()
	delete(p.masks, fd)
	return nil
}

func fdMaskToPollEvents(mask FDMask) int16 {
	var ev int16
	if mask.has(EventRead) {
		ev |= unix.POLLIN
	}
	if mask.has(EventWrite) {
		ev |= unix.POLLOUT
	}
	if mask.has(EventExcept) {
		ev |= unix.POLLERR | unix.POLLHUP
	}
	return ev
}

func pollEventsToFDMask(ev int16) FDMask {
	var mask FDMask
	if ev&unix.POLLIN != 0 {
		mask |= EventRead
	}
	if ev&unix.POLLOUT != 0 {
		mask |= EventWrite
	}
	if ev&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		mask |= EventExcept
	}
	return mask
}

func (p *reactorPoller) wait(timeout time.Duration, dispatch func(fd int, fired FDMask)) (int, error) {
	p.lock()
	fds := make([]unix.PollFd, 0, len(p.masks))
	for fd, mask := range p.masks {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: fdMaskToPollEvents(mask)})
	}
	p.unlock()

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	fired := 0
	for _, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		fired++
		dispatch(int(pfd.Fd), pollEventsToFDMask(pfd.Revents))
	}
	return fired, nil
}
