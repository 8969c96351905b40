//go:build darwin

package evloop

import (
	"time"

	"golang.org/x/sys/unix"
)

func newDirectEngine() (Engine, error) {
	return newEngineCore(&kqueuePoller{masks: make(map[int]FDMask)})
}

// kqueuePoller is the direct Darwin readiness backend. Unlike epoll, kqueue
// registers interest per filter (EVFILT_READ, EVFILT_WRITE) rather than as
// one combined bitmask, so add/modify/del diff against the previously
// registered mask to know which filters to add or delete.
type kqueuePoller struct {
	fd    int
	masks map[int]FDMask
}

func (p *kqueuePoller) init() error {
	fd, err := unix.Kqueue()
	if err != nil {
		return err
	}
	p.fd = fd
	return nil
}

func (p *kqueuePoller) close() error {
	return unix.Close(p.fd)
}

func (p *kqueuePoller) changesFor(fd int, add, remove FDMask) []unix.Kevent_t {
	var changes []unix.Kevent_t
	if add.has(EventRead) {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_ENABLE})
	}
	if add.has(EventWrite) {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_ENABLE})
	}
	if remove.has(EventRead) {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE})
	}
	if remove.has(EventWrite) {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE})
	}
	return changes
}

func (p *kqueuePoller) add(fd int, mask FDMask) error {
	changes := p.changesFor(fd, mask, 0)
	if len(changes) == 0 {
		p.masks[fd] = mask
		return nil
	}
	if _, err := unix.Kevent(p.fd, changes, nil, nil); err != nil {
		return err
	}
	p.masks[fd] = mask
	return nil
}

func (p *kqueuePoller) modify(fd int, mask FDMask) error {
	old := p.masks[fd]
	toAdd := mask &^ old
	toRemove := old &^ mask
	changes := p.changesFor(fd, toAdd, toRemove)
	if len(changes) > 0 {
		if _, err := unix.Kevent(p.fd, changes, nil, nil); err != nil {
			return err
		}
	}
	p.masks[fd] = mask
	return nil
}

func (p *kqueuePoller) del(fd int) error {
	old, ok := p.masks[fd]
	if !ok {
		return nil
	}
	changes := p.changesFor(fd, 0, old)
	delete(p.masks, fd)
	if len(changes) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.fd, changes, nil, nil)
	return err
}

func (p *kqueuePoller) wait(timeout time.Duration, dispatch func(fd int, fired FDMask)) (int, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	var events [128]unix.Kevent_t
	n, err := unix.Kevent(p.fd, nil, events[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	for i := 0; i < n; i++ {
		ev := events[i]
		fd := int(ev.Ident)
		var mask FDMask
		switch ev.Filter {
		case unix.EVFILT_READ:
			mask |= EventRead
		case unix.EVFILT_WRITE:
			mask |= EventWrite
		}
		if ev.Flags&(unix.EV_EOF|unix.EV_ERROR) != 0 {
			mask |= EventExcept
		}
		dispatch(fd, mask)
	}
	return n, nil
}
