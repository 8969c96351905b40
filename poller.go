package evloop

import "time"

// poller is the platform readiness mechanism an Engine is built on. It
// knows nothing about timers, signals, or callbacks — only fd readiness —
// matching the teacher's FastPoller split between "watcher bookkeeping"
// (shared, in engine.go) and "OS readiness wait" (backend-specific, here).
type poller interface {
	// init prepares the backend (e.g. epoll_create1/kqueue).
	init() error
	// close releases backend resources.
	close() error
	// add registers fd for the given mask.
	add(fd int, mask FDMask) error
	// modify updates the mask for an already-registered fd.
	modify(fd int, mask FDMask) error
	// del unregisters fd.
	del(fd int) error
	// wait blocks up to timeout (0 = non-blocking, <0 = indefinite) for
	// readiness, invoking dispatch(fd, firedMask) for each ready fd found.
	// Returns the number of fds dispatched.
	wait(timeout time.Duration, dispatch func(fd int, fired FDMask)) (int, error)
}
