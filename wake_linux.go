//go:build linux

package evloop

import "golang.org/x/sys/unix"

// wake is the self-wake primitive used to interrupt a blocked poller wait
// from another goroutine (Loop.Submit) or from the process-wide signal
// relay (signal.go). On Linux it is a single eventfd, used as both ends.
type wake struct {
	fd int
}

func newWake() (*wake, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &wake{fd: fd}, nil
}

func (w *wake) readFD() int { return w.fd }

// signal interrupts a blocked wait. Safe to call from any goroutine,
// including concurrently with itself; writes are coalesced by the kernel.
func (w *wake) signal() {
	var buf [8]byte
	buf[7] = 1
	_, _ = unix.Write(w.fd, buf[:])
}

// drain clears any pending wake notifications after a wait returns.
func (w *wake) drain() {
	var buf [8]byte
	for {
		if _, err := unix.Read(w.fd, buf[:]); err != nil {
			return
		}
	}
}

func (w *wake) close() error {
	return unix.Close(w.fd)
}
