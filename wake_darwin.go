//go:build darwin

package evloop

import "syscall"

// wake is the self-wake primitive used to interrupt a blocked poller wait.
// Darwin has no eventfd, so this is a self-pipe: a read end registered with
// the poller and a write end signal/Submit/the signal relay writes to.
type wake struct {
	r, w int
}

func newWake() (*wake, error) {
	var fds [2]int
	if err := syscall.Pipe(fds[:]); err != nil {
		return nil, err
	}

	cleanup := func() {
		_ = syscall.Close(fds[0])
		_ = syscall.Close(fds[1])
	}

	syscall.CloseOnExec(fds[0])
	syscall.CloseOnExec(fds[1])

	if err := syscall.SetNonblock(fds[0], true); err != nil {
		cleanup()
		return nil, err
	}
	if err := syscall.SetNonblock(fds[1], true); err != nil {
		cleanup()
		return nil, err
	}

	return &wake{r: fds[0], w: fds[1]}, nil
}

func (w *wake) readFD() int { return w.r }

func (w *wake) signal() {
	var buf [1]byte
	buf[0] = 1
	_, _ = syscall.Write(w.w, buf[:])
}

func (w *wake) drain() {
	var buf [64]byte
	for {
		n, err := syscall.Read(w.r, buf[:])
		if err != nil || n <= 0 {
			return
		}
	}
}

func (w *wake) close() error {
	err1 := syscall.Close(w.r)
	err2 := syscall.Close(w.w)
	if err1 != nil {
		return err1
	}
	return err2
}
