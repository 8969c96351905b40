package evloop

import "time"

// eventState is the lifecycle shared by every Event kind: a freshly
// constructed Event is uninitialized, Initialize arms its parameters and
// moves it to disabled, and Enable/Disable toggle its registration with the
// owning Loop's Engine.
type eventState uint8

const (
	eventUninitialized eventState = iota
	eventDisabled
	eventEnabled
)

// event is the lifecycle bookkeeping shared by FdEvent, TimerEvent, and
// SignalEvent: the owning Loop, the uninitialized/disabled/enabled state,
// and the live Watcher handle once enabled. Each concrete kind embeds it and
// adds only the parameters and callback shape specific to its own
// Initialize/Enable pair.
type event struct {
	loop    *Loop
	state   eventState
	watcher Watcher
}

// Enabled reports whether the event is currently registered with the Engine.
func (e *event) Enabled() bool { return e.state == eventEnabled }

func (e *event) disableLocal() {
	e.watcher = Watcher{}
	e.state = eventDisabled
}

// checkLoopThread enforces the single-goroutine discipline documented on
// package evloop: once the Loop is running, every Event method other than
// Submit must be called from the loop's own goroutine (an Event callback or
// a submitted callable), never from an arbitrary goroutine racing the
// dispatch cycle. Before the Loop starts running, any goroutine may set up
// events, which is the common construct-then-Run pattern.
func (e *event) checkLoopThread() error {
	if e.loop.running && !e.loop.isLoopThread() {
		return ErrNotLoopThread
	}
	return nil
}

// FdEvent watches a file descriptor for readiness. Construct one with
// Loop.NewFdEvent, then Initialize and Enable it.
type FdEvent struct {
	event

	fd   int
	mask FDMask
	mode Mode
	cb   func(fired FDMask)
}

// Initialize arms fd to be watched for mask, invoking cb with the fired
// subset whenever it is ready. Returns ErrEventAlreadyInit if already
// initialized.
func (e *FdEvent) Initialize(fd int, mask FDMask, mode Mode, cb func(fired FDMask)) error {
	if e.state != eventUninitialized {
		return ErrEventAlreadyInit
	}
	if cb == nil || mask == 0 {
		return ErrWatcherRejected
	}
	e.fd, e.mask, e.mode, e.cb = fd, mask, mode, cb
	e.state = eventDisabled
	return nil
}

// Enable registers the watch with the owning Engine. A no-op if already
// enabled.
func (e *FdEvent) Enable() error {
	if err := e.checkLoopThread(); err != nil {
		return err
	}
	switch e.state {
	case eventUninitialized:
		return ErrEventUninitialized
	case eventEnabled:
		return nil
	}
	w, err := e.loop.engine.AddFD(e.fd, e.mask, e.mode, e.onFire)
	if err != nil {
		return err
	}
	e.watcher = w
	e.state = eventEnabled
	return nil
}

// Disable unregisters the watch. Safe to call from within the event's own
// callback. A no-op if already disabled.
func (e *FdEvent) Disable() error {
	if err := e.checkLoopThread(); err != nil {
		return err
	}
	switch e.state {
	case eventUninitialized:
		return ErrEventUninitialized
	case eventDisabled:
		return nil
	}
	if err := e.loop.engine.Remove(e.watcher); err != nil {
		return err
	}
	e.disableLocal()
	return nil
}

func (e *FdEvent) onFire(fired FDMask) {
	if e.mode == ModeOneshot {
		e.disableLocal()
	}
	e.cb(fired)
}

// TimerEvent fires once (ModeOneshot) or repeatedly at a fixed interval
// (ModePersist). Construct one with Loop.NewTimerEvent.
type TimerEvent struct {
	event

	interval time.Duration
	mode     Mode
	cb       func()
}

// Initialize arms the timer to fire after interval. ModePersist re-arms at
// interval after the previous deadline, not after the callback returns.
func (e *TimerEvent) Initialize(interval time.Duration, mode Mode, cb func()) error {
	if e.state != eventUninitialized {
		return ErrEventAlreadyInit
	}
	if cb == nil || interval < 0 {
		return ErrWatcherRejected
	}
	e.interval, e.mode, e.cb = interval, mode, cb
	e.state = eventDisabled
	return nil
}

// Enable registers the timer with the owning Engine. A no-op if already
// enabled; re-enabling restarts the interval from now.
func (e *TimerEvent) Enable() error {
	if err := e.checkLoopThread(); err != nil {
		return err
	}
	switch e.state {
	case eventUninitialized:
		return ErrEventUninitialized
	case eventEnabled:
		return nil
	}
	w, err := e.loop.engine.AddTimer(e.interval, e.mode, e.onFire)
	if err != nil {
		return err
	}
	e.watcher = w
	e.state = eventEnabled
	return nil
}

// Disable cancels the pending fire. Safe to call from within the event's
// own callback (the standard way to stop a ModePersist timer from firing
// again). A no-op if already disabled.
func (e *TimerEvent) Disable() error {
	if err := e.checkLoopThread(); err != nil {
		return err
	}
	switch e.state {
	case eventUninitialized:
		return ErrEventUninitialized
	case eventDisabled:
		return nil
	}
	if err := e.loop.engine.Remove(e.watcher); err != nil {
		return err
	}
	e.disableLocal()
	return nil
}

func (e *TimerEvent) onFire() {
	if e.mode == ModeOneshot {
		e.disableLocal()
	}
	e.cb()
}

// SignalEvent watches for delivery of an OS signal. Construct one with
// Loop.NewSignalEvent.
type SignalEvent struct {
	event

	signo int
	mode  Mode
	cb    func()
}

// Initialize arms the event to watch for signo.
func (e *SignalEvent) Initialize(signo int, mode Mode, cb func()) error {
	if e.state != eventUninitialized {
		return ErrEventAlreadyInit
	}
	if cb == nil {
		return ErrWatcherRejected
	}
	e.signo, e.mode, e.cb = signo, mode, cb
	e.state = eventDisabled
	return nil
}

// Enable subscribes to the signal via the owning Engine. A no-op if already
// enabled.
func (e *SignalEvent) Enable() error {
	if err := e.checkLoopThread(); err != nil {
		return err
	}
	switch e.state {
	case eventUninitialized:
		return ErrEventUninitialized
	case eventEnabled:
		return nil
	}
	w, err := e.loop.engine.AddSignal(e.signo, e.mode, e.onFire)
	if err != nil {
		return err
	}
	e.watcher = w
	e.state = eventEnabled
	return nil
}

// Disable cancels the subscription. A no-op if already disabled.
func (e *SignalEvent) Disable() error {
	if err := e.checkLoopThread(); err != nil {
		return err
	}
	switch e.state {
	case eventUninitialized:
		return ErrEventUninitialized
	case eventDisabled:
		return nil
	}
	if err := e.loop.engine.Remove(e.watcher); err != nil {
		return err
	}
	e.disableLocal()
	return nil
}

func (e *SignalEvent) onFire() {
	if e.mode == ModeOneshot {
		e.disableLocal()
	}
	e.cb()
}
