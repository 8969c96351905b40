package evloop

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nrise/evloop/internal/obslog"
)

// Loop owns exactly one Engine and is the entry point user code builds
// against: it constructs Events, runs the dispatch cycle, and is the home
// of the one thread-safe cross-goroutine method, Submit.
type Loop struct {
	engine Engine

	// mu guards submitted only; it is the sole piece of Loop state touched
	// from outside the loop goroutine.
	mu        sync.Mutex
	submitted []func()

	// runningGoroutineID holds the id of the goroutine currently inside Run,
	// or 0 if none. It lets Run detect being called reentrantly from an
	// Event callback or a submitted callable running on the loop's own
	// goroutine, distinct from the ordinary "already running on some other
	// goroutine" case.
	runningGoroutineID atomic.Uint64

	running       bool
	closed        bool
	exitRequested bool
}

// New constructs a Loop around engine. The Loop takes ownership of engine;
// callers should not use it directly afterward.
func New(engine Engine) *Loop {
	return &Loop{engine: engine}
}

// NewFdEvent constructs an uninitialized FdEvent bound to this Loop.
func (l *Loop) NewFdEvent() *FdEvent { return &FdEvent{event: event{loop: l}} }

// NewTimerEvent constructs an uninitialized TimerEvent bound to this Loop.
func (l *Loop) NewTimerEvent() *TimerEvent { return &TimerEvent{event: event{loop: l}} }

// NewSignalEvent constructs an uninitialized SignalEvent bound to this Loop.
func (l *Loop) NewSignalEvent() *SignalEvent { return &SignalEvent{event: event{loop: l}} }

// Submit queues fn to run on the loop goroutine at the next opportunity
// (before the next poll wait, and again after it returns) and wakes the
// loop if it is blocked. This is the only Loop method safe to call from a
// goroutine other than the one running Run.
func (l *Loop) Submit(fn func()) error {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.submitted = append(l.submitted, fn)
	l.mu.Unlock()
	l.engine.Wake()
	return nil
}

// SubmitNext queues fn ahead of any already-queued Submit callables, so it
// runs first at the next drain.
func (l *Loop) SubmitNext(fn func()) error {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.submitted = append([]func(){fn}, l.submitted...)
	l.mu.Unlock()
	l.engine.Wake()
	return nil
}

// isLoopThread reports whether the calling goroutine is the one currently
// inside Run.
func (l *Loop) isLoopThread() bool {
	id := l.runningGoroutineID.Load()
	if id == 0 {
		return false
	}
	return getGoroutineID() == id
}

func (l *Loop) drainSubmitted() {
	l.mu.Lock()
	queue := l.submitted
	l.submitted = nil
	l.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
}

// Run drives the dispatch cycle. RunOnce performs exactly one pass of
// (drain submitted, poll/dispatch, drain submitted) and returns. RunForever
// repeats that until ExitLoop takes effect or the Loop is closed.
//
// Run must not be called reentrantly from an Event callback or a submitted
// callable; doing so is detected via the calling goroutine's id and returns
// ErrReentrantRun rather than deadlocking or corrupting loop state.
func (l *Loop) Run(mode RunMode) error {
	if l.closed {
		return ErrLoopClosed
	}
	if l.isLoopThread() {
		return ErrReentrantRun
	}
	if l.running {
		return ErrLoopRunning
	}
	l.running = true
	l.exitRequested = false
	l.runningGoroutineID.Store(getGoroutineID())
	defer func() {
		l.running = false
		l.runningGoroutineID.Store(0)
	}()

	for {
		l.drainSubmitted()
		if l.exitRequested {
			return nil
		}

		block := mode == RunForever
		if _, err := l.engine.RunOnce(block); err != nil {
			if b := obslog.Error(obslog.CategoryLoop, "run_once"); b != nil {
				b.Err(err).Log("engine dispatch cycle failed")
			}
			return err
		}

		l.drainSubmitted()
		if mode == RunOnce || l.exitRequested {
			return nil
		}
	}
}

// ExitLoop requests that a running RunForever loop stop. If after is zero
// or negative, the request takes effect at the very next opportunity
// (before the next poll wait); otherwise a one-shot internal timer schedules
// it. Calling ExitLoop more than once is safe: whichever scheduled exit
// fires first wins, since later ones only set the same flag again.
func (l *Loop) ExitLoop(after time.Duration) error {
	if l.closed {
		return ErrLoopClosed
	}
	if after <= 0 {
		l.exitRequested = true
		l.engine.Wake()
		return nil
	}
	t := l.NewTimerEvent()
	if err := t.Initialize(after, ModeOneshot, func() {
		l.exitRequested = true
	}); err != nil {
		return err
	}
	return t.Enable()
}

// Close releases the owned Engine. Further Run calls return ErrLoopClosed.
func (l *Loop) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.engine.Close()
}
