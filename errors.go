package evloop

import "errors"

// BackendError conditions (spec §7): engine or watcher construction failure.
// These are reported as error returns; the Loop/Engine remain usable.
var (
	// ErrEngineUnavailable is returned by NewEngine for an unknown tag, or a
	// tag whose backend is unavailable on this platform/build.
	ErrEngineUnavailable = errors.New("evloop: engine backend unavailable")

	// ErrWatcherRejected is returned for an invalid registration (nil
	// callback, empty fd mask, negative timer interval), for Remove of a
	// watcher that is not registered, and by the portable reactor backends
	// for a duplicate fd registration. OS errors from the direct backend's
	// syscalls are returned unwrapped, not as ErrWatcherRejected.
	ErrWatcherRejected = errors.New("evloop: watcher registration rejected")

	// ErrEngineClosed is returned by operations attempted on a closed Engine.
	ErrEngineClosed = errors.New("evloop: engine is closed")
)

// Loop-level errors.
var (
	// ErrLoopRunning is returned by Run when the Loop is already running.
	ErrLoopRunning = errors.New("evloop: loop is already running")

	// ErrLoopClosed is returned when an operation is attempted on a closed Loop.
	ErrLoopClosed = errors.New("evloop: loop is closed")

	// ErrReentrantRun is returned when Run is called from within the loop's
	// own goroutine (e.g. from an event callback).
	ErrReentrantRun = errors.New("evloop: cannot call Run from within the loop")

	// ErrNotLoopThread is returned by operations that require the caller to
	// be running on the loop goroutine.
	ErrNotLoopThread = errors.New("evloop: operation must run on the loop goroutine")
)

// Event-level IllegalTransition errors (spec §7): these are also surfaced as
// boolean false returns from the transition methods themselves; the error
// values exist for callers that want to log a reason.
var (
	ErrEventUninitialized = errors.New("evloop: event not initialized")
	ErrEventAlreadyInit   = errors.New("evloop: event already initialized")
)
