// Package flow implements a composable workflow state machine: a base
// Action lifecycle (start/stop/pause/resume/reset) plus combinators that
// impose a completion policy over one or more children (Sequence,
// Parallel, Repeat, IfElse, Loop) and leaf helpers (Succ, Fail, Func).
//
// Every Action's terminal transition to State.Finished schedules its
// finish callback as a deferred callable on the owning evloop.Loop, never
// invoking it synchronously inside Start — the same discipline a Sequence
// or Repeat relies on to safely call reset()/start() on a child from
// within that child's own finish callback.
package flow

import "errors"

// ErrConfigurationError is returned by a combinator's dynamic
// child-attachment method (e.g. Sequence.AddChild) when the attachment
// would introduce a parent→child ownership cycle.
var ErrConfigurationError = errors.New("flow: configuration error: child attachment would create a cycle")

// State is the Action lifecycle position.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Result is the outcome of a finished Action.
type Result uint8

const (
	ResultUndetermined Result = iota
	ResultSucc
	ResultFail
)

func (r Result) String() string {
	switch r {
	case ResultSucc:
		return "succ"
	case ResultFail:
		return "fail"
	default:
		return "undetermined"
	}
}

// Action is a unit of the workflow state machine. Combinators
// (Sequence, Parallel, Repeat, IfElse, Loop) and leaves (Succ, Fail, Func)
// all implement it.
type Action interface {
	// Name identifies the action for diagnostics; not required to be unique.
	Name() string

	State() State
	Result() Result

	// Start transitions Idle -> Running. Returns false (no-op) if not Idle.
	Start() bool
	// Stop transitions any active state (Running or Paused) to
	// Finished(fail) without invoking the finish callback. Returns false
	// if already Finished or still Idle.
	Stop() bool
	// Pause transitions Running -> Paused. Returns false if not Running.
	Pause() bool
	// Resume transitions Paused -> Running. Returns false if not Paused.
	Resume() bool
	// Reset transitions Finished -> Idle, clearing Result. A no-op
	// (returns true) if already Idle. Returns false from Running/Paused.
	Reset() bool

	// SetFinishCallback installs the function invoked, at most once and
	// always as a deferred callable on the loop, when the action reaches
	// Finished via normal completion (never via Stop).
	SetFinishCallback(fn func(isSucc bool))

	// Children lists the action's direct children, if any (nil for
	// leaves). Used for introspection and cycle detection.
	Children() []Action

	// Document emits a structured record of this action (and recursively
	// its children) to sink. Must not mutate state.
	Document(sink DocumentSink)
}
