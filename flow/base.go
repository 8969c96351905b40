package flow

import "github.com/nrise/evloop"

// base implements the shared lifecycle bookkeeping every concrete Action
// embeds. Go has no virtual dispatch, so the per-kind behavior a subclass
// would override in the ancestor design is supplied here as plain function
// fields, wired up by each combinator's constructor — a capability set
// rather than inheritance.
type base struct {
	loop   *evloop.Loop
	name   string
	state  State
	result Result

	finishCB func(isSucc bool)

	onStart  func() bool
	onStop   func() bool
	onPause  func() bool
	onResume func() bool
	onReset  func()
}

func newBase(loop *evloop.Loop, name string) *base {
	return &base{loop: loop, name: name, state: StateIdle}
}

func (b *base) Name() string   { return b.name }
func (b *base) State() State   { return b.state }
func (b *base) Result() Result { return b.result }

func (b *base) SetFinishCallback(fn func(isSucc bool)) { b.finishCB = fn }

// Start transitions Idle -> Running, invoking onStart if set. If onStart
// returns false, the transition is rolled back (the action remains Idle)
// and Start reports failure, matching the illegal-transition contract of
// the other lifecycle methods.
func (b *base) Start() bool {
	if b.state != StateIdle {
		return false
	}
	b.state = StateRunning
	b.result = ResultUndetermined
	if b.onStart != nil && !b.onStart() {
		b.state = StateIdle
		return false
	}
	return true
}

// Stop transitions Running or Paused to Finished(fail) without invoking
// the finish callback.
func (b *base) Stop() bool {
	switch b.state {
	case StateRunning, StatePaused:
	default:
		return false
	}
	if b.onStop != nil {
		b.onStop()
	}
	b.state = StateFinished
	b.result = ResultFail
	return true
}

func (b *base) Pause() bool {
	if b.state != StateRunning {
		return false
	}
	if b.onPause != nil && !b.onPause() {
		return false
	}
	b.state = StatePaused
	return true
}

func (b *base) Resume() bool {
	if b.state != StatePaused {
		return false
	}
	if b.onResume != nil && !b.onResume() {
		return false
	}
	b.state = StateRunning
	return true
}

// Reset transitions Finished -> Idle. A no-op returning true when already
// Idle; returns false from Running or Paused.
func (b *base) Reset() bool {
	switch b.state {
	case StateIdle:
		return true
	case StateFinished:
	default:
		return false
	}
	if b.onReset != nil {
		b.onReset()
	}
	b.state = StateIdle
	b.result = ResultUndetermined
	return true
}

// finish transitions Running/Paused to Finished(result) and schedules the
// finish callback, if any, as a deferred callable on the loop so observers
// never see it invoked synchronously inside onStart. A no-op if the action
// is not currently active (guards against a combinator's child calling
// finish more than once for the same completion).
func (b *base) finish(isSucc bool) {
	switch b.state {
	case StateRunning, StatePaused:
	default:
		return
	}
	b.state = StateFinished
	if isSucc {
		b.result = ResultSucc
	} else {
		b.result = ResultFail
	}
	cb := b.finishCB
	if cb == nil {
		return
	}
	if b.loop != nil {
		_ = b.loop.Submit(func() { cb(isSucc) })
	} else {
		cb(isSucc)
	}
}

func (b *base) documentBase(sink DocumentSink) {
	sink.AddField("name", b.name)
	sink.AddField("state", b.state.String())
	sink.AddField("result", b.result.String())
}
