package flow

import (
	"github.com/nrise/evloop"
	"github.com/nrise/evloop/internal/assert"
)

// LoopAction runs its body child repeatedly until the until predicate
// reports true after a successful run, or the body fails (which the loop
// itself propagates as a failure).
type LoopAction struct {
	*base
	body  Action
	until func() bool
}

// NewLoop constructs a LoopAction running body until until returns true.
// A nil until never stops the loop on its own say-so (only a body failure,
// or an external Stop, ends it).
func NewLoop(loop *evloop.Loop, name string, body Action, until func() bool) *LoopAction {
	assert.ASSERT(body != nil, "NewLoop(%q): body must not be nil", name)
	l := &LoopAction{base: newBase(loop, name), body: body, until: until}
	l.onStart = l.doStart
	l.onStop = l.doStop
	l.onPause = l.doPause
	l.onResume = l.doResume
	l.onReset = l.doReset
	body.SetFinishCallback(l.onBodyFinish)
	return l
}

func (l *LoopAction) Children() []Action { return []Action{l.body} }

func (l *LoopAction) doStart() bool {
	return l.body.Start()
}

func (l *LoopAction) onBodyFinish(isSucc bool) {
	if l.State() != StateRunning {
		return
	}
	if !isSucc {
		l.finish(false)
		return
	}
	if l.until != nil && l.until() {
		l.finish(true)
		return
	}
	l.body.Reset()
	if !l.body.Start() {
		l.finish(false)
	}
}

func (l *LoopAction) doStop() bool {
	switch l.body.State() {
	case StateRunning, StatePaused:
		l.body.Stop()
	}
	return true
}

func (l *LoopAction) doPause() bool {
	if l.body.State() == StateRunning {
		return l.body.Pause()
	}
	return true
}

func (l *LoopAction) doResume() bool {
	if l.body.State() == StatePaused {
		return l.body.Resume()
	}
	return true
}

func (l *LoopAction) doReset() {
	l.body.Reset()
}

func (l *LoopAction) Document(sink DocumentSink) {
	l.documentBase(sink)
	l.body.Document(sink.Nested("body"))
}
