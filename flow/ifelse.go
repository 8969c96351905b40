package flow

import (
	"github.com/nrise/evloop"
	"github.com/nrise/evloop/internal/assert"
)

// IfElse runs a condition child; depending on whether it succeeds, runs
// either the then-branch or the else-branch, and finishes with that
// branch's result. A nil branch means "finish immediately with the
// condition's result" for that side.
type IfElse struct {
	*base
	cond, then, els Action
	running         Action
}

// NewIfElse constructs an IfElse. then or els may be nil.
func NewIfElse(loop *evloop.Loop, name string, cond, then, els Action) *IfElse {
	assert.ASSERT(cond != nil, "NewIfElse(%q): cond must not be nil", name)
	ie := &IfElse{base: newBase(loop, name), cond: cond, then: then, els: els}
	ie.onStart = ie.doStart
	ie.onStop = ie.doStop
	ie.onPause = ie.doPause
	ie.onResume = ie.doResume
	ie.onReset = ie.doReset
	return ie
}

func (ie *IfElse) Children() []Action {
	children := []Action{ie.cond}
	if ie.then != nil {
		children = append(children, ie.then)
	}
	if ie.els != nil {
		children = append(children, ie.els)
	}
	return children
}

func (ie *IfElse) doStart() bool {
	ie.running = ie.cond
	ie.cond.SetFinishCallback(ie.onCondFinish)
	return ie.cond.Start()
}

func (ie *IfElse) onCondFinish(condSucc bool) {
	if ie.State() != StateRunning {
		return
	}
	branch := ie.els
	if condSucc {
		branch = ie.then
	}
	if branch == nil {
		ie.finish(condSucc)
		return
	}
	ie.running = branch
	branch.SetFinishCallback(func(branchSucc bool) {
		if ie.State() != StateRunning {
			return
		}
		ie.finish(branchSucc)
	})
	if !branch.Start() {
		ie.finish(false)
	}
}

func (ie *IfElse) doStop() bool {
	if ie.running != nil {
		ie.running.Stop()
	}
	return true
}

func (ie *IfElse) doPause() bool {
	if ie.running != nil {
		return ie.running.Pause()
	}
	return true
}

func (ie *IfElse) doResume() bool {
	if ie.running != nil {
		return ie.running.Resume()
	}
	return true
}

func (ie *IfElse) doReset() {
	ie.cond.Reset()
	if ie.then != nil {
		ie.then.Reset()
	}
	if ie.els != nil {
		ie.els.Reset()
	}
	ie.running = nil
}

func (ie *IfElse) Document(sink DocumentSink) {
	ie.documentBase(sink)
	ie.cond.Document(sink.Nested("cond"))
	if ie.then != nil {
		ie.then.Document(sink.Nested("then"))
	}
	if ie.els != nil {
		ie.els.Document(sink.Nested("else"))
	}
}
