package flow

import (
	"github.com/nrise/evloop"
	"github.com/nrise/evloop/internal/assert"
)

// RepeatPolicy selects how a Repeat reacts to each child completion.
type RepeatPolicy uint8

const (
	// RepeatNoBreak always runs the child the full configured count,
	// regardless of its result, and finishes succ.
	RepeatNoBreak RepeatPolicy = iota
	// RepeatBreakSucc stops early, finishing succ, the first time the
	// child succeeds.
	RepeatBreakSucc
	// RepeatBreakFail stops early, finishing fail, the first time the
	// child fails.
	RepeatBreakFail
)

func (p RepeatPolicy) String() string {
	switch p {
	case RepeatBreakSucc:
		return "break_succ"
	case RepeatBreakFail:
		return "break_fail"
	default:
		return "no_break"
	}
}

// Repeat runs one child up to times times. The first run always happens;
// reruns are decided by policy.
type Repeat struct {
	*base
	child     Action
	times     int
	remaining int
	policy    RepeatPolicy
}

// NewRepeat constructs a Repeat running child up to times times under
// policy. times is clamped to at least 1 (a Repeat always runs its child
// at least once).
func NewRepeat(loop *evloop.Loop, name string, child Action, times int, policy RepeatPolicy) *Repeat {
	assert.ASSERT(child != nil, "NewRepeat(%q): child must not be nil", name)
	if times < 1 {
		times = 1
	}
	r := &Repeat{base: newBase(loop, name), child: child, times: times, policy: policy}
	r.onStart = r.doStart
	r.onStop = r.doStop
	r.onPause = r.doPause
	r.onResume = r.doResume
	r.onReset = r.doReset
	child.SetFinishCallback(r.onChildFinish)
	return r
}

func (r *Repeat) Children() []Action { return []Action{r.child} }

func (r *Repeat) doStart() bool {
	r.remaining = r.times - 1
	return r.child.Start()
}

func (r *Repeat) onChildFinish(isSucc bool) {
	breaks := (r.policy == RepeatBreakSucc && isSucc) || (r.policy == RepeatBreakFail && !isSucc)
	if breaks {
		r.finish(isSucc)
		return
	}
	if r.State() != StateRunning {
		return
	}
	if r.remaining > 0 {
		r.remaining--
		r.child.Reset()
		if !r.child.Start() {
			r.finish(false)
		}
		return
	}
	r.finish(true)
}

func (r *Repeat) doStop() bool {
	switch r.child.State() {
	case StateRunning, StatePaused:
		r.child.Stop()
	}
	return true
}

func (r *Repeat) doPause() bool {
	if r.child.State() == StateRunning {
		return r.child.Pause()
	}
	return true
}

func (r *Repeat) doResume() bool {
	if r.child.State() == StatePaused {
		return r.child.Resume()
	}
	return true
}

func (r *Repeat) doReset() {
	r.child.Reset()
}

func (r *Repeat) Document(sink DocumentSink) {
	r.documentBase(sink)
	sink.AddField("policy", r.policy.String())
	sink.AddField("repeat_times", r.times)
	sink.AddField("remaining", r.remaining)
	r.child.Document(sink.Nested("child"))
}
