package flow

import (
	"fmt"

	"github.com/nrise/evloop"
)

// ParallelPolicy selects how a Parallel decides it is finished.
type ParallelPolicy uint8

const (
	// ParallelAll waits for every child to finish; succeeds iff all
	// children succeeded.
	ParallelAll ParallelPolicy = iota
	// ParallelAny finishes as soon as any one child finishes, with that
	// child's result, and stops the rest.
	ParallelAny
)

func (p ParallelPolicy) String() string {
	if p == ParallelAny {
		return "any"
	}
	return "all"
}

// Parallel starts all of its children at once.
type Parallel struct {
	*base
	children  []Action
	policy    ParallelPolicy
	remaining int
	anyFailed bool
}

// NewParallel constructs a Parallel over children under policy.
func NewParallel(loop *evloop.Loop, name string, policy ParallelPolicy, children ...Action) *Parallel {
	p := &Parallel{base: newBase(loop, name), children: children, policy: policy}
	p.onStart = p.doStart
	p.onStop = p.doStop
	p.onPause = p.doPause
	p.onResume = p.doResume
	p.onReset = p.doReset
	return p
}

// AddChild appends child to the parallel's child list. Rejected with
// ErrConfigurationError if child is nil, or if attaching it would make
// this Parallel its own descendant.
func (p *Parallel) AddChild(child Action) error {
	if child == nil {
		return ErrConfigurationError
	}
	p.children = append(p.children, child)
	if hasCycle(p) {
		p.children = p.children[:len(p.children)-1]
		return ErrConfigurationError
	}
	return nil
}

func (p *Parallel) Children() []Action { return p.children }

func (p *Parallel) doStart() bool {
	p.remaining = len(p.children)
	p.anyFailed = false
	if p.remaining == 0 {
		p.finish(true)
		return true
	}
	ok := true
	for _, c := range p.children {
		c.SetFinishCallback(p.onChildFinish)
		if !c.Start() {
			ok = false
		}
	}
	return ok
}

func (p *Parallel) onChildFinish(isSucc bool) {
	if p.State() != StateRunning {
		return
	}
	p.remaining--
	if !isSucc {
		p.anyFailed = true
	}
	switch p.policy {
	case ParallelAny:
		for _, c := range p.children {
			switch c.State() {
			case StateRunning, StatePaused:
				c.Stop()
			}
		}
		p.finish(isSucc)
	default: // ParallelAll
		if p.remaining <= 0 {
			p.finish(!p.anyFailed)
		}
	}
}

func (p *Parallel) doStop() bool {
	for _, c := range p.children {
		switch c.State() {
		case StateRunning, StatePaused:
			c.Stop()
		}
	}
	return true
}

func (p *Parallel) doPause() bool {
	ok := true
	for _, c := range p.children {
		if c.State() == StateRunning {
			if !c.Pause() {
				ok = false
			}
		}
	}
	return ok
}

func (p *Parallel) doResume() bool {
	ok := true
	for _, c := range p.children {
		if c.State() == StatePaused {
			if !c.Resume() {
				ok = false
			}
		}
	}
	return ok
}

func (p *Parallel) doReset() {
	for _, c := range p.children {
		c.Reset()
	}
}

func (p *Parallel) Document(sink DocumentSink) {
	p.documentBase(sink)
	sink.AddField("policy", p.policy.String())
	sink.AddField("remaining", p.remaining)
	for i, c := range p.children {
		c.Document(sink.Nested(fmt.Sprintf("child_%d", i)))
	}
}
