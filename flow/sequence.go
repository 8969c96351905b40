package flow

import (
	"fmt"

	"github.com/nrise/evloop"
)

// Sequence runs its children left-to-right. The first child to fail makes
// the whole sequence fail; if every child succeeds, the sequence succeeds.
type Sequence struct {
	*base
	children []Action
	index    int
}

// NewSequence constructs a Sequence over children, run in the given order.
func NewSequence(loop *evloop.Loop, name string, children ...Action) *Sequence {
	s := &Sequence{base: newBase(loop, name), children: children}
	s.onStart = s.doStart
	s.onStop = s.doStop
	s.onPause = s.doPause
	s.onResume = s.doResume
	s.onReset = s.doReset
	return s
}

// AddChild appends child to the sequence's remaining child list. Rejected
// with ErrConfigurationError if child is nil, or if attaching it would
// make this Sequence its own descendant.
func (s *Sequence) AddChild(child Action) error {
	if child == nil {
		return ErrConfigurationError
	}
	s.children = append(s.children, child)
	if hasCycle(s) {
		s.children = s.children[:len(s.children)-1]
		return ErrConfigurationError
	}
	return nil
}

func (s *Sequence) Children() []Action { return s.children }

func (s *Sequence) doStart() bool {
	s.index = 0
	if len(s.children) == 0 {
		s.finish(true)
		return true
	}
	return s.startChild(s.index)
}

func (s *Sequence) startChild(i int) bool {
	child := s.children[i]
	child.SetFinishCallback(func(isSucc bool) {
		if s.State() != StateRunning {
			return
		}
		if !isSucc {
			s.finish(false)
			return
		}
		s.index++
		if s.index >= len(s.children) {
			s.finish(true)
			return
		}
		if !s.startChild(s.index) {
			s.finish(false)
		}
	})
	return child.Start()
}

func (s *Sequence) doStop() bool {
	if s.index < len(s.children) {
		s.children[s.index].Stop()
	}
	return true
}

func (s *Sequence) doPause() bool {
	if s.index < len(s.children) {
		return s.children[s.index].Pause()
	}
	return true
}

func (s *Sequence) doResume() bool {
	if s.index < len(s.children) {
		return s.children[s.index].Resume()
	}
	return true
}

func (s *Sequence) doReset() {
	for _, c := range s.children {
		c.Reset()
	}
	s.index = 0
}

func (s *Sequence) Document(sink DocumentSink) {
	s.documentBase(sink)
	sink.AddField("index", s.index)
	for i, c := range s.children {
		c.Document(sink.Nested(fmt.Sprintf("child_%d", i)))
	}
}
