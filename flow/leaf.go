package flow

import "github.com/nrise/evloop"

// leaf is an Action with no children that decides its own result as soon
// as it starts.
type leaf struct {
	*base
	run func() bool
}

func newLeaf(loop *evloop.Loop, name string, run func() bool) *leaf {
	l := &leaf{base: newBase(loop, name), run: run}
	l.onStart = l.doStart
	return l
}

func (l *leaf) Children() []Action { return nil }

func (l *leaf) doStart() bool {
	isSucc := true
	if l.run != nil {
		isSucc = l.run()
	}
	l.finish(isSucc)
	return true
}

func (l *leaf) Document(sink DocumentSink) {
	l.documentBase(sink)
}

// Succ returns a leaf Action that finishes succ as soon as it starts.
func Succ(loop *evloop.Loop, name string) Action {
	return newLeaf(loop, name, func() bool { return true })
}

// Fail returns a leaf Action that finishes fail as soon as it starts.
func Fail(loop *evloop.Loop, name string) Action {
	return newLeaf(loop, name, func() bool { return false })
}

// Func returns a leaf Action that runs fn synchronously on Start and
// finishes with fn's return value.
func Func(loop *evloop.Loop, name string, fn func() bool) Action {
	return newLeaf(loop, name, fn)
}
