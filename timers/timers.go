// Package timers offers a token-indexed convenience layer over a Loop's
// TimerEvent factory: schedule a one-shot delay (DoAfter), a one-shot
// absolute deadline (DoAt), or a repeating interval (DoEvery), and cancel
// any of them by the Token returned at scheduling time.
//
// A Timers value must only be used from the goroutine running its Loop,
// same as the TimerEvents it creates underneath.
package timers

import (
	"time"

	"github.com/nrise/evloop"
	"github.com/nrise/evloop/internal/obslog"
)

// Token identifies one scheduled entry. The zero Token never identifies a
// live entry.
type Token uint64

type entry struct {
	timer *evloop.TimerEvent
}

// Timers schedules and tracks timer callbacks against a single Loop.
type Timers struct {
	loop    *evloop.Loop
	nextTok Token
	entries map[Token]*entry
}

// New returns a Timers bound to loop.
func New(loop *evloop.Loop) *Timers {
	return &Timers{
		loop:    loop,
		entries: make(map[Token]*entry),
	}
}

func (t *Timers) alloc() Token {
	t.nextTok++
	return t.nextTok
}

func (t *Timers) schedule(interval time.Duration, mode evloop.Mode, cb func(Token)) Token {
	token := t.alloc()
	timer := t.loop.NewTimerEvent()

	fire := func() {
		if mode == evloop.ModeOneshot {
			delete(t.entries, token)
		}
		cb(token)
	}

	if err := timer.Initialize(interval, mode, fire); err != nil {
		if b := obslog.Error(obslog.CategoryTimer, "initialize"); b != nil {
			b.Err(err).Log("timer initialize failed")
		}
		return 0
	}
	if err := timer.Enable(); err != nil {
		if b := obslog.Error(obslog.CategoryTimer, "enable"); b != nil {
			b.Err(err).Log("timer enable failed")
		}
		return 0
	}

	t.entries[token] = &entry{timer: timer}
	return token
}

// DoAfter schedules cb to run once, after interval elapses. cb receives the
// Token it was scheduled with, so a single callback function can be reused
// across several scheduled entries and still tell them apart.
func (t *Timers) DoAfter(interval time.Duration, cb func(Token)) Token {
	return t.schedule(interval, evloop.ModeOneshot, cb)
}

// DoAt schedules cb to run once, at the given absolute time. If at has
// already passed, cb runs at the next dispatch cycle.
func (t *Timers) DoAt(at time.Time, cb func(Token)) Token {
	d := time.Until(at)
	if d < 0 {
		d = 0
	}
	return t.schedule(d, evloop.ModeOneshot, cb)
}

// DoEvery schedules cb to run repeatedly, once every interval, until
// canceled. The interval is rate-monotonic: a slow callback does not push
// later firings later.
func (t *Timers) DoEvery(interval time.Duration, cb func(Token)) Token {
	return t.schedule(interval, evloop.ModePersist, cb)
}

// Cancel stops a scheduled entry before it fires (or stops a DoEvery entry
// from firing again). Returns false if token does not identify a live
// entry, which is not an error: the entry may simply have already fired
// (for DoAfter/DoAt) or never existed.
func (t *Timers) Cancel(token Token) bool {
	e, ok := t.entries[token]
	if !ok {
		return false
	}
	delete(t.entries, token)
	_ = e.timer.Disable()
	return true
}

// Cleanup cancels every still-live entry. Intended for use when tearing
// down the owning Loop.
func (t *Timers) Cleanup() {
	for token, e := range t.entries {
		_ = e.timer.Disable()
		delete(t.entries, token)
	}
}

// Len reports the number of entries still scheduled.
func (t *Timers) Len() int { return len(t.entries) }
