package evloop

import (
	"container/heap"
	"sync"
	"time"

	"github.com/nrise/evloop/internal/clock"
	"github.com/nrise/evloop/internal/obslog"
)

// Engine is a pluggable readiness backend: it multiplexes file-descriptor
// readiness, timers, and signal delivery into a single poll/dispatch cycle.
// Implementations are sealed to this package; construct one with NewEngine.
type Engine interface {
	// AddFD registers a readiness watch on fd. cb is invoked with the fired
	// subset of mask each time fd is ready; for ModeOneshot the watch is
	// removed before cb runs.
	AddFD(fd int, mask FDMask, mode Mode, cb func(fired FDMask)) (Watcher, error)

	// AddTimer schedules cb to run after interval. ModePersist re-arms by
	// adding interval to the previous deadline (not to the fire time), so a
	// slow callback does not drift the nominal period.
	AddTimer(interval time.Duration, mode Mode, cb func()) (Watcher, error)

	// AddSignal subscribes cb to delivery of the OS signal numbered signo.
	// Multiple arrivals of the same signal between dispatch cycles are
	// coalesced into a single callback invocation.
	AddSignal(signo int, mode Mode, cb func()) (Watcher, error)

	// Remove cancels a watcher registered by any of the Add* methods. Safe
	// to call from within the watcher's own callback.
	Remove(w Watcher) error

	// RunOnce performs one poll/dispatch cycle. If block is true and no
	// timer is due sooner, it waits indefinitely for readiness or Wake; if
	// false, it polls without blocking. Returns the number of callbacks
	// invoked.
	RunOnce(block bool) (int, error)

	// Wake interrupts a blocked RunOnce from any goroutine.
	Wake()

	// Close releases backend resources. Further calls other than Close
	// return ErrEngineClosed.
	Close() error
}

// NewEngine constructs an Engine for the named backend:
//
//   - "epoll": direct OS readiness mechanism (epoll on Linux, kqueue on
//     Darwin).
//   - "reactor-a": portable unix.Poll-based backend favoring strict
//     validation and a single coarse lock over the registration path.
//   - "reactor-b": portable unix.Poll-based backend favoring throughput,
//     taking no lock at all over its registration table.
//
// An empty tag selects "epoll".
func NewEngine(tag string) (Engine, error) {
	if tag == "" {
		tag = "epoll"
	}
	switch tag {
	case "epoll":
		return newDirectEngine()
	case "reactor-a":
		return newReactorEngine(reactorStrict)
	case "reactor-b":
		return newReactorEngine(reactorFast)
	default:
		return nil, ErrEngineUnavailable
	}
}

// engine is the shared bookkeeping and dispatch loop used by every backend;
// backends differ only in the poller implementation they supply.
type engine struct {
	poller poller
	wake   *wake
	clock  clock.Clock

	// mu guards only the cross-goroutine surface: Wake() and the pending
	// flag it sets, plus the pendingSig mailbox the signal relay fills.
	// Everything else is touched exclusively from the
	// goroutine calling RunOnce, per the single-threaded dispatch model.
	mu          sync.Mutex
	wakePending bool

	nextID watcherID
	closed bool

	timers    timerHeap
	timerByID map[watcherID]*timerItem

	// fdByID and idsByFD together support more than one independent watcher
	// on the same fd (e.g. two separately-owned FdEvents both watching
	// stdin): the poller only ever sees one registration per fd, with its
	// mask kept as the union of every interested watcher's mask.
	fdByID  map[watcherID]*fdSpec
	idsByFD map[int][]watcherID

	sigByID    map[watcherID]*signalSpec
	idsBySigno map[int][]watcherID
	pendingSig map[int]bool
}

func newEngineCore(p poller) (*engine, error) {
	if err := p.init(); err != nil {
		return nil, err
	}
	w, err := newWake()
	if err != nil {
		_ = p.close()
		return nil, err
	}
	if err := p.add(w.readFD(), EventRead); err != nil {
		_ = w.close()
		_ = p.close()
		return nil, err
	}
	e := &engine{
		poller:     p,
		wake:       w,
		clock:      clock.System{},
		timerByID:  make(map[watcherID]*timerItem),
		fdByID:     make(map[watcherID]*fdSpec),
		idsByFD:    make(map[int][]watcherID),
		sigByID:    make(map[watcherID]*signalSpec),
		idsBySigno: make(map[int][]watcherID),
		pendingSig: make(map[int]bool),
	}
	return e, nil
}

func (e *engine) allocID() watcherID {
	e.nextID++
	return e.nextID
}

// fdUnionMask computes the mask the poller must watch for fd, across every
// live watcher currently registered on it.
func (e *engine) fdUnionMask(fd int) FDMask {
	var union FDMask
	for _, id := range e.idsByFD[fd] {
		if spec, ok := e.fdByID[id]; ok {
			union |= spec.mask
		}
	}
	return union
}

func (e *engine) AddFD(fd int, mask FDMask, mode Mode, cb func(fired FDMask)) (Watcher, error) {
	if e.closed {
		return Watcher{}, ErrEngineClosed
	}
	if cb == nil || mask == 0 {
		return Watcher{}, ErrWatcherRejected
	}

	id := e.allocID()
	spec := &fdSpec{fd: fd, mask: mask, mode: mode, cb: cb}

	if existing := e.idsByFD[fd]; len(existing) == 0 {
		if err := e.poller.add(fd, mask); err != nil {
			return Watcher{}, err
		}
	} else {
		union := e.fdUnionMask(fd) | mask
		if err := e.poller.modify(fd, union); err != nil {
			return Watcher{}, err
		}
	}

	e.fdByID[id] = spec
	e.idsByFD[fd] = append(e.idsByFD[fd], id)
	return Watcher{id: id, kind: watcherFD}, nil
}

func (e *engine) AddTimer(interval time.Duration, mode Mode, cb func()) (Watcher, error) {
	if e.closed {
		return Watcher{}, ErrEngineClosed
	}
	if cb == nil || interval < 0 {
		return Watcher{}, ErrWatcherRejected
	}
	id := e.allocID()
	item := &timerItem{
		deadline: e.clock.Now().Add(interval),
		interval: interval,
		mode:     mode,
		cb:       cb,
		id:       id,
	}
	e.timerByID[id] = item
	heap.Push(&e.timers, item)
	return Watcher{id: id, kind: watcherTimer}, nil
}

func (e *engine) AddSignal(signo int, mode Mode, cb func()) (Watcher, error) {
	if e.closed {
		return Watcher{}, ErrEngineClosed
	}
	if cb == nil {
		return Watcher{}, ErrWatcherRejected
	}
	if err := registerSignalRelay(signo, e); err != nil {
		return Watcher{}, err
	}
	id := e.allocID()
	e.sigByID[id] = &signalSpec{signo: signo, mode: mode, cb: cb}
	e.idsBySigno[signo] = append(e.idsBySigno[signo], id)
	return Watcher{id: id, kind: watcherSignal}, nil
}

func (e *engine) Remove(w Watcher) error {
	if e.closed {
		return ErrEngineClosed
	}
	if !w.Valid() {
		return ErrWatcherRejected
	}
	switch w.kind {
	case watcherFD:
		spec, ok := e.fdByID[w.id]
		if !ok {
			return ErrWatcherRejected
		}
		delete(e.fdByID, w.id)
		ids := e.idsByFD[spec.fd]
		for i, id := range ids {
			if id == w.id {
				e.idsByFD[spec.fd] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(e.idsByFD[spec.fd]) == 0 {
			delete(e.idsByFD, spec.fd)
			return e.poller.del(spec.fd)
		}
		return e.poller.modify(spec.fd, e.fdUnionMask(spec.fd))
	case watcherTimer:
		item, ok := e.timerByID[w.id]
		if !ok {
			return ErrWatcherRejected
		}
		delete(e.timerByID, w.id)
		if item.index >= 0 && item.index < len(e.timers) {
			heap.Remove(&e.timers, item.index)
		}
		return nil
	case watcherSignal:
		spec, ok := e.sigByID[w.id]
		if !ok {
			return ErrWatcherRejected
		}
		delete(e.sigByID, w.id)
		ids := e.idsBySigno[spec.signo]
		for i, id := range ids {
			if id == w.id {
				e.idsBySigno[spec.signo] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(e.idsBySigno[spec.signo]) == 0 {
			delete(e.idsBySigno, spec.signo)
			delete(e.pendingSig, spec.signo)
			unregisterSignalRelay(spec.signo, e)
		}
		return nil
	default:
		return ErrWatcherRejected
	}
}

// deliverSignal is called by the process-wide relay goroutine (signal.go)
// from a foreign goroutine; it only touches the cross-goroutine-safe
// surface (the mutex-guarded wake flag) plus a dedicated signal mailbox.
func (e *engine) deliverSignal(signo int) {
	e.mu.Lock()
	if e.pendingSig == nil {
		e.pendingSig = make(map[int]bool)
	}
	e.pendingSig[signo] = true
	e.mu.Unlock()
	e.Wake()
}

func (e *engine) takePendingSignals() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pendingSig) == 0 {
		return nil
	}
	out := make([]int, 0, len(e.pendingSig))
	for signo := range e.pendingSig {
		out = append(out, signo)
	}
	for _, signo := range out {
		delete(e.pendingSig, signo)
	}
	return out
}

func (e *engine) Wake() {
	e.mu.Lock()
	already := e.wakePending
	e.wakePending = true
	e.mu.Unlock()
	if !already {
		e.wake.signal()
	}
}

func (e *engine) clearWake() {
	e.mu.Lock()
	e.wakePending = false
	e.mu.Unlock()
	e.wake.drain()
}

// RunOnce runs one poll/dispatch cycle: it computes the wait timeout from
// the nearest timer deadline, waits on the poller, fires any fds that
// became ready, fires any timers now due, and fires any signals that
// arrived since the previous cycle.
func (e *engine) RunOnce(block bool) (int, error) {
	if e.closed {
		return 0, ErrEngineClosed
	}

	timeout := time.Duration(0)
	if block {
		timeout = -1
		if len(e.timers) > 0 {
			if d := e.timers[0].deadline.Sub(e.clock.Now()); d > 0 {
				timeout = d
			} else {
				timeout = 0
			}
		}
	}

	fired := 0
	_, err := e.poller.wait(timeout, func(fd int, mask FDMask) {
		if fd == e.wake.readFD() {
			e.clearWake()
			return
		}
		ids := append([]watcherID(nil), e.idsByFD[fd]...)
		oneshotFired := false
		for _, id := range ids {
			spec, ok := e.fdByID[id]
			if !ok || mask&spec.mask == 0 {
				continue
			}
			if spec.mode == ModeOneshot {
				delete(e.fdByID, id)
				remaining := e.idsByFD[fd]
				for i, rid := range remaining {
					if rid == id {
						e.idsByFD[fd] = append(remaining[:i], remaining[i+1:]...)
						break
					}
				}
				oneshotFired = true
			}
			spec.cb(mask & spec.mask)
			fired++
		}
		if oneshotFired {
			if remaining := e.idsByFD[fd]; len(remaining) == 0 {
				delete(e.idsByFD, fd)
				_ = e.poller.del(fd)
			} else {
				_ = e.poller.modify(fd, e.fdUnionMask(fd))
			}
		}
	})
	if err != nil {
		if b := obslog.Error(obslog.CategoryEngine, "poll_wait"); b != nil {
			b.Err(err).Log("poller wait failed")
		}
		return fired, err
	}

	now := e.clock.Now()
	for len(e.timers) > 0 && !e.timers[0].deadline.After(now) {
		item := heap.Pop(&e.timers).(*timerItem)
		delete(e.timerByID, item.id)
		if item.mode == ModePersist {
			item.deadline = item.deadline.Add(item.interval)
			if !item.deadline.After(now) {
				item.deadline = now.Add(item.interval)
			}
			e.timerByID[item.id] = item
			heap.Push(&e.timers, item)
		}
		item.cb()
		fired++
	}

	for _, signo := range e.takePendingSignals() {
		for _, id := range e.idsBySigno[signo] {
			spec, ok := e.sigByID[id]
			if !ok {
				continue
			}
			if spec.mode == ModeOneshot {
				delete(e.sigByID, id)
			}
			spec.cb()
			fired++
		}
		if _, ok := e.idsBySigno[signo]; ok {
			kept := e.idsBySigno[signo][:0]
			for _, id := range e.idsBySigno[signo] {
				if _, live := e.sigByID[id]; live {
					kept = append(kept, id)
				}
			}
			e.idsBySigno[signo] = kept
		}
	}

	return fired, nil
}

func (e *engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	for signo := range e.idsBySigno {
		unregisterSignalRelay(signo, e)
	}
	err1 := e.poller.close()
	err2 := e.wake.close()
	if err1 != nil {
		return err1
	}
	return err2
}
