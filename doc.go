// Package evloop provides a single-threaded, event-driven dispatch core for
// long-running POSIX daemons: a pluggable readiness [Engine], a [Loop] that
// owns one Engine and multiplexes file-descriptor, timer, and signal events
// onto user callbacks, and the three [Event] kinds ([FdEvent], [TimerEvent],
// [SignalEvent]) user code subscribes through.
//
// # Architecture
//
// [Engine] is a sealed-variant readiness backend, selected at construction by
// a string tag ("epoll", "reactor-a", "reactor-b") via [NewEngine]. "epoll"
// polls the OS readiness mechanism directly (epoll on Linux, kqueue on
// Darwin). "reactor-a" and "reactor-b" are two independently built portable
// reactors, occupying the structural role the ancestor C++ design assigned
// to two third-party reactor libraries — see DESIGN.md for why they are
// native Go implementations rather than cgo bindings.
//
// [Loop] exclusively owns one Engine and adds: an event-factory API
// (NewFdEvent/NewTimerEvent/NewSignalEvent), a deferred-callable queue
// (Submit/SubmitNext) that is the sole thread-safe entry point, and exit
// scheduling (ExitLoop).
//
// Higher layers build on Loop: package evloop/timers offers token-indexed
// doAfter/doAt/doEvery scheduling, and package evloop/flow offers a
// composable action/workflow state machine.
//
// # Thread Safety
//
// All Event callbacks, all deferred callables, and all Timers/flow
// callbacks run on the single goroutine that calls Loop.Run. Loop.Submit is
// the only method safe to call from any goroutine; everything else must be
// called from the loop goroutine (or before the loop starts).
//
// # Usage
//
//	eng, err := evloop.NewEngine("epoll")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loop := evloop.New(eng)
//	defer loop.Close()
//
//	t := loop.NewTimerEvent()
//	t.Initialize(100*time.Millisecond, evloop.ModeOneshot, func() {
//	    fmt.Println("fired")
//	    loop.ExitLoop(0)
//	})
//	t.Enable()
//
//	if err := loop.Run(evloop.RunForever); err != nil {
//	    log.Fatal(err)
//	}
package evloop
