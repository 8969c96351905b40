package evloop

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoopForTest(t *testing.T) *Loop {
	t.Helper()
	eng, err := NewEngine("epoll")
	require.NoError(t, err)
	l := New(eng)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLoopExitLoopImmediate(t *testing.T) {
	loop := newLoopForTest(t)

	var ticks int
	timer := loop.NewTimerEvent()
	require.NoError(t, timer.Initialize(5*time.Millisecond, ModePersist, func() {
		ticks++
		if ticks == 1 {
			_ = loop.ExitLoop(0)
		}
	}))
	require.NoError(t, timer.Enable())

	require.NoError(t, loop.Run(RunForever))
	assert.Equal(t, 1, ticks)
}

func TestLoopExitLoopAfterDelay(t *testing.T) {
	loop := newLoopForTest(t)
	start := time.Now()

	require.NoError(t, loop.ExitLoop(100*time.Millisecond))
	require.NoError(t, loop.Run(RunForever))

	elapsed := time.Since(start)
	assert.Greater(t, elapsed, 80*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestLoopExitLoopFirstFireWins(t *testing.T) {
	loop := newLoopForTest(t)
	start := time.Now()

	require.NoError(t, loop.ExitLoop(500*time.Millisecond))
	require.NoError(t, loop.ExitLoop(50*time.Millisecond))
	require.NoError(t, loop.Run(RunForever))

	assert.Less(t, time.Since(start), 300*time.Millisecond)
}

func TestLoopSubmitFromAnotherGoroutine(t *testing.T) {
	loop := newLoopForTest(t)

	var mu sync.Mutex
	var ran bool

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = loop.Submit(func() {
			mu.Lock()
			ran = true
			mu.Unlock()
			_ = loop.ExitLoop(0)
		})
	}()

	require.NoError(t, loop.ExitLoop(2*time.Second))
	require.NoError(t, loop.Run(RunForever))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, ran)
}

func TestLoopSubmitNextRunsBeforeQueuedSubmit(t *testing.T) {
	loop := newLoopForTest(t)

	var order []string
	require.NoError(t, loop.Submit(func() { order = append(order, "first") }))
	require.NoError(t, loop.SubmitNext(func() { order = append(order, "jumped") }))

	require.NoError(t, loop.Run(RunOnce))
	assert.Equal(t, []string{"jumped", "first"}, order)
}

func TestLoopRunOnceProcessesExactlyOneCycle(t *testing.T) {
	loop := newLoopForTest(t)

	var calls int
	require.NoError(t, loop.Submit(func() { calls++ }))
	require.NoError(t, loop.Run(RunOnce))
	assert.Equal(t, 1, calls)
}

// TestLoopRunRejectsReentry covers calling Run from within a submitted
// callable running on the loop's own goroutine: that must be reported as
// ErrReentrantRun, distinct from the ordinary cross-goroutine ErrLoopRunning
// case covered below.
func TestLoopRunRejectsReentry(t *testing.T) {
	loop := newLoopForTest(t)

	require.NoError(t, loop.Submit(func() {
		err := loop.Run(RunOnce)
		assert.ErrorIs(t, err, ErrReentrantRun)
		_ = loop.ExitLoop(0)
	}))
	require.NoError(t, loop.Run(RunForever))
}

// TestLoopRunRejectsConcurrentRunFromOtherGoroutine covers a second
// goroutine calling Run while the loop is already running elsewhere: that is
// ErrLoopRunning, not ErrReentrantRun, since the calling goroutine is not the
// one inside the existing Run call.
func TestLoopRunRejectsConcurrentRunFromOtherGoroutine(t *testing.T) {
	loop := newLoopForTest(t)

	started := make(chan struct{})
	result := make(chan error, 1)
	require.NoError(t, loop.Submit(func() {
		close(started)
	}))
	go func() {
		<-started
		result <- loop.Run(RunOnce)
		_ = loop.ExitLoop(0)
	}()

	require.NoError(t, loop.Run(RunForever))
	assert.ErrorIs(t, <-result, ErrLoopRunning)
}

func TestLoopClosedRejectsOperations(t *testing.T) {
	loop := newLoopForTest(t)
	require.NoError(t, loop.Close())

	assert.ErrorIs(t, loop.Run(RunOnce), ErrLoopClosed)
	assert.ErrorIs(t, loop.Submit(func() {}), ErrLoopClosed)
	assert.ErrorIs(t, loop.ExitLoop(0), ErrLoopClosed)
	assert.NoError(t, loop.Close(), "Close must be idempotent")
}
