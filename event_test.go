package evloop

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFdEventIllegalTransitions(t *testing.T) {
	loop := newLoopForTest(t)
	e := loop.NewFdEvent()

	assert.ErrorIs(t, e.Enable(), ErrEventUninitialized)
	assert.ErrorIs(t, e.Disable(), ErrEventUninitialized)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	require.NoError(t, e.Initialize(int(r.Fd()), EventRead, ModeOneshot, func(FDMask) {}))
	assert.ErrorIs(t, e.Initialize(int(r.Fd()), EventRead, ModeOneshot, func(FDMask) {}), ErrEventAlreadyInit)

	assert.NoError(t, e.Disable(), "disabling an already-disabled event is a no-op")
	assert.False(t, e.Enabled())
}

func TestFdEventOneshotDisablesAfterFire(t *testing.T) {
	loop := newLoopForTest(t)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	e := loop.NewFdEvent()
	var fired int
	require.NoError(t, e.Initialize(int(r.Fd()), EventRead, ModeOneshot, func(FDMask) {
		fired++
		_ = loop.ExitLoop(0)
	}))
	require.NoError(t, e.Enable())
	assert.True(t, e.Enabled())

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	require.NoError(t, loop.ExitLoop(time.Second))
	require.NoError(t, loop.Run(RunForever))

	assert.Equal(t, 1, fired)
	assert.False(t, e.Enabled(), "a oneshot event must disable itself once it fires")
}

func TestFdEventDisableFromWithinCallback(t *testing.T) {
	loop := newLoopForTest(t)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	e := loop.NewFdEvent()
	var fired int
	require.NoError(t, e.Initialize(int(r.Fd()), EventRead, ModePersist, func(FDMask) {
		fired++
		assert.NoError(t, e.Disable())
		_ = loop.ExitLoop(0)
	}))
	require.NoError(t, e.Enable())

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	require.NoError(t, loop.ExitLoop(time.Second))
	require.NoError(t, loop.Run(RunForever))

	assert.Equal(t, 1, fired)
	assert.False(t, e.Enabled())
}

func TestTimerEventOneshot(t *testing.T) {
	loop := newLoopForTest(t)

	e := loop.NewTimerEvent()
	start := time.Now()
	var elapsed time.Duration
	require.NoError(t, e.Initialize(50*time.Millisecond, ModeOneshot, func() {
		elapsed = time.Since(start)
		_ = loop.ExitLoop(0)
	}))
	require.NoError(t, e.Enable())

	require.NoError(t, loop.ExitLoop(time.Second))
	require.NoError(t, loop.Run(RunForever))

	assert.Greater(t, elapsed, 40*time.Millisecond)
	assert.False(t, e.Enabled())
}

func TestTimerEventPersistCancelFromCallback(t *testing.T) {
	loop := newLoopForTest(t)

	e := loop.NewTimerEvent()
	var count int
	require.NoError(t, e.Initialize(10*time.Millisecond, ModePersist, func() {
		count++
		if count == 3 {
			assert.NoError(t, e.Disable())
			_ = loop.ExitLoop(0)
		}
	}))
	require.NoError(t, e.Enable())

	require.NoError(t, loop.ExitLoop(time.Second))
	require.NoError(t, loop.Run(RunForever))

	assert.Equal(t, 3, count)
}

func TestSignalEventIllegalTransitions(t *testing.T) {
	loop := newLoopForTest(t)
	e := loop.NewSignalEvent()

	assert.ErrorIs(t, e.Enable(), ErrEventUninitialized)
	assert.ErrorIs(t, e.Disable(), ErrEventUninitialized)
}
