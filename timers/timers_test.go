package timers

import (
	"testing"
	"time"

	"github.com/nrise/evloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoop(t *testing.T) *evloop.Loop {
	t.Helper()
	eng, err := evloop.NewEngine("epoll")
	require.NoError(t, err)
	loop := evloop.New(eng)
	t.Cleanup(func() { _ = loop.Close() })
	return loop
}

func TestDoAfter(t *testing.T) {
	loop := newTestLoop(t)
	tm := New(loop)

	start := time.Now()
	var fired time.Duration
	var gotToken Token

	token := tm.DoAfter(200*time.Millisecond, func(tok Token) {
		gotToken = tok
		fired = time.Since(start)
	})

	require.NoError(t, loop.ExitLoop(500*time.Millisecond))
	require.NoError(t, loop.Run(evloop.RunForever))

	assert.Equal(t, token, gotToken)
	assert.Greater(t, fired, 190*time.Millisecond)
	assert.Less(t, fired, 400*time.Millisecond)

	tm.Cleanup()
}

func TestCancelBeforeFire(t *testing.T) {
	loop := newTestLoop(t)
	tm := New(loop)

	var ran bool
	token := tm.DoAfter(50*time.Millisecond, func(Token) {
		ran = true
	})
	assert.True(t, tm.Cancel(token))

	require.NoError(t, loop.ExitLoop(100*time.Millisecond))
	require.NoError(t, loop.Run(evloop.RunForever))

	assert.False(t, ran)
	assert.Equal(t, 0, tm.Len())

	tm.Cleanup()
}

func TestDoAt(t *testing.T) {
	loop := newTestLoop(t)
	tm := New(loop)

	start := time.Now()
	var fired time.Duration
	var gotToken Token

	token := tm.DoAt(start.Add(200*time.Millisecond), func(tok Token) {
		gotToken = tok
		fired = time.Since(start)
	})

	require.NoError(t, loop.ExitLoop(500*time.Millisecond))
	require.NoError(t, loop.Run(evloop.RunForever))

	assert.Equal(t, token, gotToken)
	assert.Greater(t, fired, 190*time.Millisecond)
	assert.Less(t, fired, 400*time.Millisecond)

	tm.Cleanup()
}

// TestDoEvery supplements the upstream stub of the same name (which never
// had a body): it checks that a repeating entry fires more than once at
// roughly the scheduled interval, and that Cancel stops it from firing
// again.
func TestDoEvery(t *testing.T) {
	loop := newTestLoop(t)
	tm := New(loop)

	var count int
	var token Token
	token = tm.DoEvery(50*time.Millisecond, func(tok Token) {
		assert.Equal(t, token, tok)
		count++
		if count == 3 {
			tm.Cancel(tok)
		}
	})

	require.NoError(t, loop.ExitLoop(400*time.Millisecond))
	require.NoError(t, loop.Run(evloop.RunForever))

	assert.Equal(t, 3, count)
	assert.Equal(t, 0, tm.Len())
}
