// Package obslog wires the package-level structured logger shared by evloop
// and evloop/flow. It mirrors the teacher package's
// SetStructuredLogger/getGlobalLogger design, generalized onto
// github.com/joeycumines/logiface's Event/Builder vocabulary instead of a
// hand-rolled Logger interface, with github.com/joeycumines/stumpy as the
// zero-dependency default backend and github.com/joeycumines/go-catrate
// throttling repeated failure log lines.
package obslog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Category names, mirroring the teacher's LogEntry.Category values.
const (
	CategoryEngine = "engine"
	CategoryLoop   = "loop"
	CategoryTimer  = "timer"
	CategorySignal = "signal"
	CategoryAction = "action"
)

var (
	mu     sync.RWMutex
	logger = logiface.New[*stumpy.Event](stumpy.WithStumpy(stumpy.WithWriter(os.Stderr)))

	// noisy throttles repeated failure categories to one log line per
	// window, so a poller wait that keeps failing, or a timer that keeps
	// failing to initialize or enable, doesn't flood output every dispatch
	// cycle.
	noisy = catrate.NewLimiter(map[time.Duration]int{
		time.Second: 1,
		time.Minute: 10,
	})
)

// SetWriter redirects the default stumpy backend's output. Primarily useful
// for tests, which want logs captured rather than sent to stderr.
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = logiface.New[*stumpy.Event](stumpy.WithStumpy(stumpy.WithWriter(w)))
}

// SetLogger replaces the shared logger outright, for callers that want a
// differently configured logger. The replacement must still be a logiface
// logger over stumpy events; other logiface backends are not accepted.
func SetLogger(l *logiface.Logger[*stumpy.Event]) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

func current() *logiface.Logger[*stumpy.Event] {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Info starts an informational-level entry tagged with category.
func Info(category string) *logiface.Builder[*stumpy.Event] {
	return current().Info().Str("category", category)
}

// Debug starts a debug-level entry tagged with category.
func Debug(category string) *logiface.Builder[*stumpy.Event] {
	return current().Debug().Str("category", category)
}

// Warn starts a warning-level entry tagged with category.
func Warn(category string) *logiface.Builder[*stumpy.Event] {
	return current().Warning().Str("category", category)
}

// Error starts an error-level entry tagged with category, rate-limited per
// (category, key): repeated failures for the same key collapse to at most
// one log line per second (ten per minute) instead of one per dispatch
// cycle. Returns nil when the entry should be suppressed; callers must
// check before chaining.
func Error(category, key string) *logiface.Builder[*stumpy.Event] {
	if _, ok := noisy.Allow(category + "\x00" + key); !ok {
		return nil
	}
	return current().Err().Str("category", category).Str("key", key)
}
