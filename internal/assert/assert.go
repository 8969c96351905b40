// Package assert provides the framework's abort-on-violation assertion
// facility, used for illegal constructor arguments and state-machine
// invariant violations that indicate a programming error rather than a
// user-runtime error.
package assert

import "fmt"

// ASSERT aborts the process via panic if cond is false. It is reserved for
// ConfigurationError conditions (a nil required constructor argument) and
// internal invariant violations; ordinary
// user-runtime failures must never call this and should instead return an
// error or a false transition result.
func ASSERT(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("evloop: assertion failed: "+format, args...))
	}
}
