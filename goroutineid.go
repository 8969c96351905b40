package evloop

import "runtime"

// getGoroutineID parses the current goroutine's id out of the header line
// of runtime.Stack's output ("goroutine 123 [running]:..."). It is used
// only to tell whether the caller is the goroutine inside Loop.Run: to
// detect reentrant Run calls, and for the Event methods' loop-goroutine
// check; nothing about dispatch correctness depends on the id's value
// beyond equality comparison.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
