package threadcache

import (
	"runtime"
	"strconv"
)

// goroutineID returns a value stable for the lifetime of the calling
// goroutine, standing in for the pthread_self/GetCurrentThreadId a
// thread-sharded cache would normally hash on. Go exposes no portable OS
// thread id without cgo, and a goroutine can migrate between OS threads
// between calls anyway, so a per-goroutine identity is the Go-native
// substitute: it is still a stable-per-caller integer, which is all the
// hash-bucket selection actually requires.
//
// runtime.Stack's dump always begins with "goroutine <id> [<state>]:"; we
// parse the id out of that line rather than hashing the whole buffer, so
// that two calls from the same goroutine always agree.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	buf2 := buf[:n]

	const prefix = "goroutine "
	if len(buf2) < len(prefix) || string(buf2[:len(prefix)]) != prefix {
		return 0
	}
	rest := buf2[len(prefix):]

	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	id, err := strconv.ParseUint(string(rest[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
