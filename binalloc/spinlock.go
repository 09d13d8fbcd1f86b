package binalloc

import (
	"runtime"
	"sync/atomic"
)

// spinlock is a test-and-test-and-set spin lock, used instead of an OS
// mutex around each Bin's free-list and chunk-cursor state: the critical
// sections here are a handful of
// instructions (a pointer swap, a cursor bump), far shorter than the
// cost of parking a goroutine's underlying M through sync.Mutex's futex
// path, so busy-waiting wins. There is no blocking syscall or unbounded
// work under the lock (the one call into pagealloc is itself a handful
// of syscalls, never another spinlock), so starvation is bounded by
// contention alone.
type spinlock struct {
	state atomic.Bool
}

func (s *spinlock) Lock() {
	for {
		if !s.state.Swap(true) {
			return
		}
		for s.state.Load() {
			runtime.Gosched()
		}
	}
}

func (s *spinlock) Unlock() {
	s.state.Store(false)
}
