// Package threadcache implements a sharded Thread Cache: a fixed-size
// array of binalloc.Bins, lazily constructed on first use, with per-call
// selection by hashing a thread-identity proxy.
package threadcache

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/vela-alloc/binalloc/binalloc"
	"github.com/vela-alloc/binalloc/pagealloc"
	"github.com/vela-alloc/binalloc/sizeclass"
)

// ThreadCache owns numBins = 4*runtime.NumCPU() Bins instances,
// placement-constructed in one page-allocator-backed region so the
// bucket array itself is a single contiguous mapping: one page-allocator
// request sized numBins*sizeof(Bins), aligned to alignof(Bins), with
// each Bins initialized in place.
type ThreadCache struct {
	classes []sizeclass.Class

	once sync.Once
	bins []binalloc.Bins // backed by raw pagealloc memory, not the Go heap
	ok   bool
}

// New builds a ThreadCache dispatching over the given size-class table.
// Construction is lazy: no page-allocator call happens until the first
// Pick.
func New(classes []sizeclass.Class) *ThreadCache {
	return &ThreadCache{classes: classes}
}

// Pick selects the Bins instance for the calling goroutine. ok is false
// only if the one-time page-allocator request backing the whole bucket
// array failed (OS out of memory); no operation here panics or aborts,
// so a failed first call simply leaves the cache permanently unavailable
// and every subsequent Pick also reports !ok, same as any other
// out-of-memory condition propagating as failure rather than as a crash.
func (tc *ThreadCache) Pick() (*binalloc.Bins, bool) {
	tc.once.Do(tc.init)
	if !tc.ok {
		return nil, false
	}
	idx := mix64(goroutineID()) % uint64(len(tc.bins))
	return &tc.bins[idx], true
}

// NumBins reports the bucket count (4*runtime.NumCPU()), forcing
// initialization if it has not already happened.
func (tc *ThreadCache) NumBins() int {
	tc.once.Do(tc.init)
	return len(tc.bins)
}

func (tc *ThreadCache) init() {
	numBins := 4 * runtime.NumCPU()

	var sample binalloc.Bins
	elemSize := unsafe.Sizeof(sample)
	elemAlign := unsafe.Alignof(sample)

	base, ok := pagealloc.Alloc(pagealloc.Layout{
		Size:  elemSize * uintptr(numBins),
		Align: elemAlign,
	})
	if !ok {
		return
	}

	// bins aliases raw, GC-unscanned page-allocator memory as a Go
	// slice so Init can placement-construct each element in place. Each
	// Bins holds a copy of the tc.classes slice header, and tc.classes
	// itself lives on the Go heap in this ThreadCache — so even though
	// this backing memory is never traced by the garbage collector, the
	// slice headers it stores cannot dangle while the ThreadCache is
	// reachable: their pointee is rooted through tc.classes.
	bins := unsafe.Slice((*binalloc.Bins)(unsafe.Pointer(base)), numBins)
	for i := range bins {
		bins[i].Init(tc.classes)
	}

	tc.bins = bins
	tc.ok = true
}
