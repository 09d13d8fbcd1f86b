// Package allocator is the top-level allocation facade: it dispatches by
// padded size to a Bin (via the Thread Cache when enabled) or straight to
// the Page Allocator for anything larger than the largest size class.
package allocator

import (
	"sync"

	"github.com/vela-alloc/binalloc/binalloc"
	"github.com/vela-alloc/binalloc/pagealloc"
	"github.com/vela-alloc/binalloc/sizeclass"
	"github.com/vela-alloc/binalloc/threadcache"
)

// Allocator is the process-wide (or, for tests, locally scoped) facade.
// The zero value is not usable; construct with New.
type Allocator struct {
	classes        []sizeclass.Class
	useThreadCache bool

	tc *threadcache.ThreadCache

	globalOnce sync.Once
	globalBins *binalloc.Bins
}

// New builds an Allocator. By default it runs with a Thread Cache, since
// a Go program is always potentially multi-goroutine; pass
// WithoutThreadCache to share one global Bins instead.
func New(opts ...Option) *Allocator {
	cfg := config{
		classes:        sizeclass.Classes,
		useThreadCache: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := &Allocator{
		classes:        cfg.classes,
		useThreadCache: cfg.useThreadCache,
	}
	if a.useThreadCache {
		a.tc = threadcache.New(a.classes)
	}
	return a
}

var (
	defaultOnce sync.Once
	defaultA    *Allocator
)

// Default returns the process-wide singleton, lazily constructed on
// first use.
func Default() *Allocator {
	defaultOnce.Do(func() {
		defaultA = New()
	})
	return defaultA
}

// bins selects this call's Bins instance: the Thread-Cache bucket for
// the calling goroutine, or the single global Bins in
// WithoutThreadCache mode. ok is false only on out-of-memory during the
// Thread Cache's one-time bucket-array allocation.
func (a *Allocator) bins() (*binalloc.Bins, bool) {
	if a.useThreadCache {
		return a.tc.Pick()
	}
	a.globalOnce.Do(func() {
		a.globalBins = binalloc.NewBins(a.classes)
	})
	return a.globalBins, true
}

// Alloc returns layout.Size uninitialized bytes aligned to layout.Align,
// or (0, false) on failure. Rejects layout.Align > sizeclass.MaxAlign.
func (a *Allocator) Alloc(layout Layout) (uintptr, bool) {
	if !isPowerOfTwo(layout.Align) || layout.Align > sizeclass.MaxAlign {
		return 0, false
	}
	padded, ok := layout.Padded()
	if !ok {
		return 0, false
	}

	bins, ok := a.bins()
	if !ok {
		return 0, false
	}
	if bin, ok := bins.BinFor(padded); ok {
		ptr := bin.Alloc()
		return ptr, ptr != 0
	}

	ptr, ok := pagealloc.Alloc(pagealloc.Layout{Size: padded, Align: layout.Align})
	return ptr, ok
}

// AllocZeroed is Alloc followed by zeroing exactly layout.Size bytes. The
// large path never needs an explicit clear: vm.Map always returns
// freshly mapped, zero-filled pages, and the Page Allocator never reuses
// a region across an intervening dealloc. The Bin path does need an
// explicit clear, since a freed slot's storage may still hold its
// previous occupant's bytes or a stale free-list link.
func (a *Allocator) AllocZeroed(layout Layout) (uintptr, bool) {
	if !isPowerOfTwo(layout.Align) || layout.Align > sizeclass.MaxAlign {
		return 0, false
	}
	padded, ok := layout.Padded()
	if !ok {
		return 0, false
	}

	bins, ok := a.bins()
	if !ok {
		return 0, false
	}
	if bin, ok := bins.BinFor(padded); ok {
		ptr := bin.Alloc()
		if ptr == 0 {
			return 0, false
		}
		zeroBytes(ptr, layout.Size)
		return ptr, true
	}

	ptr, ok := pagealloc.Alloc(pagealloc.Layout{Size: padded, Align: layout.Align})
	return ptr, ok
}

// Dealloc returns ptr, previously obtained from Alloc/AllocZeroed on
// this Allocator with this exact layout, to the allocator. Precondition
// violations (mismatched layout, double-free, unowned pointer) are
// undefined behavior; Dealloc makes no detection effort.
func (a *Allocator) Dealloc(ptr uintptr, layout Layout) {
	if ptr == 0 {
		return
	}
	// A layout that overflows Padded could never have come from a
	// successful Alloc/AllocZeroed; presenting one here is itself a
	// precondition violation, so there is nothing further to guard.
	padded, _ := layout.Padded()

	bins, ok := a.bins()
	if !ok {
		return
	}
	if bin, ok := bins.BinFor(padded); ok {
		bin.Dealloc(ptr)
		return
	}
	pagealloc.Dealloc(ptr, pagealloc.Layout{Size: padded, Align: layout.Align})
}

// Realloc resizes the block at ptr (allocated with oldLayout) to
// newSize bytes at oldLayout.Align. If both the old and new padded sizes
// exceed sizeclass.ChunkSize, the request is delegated to the Page
// Allocator, which can grow a large block in place. Otherwise —
// including the conscious non-optimization of shrinking or growing
// within the same size class — a fresh block is allocated, the overlap
// is copied, and the old block is freed. Returns (0, false) if newSize
// can't be padded to oldLayout.Align without overflow.
func (a *Allocator) Realloc(ptr uintptr, oldLayout Layout, newSize uintptr) (uintptr, bool) {
	newLayout := Layout{Size: newSize, Align: oldLayout.Align}

	// oldLayout already came from a successful Alloc/AllocZeroed, so its
	// padding cannot overflow; newLayout is caller-supplied and must be
	// checked like any other Alloc request.
	oldPadded, _ := oldLayout.Padded()
	newPadded, ok := newLayout.Padded()
	if !ok {
		return 0, false
	}

	if oldPadded > sizeclass.ChunkSize && newPadded > sizeclass.ChunkSize {
		return pagealloc.Realloc(ptr, pagealloc.Layout{Size: oldPadded, Align: oldLayout.Align}, newPadded)
	}

	newPtr, ok := a.Alloc(newLayout)
	if !ok {
		return 0, false
	}
	if newPtr != ptr {
		n := oldLayout.Size
		if newSize < n {
			n = newSize
		}
		copyBytes(newPtr, ptr, n)
		a.Dealloc(ptr, oldLayout)
	}
	return newPtr, true
}
