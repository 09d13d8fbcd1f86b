// Package binalloc is a segregated free-list + bump arena allocator: one
// Bin per size class, bump-allocated from page-allocator-backed chunks,
// with an intrusive free list reusing slot storage for its links.
package binalloc

import (
	"unsafe"

	"github.com/vela-alloc/binalloc/pagealloc"
	"github.com/vela-alloc/binalloc/sizeclass"
)

// Bin is a free-list + bump arena specialized to one fixed slot size. The
// zero value is ready to use once Class is set via Init; this lets Bins
// hold a plain array of Bin rather than a slice of pointers, so the whole
// array can be placement-constructed directly onto page-allocator memory.
type Bin struct {
	class sizeclass.Class

	freeLock spinlock
	freeHead uintptr // 0 means empty

	chunkLock      spinlock
	chunkPtr       uintptr
	chunkRemaining uintptr
}

// Init binds this Bin to a size class. Must be called exactly once,
// before any Alloc/Dealloc.
func (b *Bin) Init(class sizeclass.Class) {
	b.class = class
}

// Alloc returns an uninitialized payload address of at least b.class.Size
// bytes, or 0 if the underlying page allocator is out of memory.
func (b *Bin) Alloc() uintptr {
	b.freeLock.Lock()
	if b.freeHead != 0 {
		slot := b.freeHead
		b.freeHead = loadLink(slot)
		b.freeLock.Unlock()
		return slot
	}
	b.freeLock.Unlock()

	// The free-list lock is always released before calling into addOne,
	// which may itself call into the page allocator. The free-list lock
	// must never be held across an OS call, so that a goroutine refilling
	// a chunk never blocks a concurrent free-list pop on the same Bin.
	return b.addOne()
}

// Dealloc returns ptr, previously obtained from Alloc on this exact Bin,
// to the free list.
func (b *Bin) Dealloc(ptr uintptr) {
	b.freeLock.Lock()
	storeLink(ptr, b.freeHead)
	b.freeHead = ptr
	b.freeLock.Unlock()
}

// addOne carves one fresh slot from the current chunk, refilling from
// the page allocator if the chunk is exhausted or has never been
// allocated.
func (b *Bin) addOne() uintptr {
	stride := b.class.Stride()

	b.chunkLock.Lock()
	defer b.chunkLock.Unlock()

	if b.chunkRemaining >= stride {
		ptr := b.chunkPtr
		b.chunkPtr += stride
		b.chunkRemaining -= stride
		return ptr
	}

	base, ok := pagealloc.Alloc(pagealloc.Layout{Size: sizeclass.ChunkSize, Align: b.class.Align})
	if !ok {
		return 0
	}
	b.chunkPtr = base + stride
	b.chunkRemaining = sizeclass.ChunkSize - stride
	return base
}

// loadLink/storeLink read and write the intrusive free-list pointer
// through the slot's own storage: a slot is either a user payload or a
// free-list link, never the Go type system's concern to distinguish,
// only the Bin's — whichever list currently owns the slot decides the
// interpretation.
func loadLink(slot uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(slot))
}

func storeLink(slot uintptr, next uintptr) {
	*(*uintptr)(unsafe.Pointer(slot)) = next
}
