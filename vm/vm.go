// Package vm is a thin portable surface over anonymous page mapping: one
// function per verb (map, unmap, try extend), plus the lazily-discovered
// process-wide page size. Every other package in this module reaches the
// operating system only through here.
package vm

import (
	"sync"
	"unsafe"
)

var pageSizeOnce sync.Once
var pageSize uintptr

// PageSize returns the operating system's page size, discovered once per
// process and cached thereafter.
func PageSize() uintptr {
	pageSizeOnce.Do(func() {
		pageSize = discoverPageSize()
	})
	return pageSize
}

// Map returns the base of a freshly mapped, zero-initialized,
// page-aligned region of exactly size bytes. size must already be a page
// multiple. ok is false if the operating system refused the request.
func Map(size uintptr) (base uintptr, ok bool) {
	return osMap(size)
}

// Unmap releases a region previously obtained from Map. size must equal
// the size originally passed to Map. Silent on OS error.
func Unmap(ptr, size uintptr) {
	osUnmap(ptr, size)
}

// TryExtend attempts to grow the mapping [ptr, ptr+oldSize) to
// [ptr, ptr+newSize) in place, newSize > oldSize. It reports whether the
// operating system honored the request; on failure the region is left
// exactly as it was (no partial state for the caller to clean up).
func TryExtend(ptr, oldSize, newSize uintptr) bool {
	return osTryExtend(ptr, oldSize, newSize)
}

// ShrinkTail releases the trailing [ptr, ptr+size) of a still-live
// mapping without disturbing the portion before it: munmap on Unix,
// VirtualFree(MEM_DECOMMIT) on Windows. Used by the realloc shrink path.
func ShrinkTail(ptr, size uintptr) {
	osShrinkTail(ptr, size)
}

// sliceAt reinterprets a raw region as a byte slice for the duration of
// one call. Used only to hand freshly mapped or about-to-be-unmapped
// memory to APIs that want a []byte; no long-lived slice header is kept
// around a region that the allocator otherwise tracks only by uintptr.
func sliceAt(ptr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(size))
}
