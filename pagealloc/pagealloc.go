// Package pagealloc is a stateless wrapper over vm that rounds requested
// layouts up to whole page multiples and aligns to page boundaries, with
// a grow-in-place realloc path. It carries no state of its own beyond
// what vm caches (the page size).
package pagealloc

import (
	"github.com/vela-alloc/binalloc/vm"
)

// Layout is a (size, alignment) pair; alignment must be a power of two.
type Layout struct {
	Size  uintptr
	Align uintptr
}

func isPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// alignUp rounds n up to a multiple of align, reporting false if the
// rounding overflows uintptr instead of wrapping.
func alignUp(n, align uintptr) (uintptr, bool) {
	padded := (n + align - 1) &^ (align - 1)
	if padded < n {
		return 0, false
	}
	return padded, true
}

// pageAlign returns the layout rounded up to whole page multiples: if the
// requested alignment already exceeds the page size, that alignment is
// preserved. ok is false if the alignment isn't a usable power of two, or
// if rounding the size up would overflow uintptr.
func pageAlign(l Layout) (size, align uintptr, ok bool) {
	if !isPowerOfTwo(l.Align) {
		return 0, 0, false
	}
	align = l.Align
	if align < vm.PageSize() {
		align = vm.PageSize()
	}
	size, ok = alignUp(l.Size, align)
	if !ok {
		return 0, 0, false
	}
	return size, align, true
}

// Alloc returns a base pointer on success, or (0, false) if the layout
// can't be represented or the operating system refused the mapping.
func Alloc(l Layout) (uintptr, bool) {
	size, _, ok := pageAlign(l)
	if !ok {
		return 0, false
	}
	return vm.Map(size)
}

// Dealloc unmaps the region covering the page-aligned layout size.
// Silent on failure, matching vm.Unmap.
func Dealloc(ptr uintptr, l Layout) {
	size, _, ok := pageAlign(l)
	if !ok {
		return
	}
	vm.Unmap(ptr, size)
}

// Realloc picks between three strategies: shrink in place (releasing the
// trailing pages), grow in place via vm.TryExtend, or map-copy-unmap.
// Returns (0, false) if either layout is unrepresentable.
func Realloc(ptr uintptr, oldLayout Layout, newSize uintptr) (uintptr, bool) {
	oldSize, _, ok := pageAlign(oldLayout)
	if !ok {
		return 0, false
	}
	newPagedSize, _, ok := pageAlign(Layout{Size: newSize, Align: oldLayout.Align})
	if !ok {
		return 0, false
	}

	if newPagedSize <= oldSize {
		if newPagedSize < oldSize {
			vm.ShrinkTail(ptr+newPagedSize, oldSize-newPagedSize)
		}
		return ptr, true
	}

	if vm.TryExtend(ptr, oldSize, newPagedSize) {
		return ptr, true
	}

	newPtr, ok := vm.Map(newPagedSize)
	if !ok {
		return 0, false
	}
	copyLen := oldLayout.Size
	if newSize < copyLen {
		copyLen = newSize
	}
	copyBytes(newPtr, ptr, copyLen)
	vm.Unmap(ptr, oldSize)
	return newPtr, true
}
