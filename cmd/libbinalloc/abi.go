// Package main implements a C ABI shim: malloc/free/calloc/realloc/
// aligned_alloc/memalign/valloc/pvalloc/posix_memalign, built as a
// -buildmode=c-shared library over the allocator package.
//
// This file holds the shim's pure-Go bookkeeping (header packing,
// default-alignment derivation); main.go holds the thin cgo-exported
// wrappers that translate C types at the boundary.
package main

import (
	"sync"
	"unsafe"

	"github.com/vela-alloc/binalloc/allocator"
	"github.com/vela-alloc/binalloc/sizeclass"
	"github.com/vela-alloc/binalloc/vm"
)

const headerSize = 8 // bytes; the fixed offset of the size header before every returned pointer.

// header packs two values the shim needs to recover on free/realloc into
// one 8-byte word immediately before the returned pointer, at a fixed
// location (payload-8) regardless of alignment, so a single free() can
// locate both the true base pointer and the original dispatch size no
// matter which exported allocator produced the block.
//
// reserve is the byte gap between the underlying allocation's base
// pointer and the returned payload (8 when the request's alignment is
// no stricter than the header itself, otherwise the requested
// alignment). It alone lets free recover base = payload - reserve.
//
// paddedSize is the exact padded byte count used to dispatch the
// original allocation (the value BinFor/pagealloc sized their
// accounting on). Re-presenting it on free, at Align 1, reproduces
// identical dispatch without needing to know the original alignment —
// Layout{Size: paddedSize, Align: 1}.Padded() == paddedSize exactly.
//
// A plain "store n" header, holding only the plain user size, works
// only for the default-alignment family, where alignment is a pure
// function of n; aligned_alloc/memalign/valloc/pvalloc/posix_memalign
// accept an explicit, otherwise-unrecoverable alignment, so a single
// shared free() needs a scheme that works for both families. reserve is
// bounded by sizeclass.MaxAlign, which fits comfortably in the header's
// top 16 bits, leaving 48 bits for paddedSize.
const reserveShift = 48

func packHeader(reserve, paddedSize uintptr) uint64 {
	return uint64(reserve)<<reserveShift | uint64(paddedSize)&(1<<reserveShift-1)
}

func unpackHeader(h uint64) (reserve, paddedSize uintptr) {
	return uintptr(h >> reserveShift), uintptr(h & (1<<reserveShift - 1))
}

func headerAddr(payload uintptr) *uint64 {
	return (*uint64)(unsafe.Pointer(payload - headerSize))
}

func storeHeader(payload uintptr, reserve, paddedSize uintptr) {
	*headerAddr(payload) = packHeader(reserve, paddedSize)
}

func loadHeader(payload uintptr) (reserve, paddedSize uintptr) {
	return unpackHeader(*headerAddr(payload))
}

var (
	allocOnce sync.Once
	alloc     *allocator.Allocator
)

func defaultAllocator() *allocator.Allocator {
	allocOnce.Do(func() {
		alloc = allocator.New()
	})
	return alloc
}

func isPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// powerOfTwoFloor returns the largest power of two <= n, or 1 if n == 0.
func powerOfTwoFloor(n uintptr) uintptr {
	if n == 0 {
		return 1
	}
	p := uintptr(1)
	for p<<1 != 0 && p<<1 <= n {
		p <<= 1
	}
	return p
}

// defaultAlignment is the alignment the shim picks for malloc/calloc/
// realloc, which never receive an explicit alignment from the caller:
// max(headerSize, power_of_two_floor(n)), capped at MaxAlign.
func defaultAlignment(n uintptr) uintptr {
	align := uintptr(headerSize)
	if p := powerOfTwoFloor(n); p > align {
		align = p
	}
	if align > sizeclass.MaxAlign {
		align = sizeclass.MaxAlign
	}
	return align
}

// reserveFor is the base-to-payload gap doAlloc uses: always enough to
// hold the header, and enough to keep payload aligned to align (payload
// = base+reserve; since base is itself aligned to align and reserve is
// a multiple of align whenever align >= headerSize, or align itself
// divides headerSize when align < headerSize, payload inherits base's
// alignment either way).
func reserveFor(align uintptr) uintptr {
	if align < headerSize {
		return headerSize
	}
	return align
}

// doAlloc is the shared core of malloc/calloc/aligned_alloc/memalign/
// valloc/pvalloc: reserve room for the header ahead of a payload of n
// bytes aligned to align, allocate it (zeroing the payload if zero is
// set), and record a header that free/realloc can recover. Returns 0 on
// failure.
func doAlloc(n, align uintptr, zero bool) uintptr {
	if !isPowerOfTwo(align) || align > sizeclass.MaxAlign {
		return 0
	}
	reserve := reserveFor(align)
	total := reserve + n
	if total < n {
		return 0 // reserve+n overflowed uintptr
	}
	layout := allocator.Layout{Size: total, Align: align}
	padded, ok := layout.Padded()
	if !ok {
		return 0
	}

	var base uintptr
	if zero {
		base, ok = defaultAllocator().AllocZeroed(layout)
	} else {
		base, ok = defaultAllocator().Alloc(layout)
	}
	if !ok {
		return 0
	}

	payload := base + reserve
	storeHeader(payload, reserve, padded)
	return payload
}

// doFree recovers the original base pointer and dispatch size from
// payload's header and returns it to the allocator. A nil payload is a
// no-op, matching free(NULL).
func doFree(payload uintptr) {
	if payload == 0 {
		return
	}
	reserve, padded := loadHeader(payload)
	base := payload - reserve
	defaultAllocator().Dealloc(base, allocator.Layout{Size: padded, Align: 1})
}

// doRealloc grows or shrinks the block at payload to hold newSize bytes
// at the same alignment the block was originally allocated with,
// preserving min(old, newSize) bytes. payload == 0 behaves like
// malloc(newSize) (the C realloc(NULL, n) convention), and the new
// requested size is used end-to-end rather than the stale old size.
func doRealloc(payload, newSize uintptr) uintptr {
	if newSize == 0 {
		doFree(payload)
		return 0
	}
	if payload == 0 {
		return doAlloc(newSize, defaultAlignment(newSize), false)
	}

	// reserve alone recovers the alignment the block must keep: when the
	// original alignment was <= headerSize, reserve == headerSize, a
	// safe upper bound (any new block aligned to headerSize also
	// satisfies a weaker original request); when it was > headerSize,
	// reserve == that exact alignment, recovered precisely.
	reserve, oldPadded := loadHeader(payload)
	align := reserve
	oldCapacity := oldPadded - reserve // upper bound on the true old user size

	newPayload := doAlloc(newSize, align, false)
	if newPayload == 0 {
		return 0
	}

	// doAlloc/doFree round-trip through the allocator's own Alloc/
	// Dealloc rather than its Realloc: Realloc's in-place-growth
	// optimization assumes the caller's meaningful bytes start at the
	// block's own base address, which isn't true here once a header
	// reserve sits in front of the payload. Always copying is the
	// simpler, unambiguously correct choice for a header-prefixed
	// scheme; it forgoes large-block in-place growth.
	copyPayload(newPayload, payload, minUintptr(oldCapacity, newSize))
	doFree(payload)
	return newPayload
}

func copyPayload(dst, src, n uintptr) {
	dstBuf := unsafe.Slice((*byte)(unsafe.Pointer(dst)), n)
	srcBuf := unsafe.Slice((*byte)(unsafe.Pointer(src)), n)
	copy(dstBuf, srcBuf)
}

func minUintptr(a, b uintptr) uintptr {
	if a < b {
		return a
	}
	return b
}

// pageSize is exposed for valloc/pvalloc, which align to the OS page
// size rather than a caller-chosen power of two.
func pageSize() uintptr {
	return vm.PageSize()
}
