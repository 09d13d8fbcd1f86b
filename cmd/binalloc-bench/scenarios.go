package main

import (
	"fmt"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/vela-alloc/binalloc/allocator"
	"github.com/vela-alloc/binalloc/vm"
)

func readUintptr(ptr uintptr, idx int) uintptr {
	s := unsafe.Slice((*uintptr)(unsafe.Pointer(ptr)), idx+1)
	return s[idx]
}

func writeUintptr(ptr uintptr, idx int, v uintptr) {
	s := unsafe.Slice((*uintptr)(unsafe.Pointer(ptr)), idx+1)
	s[idx] = v
}

// scenarioLinearGrowth is S1: allocate 100 machine words, write i to
// index i, realloc up then down, and check the surviving prefix at each
// step.
func (r *runner) scenarioLinearGrowth() error {
	const wordSize = unsafe.Sizeof(uintptr(0))
	layout := allocator.Layout{Size: 100 * wordSize, Align: wordSize}

	ptr, ok := r.alloc.Alloc(layout)
	if !ok {
		return fmt.Errorf("initial alloc failed")
	}
	for i := 0; i < 100; i++ {
		writeUintptr(ptr, i, uintptr(i))
	}

	grown, ok := r.alloc.Realloc(ptr, layout, 20000*wordSize)
	if !ok {
		return fmt.Errorf("grow realloc failed")
	}
	for i := 0; i < 100; i++ {
		if v := readUintptr(grown, i); v != uintptr(i) {
			return fmt.Errorf("index %d: want %d, got %d", i, i, v)
		}
	}

	shrunk, ok := r.alloc.Realloc(grown, allocator.Layout{Size: 20000 * wordSize, Align: wordSize}, 50*wordSize)
	if !ok {
		return fmt.Errorf("shrink realloc failed")
	}
	for i := 0; i < 50; i++ {
		if v := readUintptr(shrunk, i); v != uintptr(i) {
			return fmt.Errorf("after shrink, index %d: want %d, got %d", i, i, v)
		}
	}

	r.alloc.Dealloc(shrunk, allocator.Layout{Size: 50 * wordSize, Align: wordSize})
	return nil
}

// scenarioChurnBoundary is S2: free the first half of a run of
// same-class blocks, allocate as many again, and confirm LIFO reuse.
func (r *runner) scenarioChurnBoundary() error {
	const n = 256
	layout := allocator.Layout{Size: 512, Align: 8}

	var ptrs [n]uintptr
	for i := range ptrs {
		ptr, ok := r.alloc.Alloc(layout)
		if !ok {
			return fmt.Errorf("alloc %d failed", i)
		}
		ptrs[i] = ptr
	}

	for i := 0; i < n/2; i++ {
		r.alloc.Dealloc(ptrs[i], layout)
	}

	var reused [n / 2]uintptr
	for i := range reused {
		ptr, ok := r.alloc.Alloc(layout)
		if !ok {
			return fmt.Errorf("reuse alloc %d failed", i)
		}
		reused[i] = ptr
	}
	for i, got := range reused {
		want := ptrs[n/2-1-i]
		if got != want {
			return fmt.Errorf("reuse %d: want freshest-freed slot %#x, got %#x", i, want, got)
		}
	}

	for _, ptr := range ptrs[n/2:] {
		r.alloc.Dealloc(ptr, layout)
	}
	for _, ptr := range reused {
		r.alloc.Dealloc(ptr, layout)
	}
	return nil
}

// scenarioMultithread is S3: cfg.Threads workers (32 by default) each
// build, verify, and drop a 513-byte buffer filled with their index,
// cfg.Iterations times (1000 by default).
func (r *runner) scenarioMultithread() error {
	cfg := r.currentConfig()
	layout := allocator.Layout{Size: 513, Align: 8}

	var g errgroup.Group
	for w := 0; w < cfg.Threads; w++ {
		w := w
		g.Go(func() error {
			marker := byte(w)
			for i := 0; i < cfg.Iterations; i++ {
				ptr, ok := r.alloc.Alloc(layout)
				if !ok {
					return fmt.Errorf("worker %d: alloc failed at iteration %d", w, i)
				}
				buf := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), 513)
				for j := range buf {
					buf[j] = marker
				}
				for j, v := range buf {
					if v != marker {
						return fmt.Errorf("worker %d: byte %d corrupted", w, j)
					}
				}
				r.alloc.Dealloc(ptr, layout)
			}
			return nil
		})
	}
	return g.Wait()
}

// scenarioLargePath is S4: a 1 MiB block with markers at page
// boundaries, regrown to 4 MiB and shrunk to 256 KiB.
func (r *runner) scenarioLargePath() error {
	pageSize := vm.PageSize()
	layout := allocator.Layout{Size: 1 << 20, Align: 8}

	ptr, ok := r.alloc.Alloc(layout)
	if !ok {
		return fmt.Errorf("alloc failed")
	}
	offsets := []uintptr{0, pageSize, 2 * pageSize}
	for i, off := range offsets {
		*(*byte)(unsafe.Pointer(ptr + off)) = byte(0x40 + i)
	}

	grown, ok := r.alloc.Realloc(ptr, layout, 4<<20)
	if !ok {
		return fmt.Errorf("grow realloc failed")
	}
	for i, off := range offsets {
		want := byte(0x40 + i)
		if got := *(*byte)(unsafe.Pointer(grown + off)); got != want {
			return fmt.Errorf("marker %d lost after grow: want %#x got %#x", i, want, got)
		}
	}

	shrunk, ok := r.alloc.Realloc(grown, allocator.Layout{Size: 4 << 20, Align: 8}, 256<<10)
	if !ok {
		return fmt.Errorf("shrink realloc failed")
	}
	if got := *(*byte)(unsafe.Pointer(shrunk)); got != byte(0x40) {
		return fmt.Errorf("first marker lost after shrink: got %#x", got)
	}

	r.alloc.Dealloc(shrunk, allocator.Layout{Size: 256 << 10, Align: 8})
	return nil
}

// scenarioABIRoundtrip is S5, exercised through the Go allocator facade
// rather than the cgo shim (the shim itself is cmd/libbinalloc; this
// confirms the semantics the shim relies on).
func (r *runner) scenarioABIRoundtrip() error {
	layout := allocator.Layout{Size: 100, Align: 8}
	ptr, ok := r.alloc.Alloc(layout)
	if !ok {
		return fmt.Errorf("malloc(100) failed")
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), 100)
	for i := range buf {
		buf[i] = 0xAB
	}

	grown, ok := r.alloc.Realloc(ptr, layout, 200)
	if !ok {
		return fmt.Errorf("realloc(p, 200) failed")
	}
	grownBuf := unsafe.Slice((*byte)(unsafe.Pointer(grown)), 100)
	for i, v := range grownBuf {
		if v != 0xAB {
			return fmt.Errorf("byte %d lost across realloc: got %#x", i, v)
		}
	}
	r.alloc.Dealloc(grown, allocator.Layout{Size: 200, Align: 8})
	return nil
}

// scenarioAlignmentCap is S6: requests above MAX_ALIGN must fail.
func (r *runner) scenarioAlignmentCap() error {
	_, ok := r.alloc.Alloc(allocator.Layout{Size: 16, Align: 8192})
	if ok {
		return fmt.Errorf("alloc with align=8192 unexpectedly succeeded")
	}
	return nil
}
