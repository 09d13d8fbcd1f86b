package main

/*
#include <stddef.h>
*/
import "C"

import "unsafe"

//export malloc
func malloc(n C.size_t) unsafe.Pointer {
	size := uintptr(n)
	if size == 0 {
		return nil
	}
	payload := doAlloc(size, defaultAlignment(size), false)
	if payload == 0 {
		return nil
	}
	return unsafe.Pointer(payload)
}

//export free
func free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	doFree(uintptr(p))
}

//export calloc
func calloc(count, size C.size_t) unsafe.Pointer {
	c, n := uintptr(count), uintptr(size)
	if c == 0 || n == 0 {
		return nil
	}
	total := c * n
	if total/c != n {
		return nil // overflow
	}
	payload := doAlloc(total, defaultAlignment(total), true)
	if payload == 0 {
		return nil
	}
	return unsafe.Pointer(payload)
}

//export realloc
func realloc(p unsafe.Pointer, n C.size_t) unsafe.Pointer {
	payload := doRealloc(uintptr(p), uintptr(n))
	if payload == 0 {
		return nil
	}
	return unsafe.Pointer(payload)
}

//export aligned_alloc
func aligned_alloc(alignment, size C.size_t) unsafe.Pointer {
	align, n := uintptr(alignment), uintptr(size)
	if n == 0 {
		return nil
	}
	payload := doAlloc(n, align, false)
	if payload == 0 {
		return nil
	}
	return unsafe.Pointer(payload)
}

//export memalign
func memalign(alignment, size C.size_t) unsafe.Pointer {
	return aligned_alloc(alignment, size)
}

//export valloc
func valloc(size C.size_t) unsafe.Pointer {
	return aligned_alloc(C.size_t(pageSize()), size)
}

//export pvalloc
func pvalloc(size C.size_t) unsafe.Pointer {
	return valloc(size)
}

//export posix_memalign
func posix_memalign(memptr *unsafe.Pointer, alignment, size C.size_t) C.int {
	align := uintptr(alignment)
	if !isPowerOfTwo(align) || align%unsafe.Sizeof(uintptr(0)) != 0 {
		return 1
	}
	ptr := aligned_alloc(alignment, size)
	if ptr == nil {
		return 1
	}
	*memptr = ptr
	return 0
}

func main() {}
