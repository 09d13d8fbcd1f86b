//go:build unix

package vm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func discoverPageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

func osMap(size uintptr) (uintptr, bool) {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, false
	}
	return uintptr(unsafe.Pointer(&b[0])), true
}

func osUnmap(ptr, size uintptr) {
	_ = unix.Munmap(sliceAt(ptr, size))
}

func osShrinkTail(ptr, size uintptr) {
	osUnmap(ptr, size)
}
