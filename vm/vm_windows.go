//go:build windows

package vm

import (
	"golang.org/x/sys/windows"
)

func discoverPageSize() uintptr {
	var info windows.SystemInfo
	windows.GetSystemInfo(&info)
	return uintptr(info.PageSize)
}

func osMap(size uintptr) (uintptr, bool) {
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil || addr == 0 {
		return 0, false
	}
	return addr, true
}

func osUnmap(ptr, _ uintptr) {
	// Size is ignored by the OS on release but required by the vm
	// interface for symmetry with the Unix side.
	_ = windows.VirtualFree(ptr, 0, windows.MEM_RELEASE)
}

// osTryExtend: Windows has no in-place VirtualAlloc growth primitive that
// preserves the existing mapping's contents, so this always fails and
// callers fall back to map-copy-unmap.
func osTryExtend(uintptr, uintptr, uintptr) bool {
	return false
}

func osShrinkTail(ptr, size uintptr) {
	_ = windows.VirtualFree(ptr, size, windows.MEM_DECOMMIT)
}
