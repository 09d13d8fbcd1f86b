//go:build linux

package vm

import "golang.org/x/sys/unix"

// osTryExtend issues a hinted, non-MAP_FIXED anonymous mmap at
// ptr+oldSize. The kernel treats the address as a hint unless MAP_FIXED
// is set; if it honors the hint the returned address equals the request
// and the mapping is contiguous, otherwise the speculative mapping is
// torn back down. golang.org/x/sys/unix's high-level Mmap wrapper has no
// address-hint parameter, so this goes through the raw syscall directly.
func osTryExtend(ptr, oldSize, newSize uintptr) bool {
	growBy := newSize - oldSize
	hint := ptr + oldSize

	addr, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		hint,
		growBy,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
		^uintptr(0), // fd -1
		0,
	)
	if errno != 0 {
		return false
	}
	if addr == hint {
		return true
	}
	osUnmap(addr, growBy)
	return false
}
