//go:build unix && !linux

package vm

// osTryExtend has no portable non-MAP_FIXED hinted-mmap primitive on
// non-Linux Unix targets in this module's dependency set, so in-place
// growth is never reported here; callers fall back to map-copy-unmap,
// which is always correct.
func osTryExtend(uintptr, uintptr, uintptr) bool {
	return false
}
