package allocator

import "unsafe"

func copyBytes(dst, src, n uintptr) {
	if n == 0 {
		return
	}
	dstBuf := unsafe.Slice((*byte)(unsafe.Pointer(dst)), n)
	srcBuf := unsafe.Slice((*byte)(unsafe.Pointer(src)), n)
	copy(dstBuf, srcBuf)
}

func zeroBytes(ptr, n uintptr) {
	if n == 0 {
		return
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n)
	clear(buf)
}
