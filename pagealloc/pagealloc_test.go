package pagealloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vela-alloc/binalloc/vm"
)

func writePattern(ptr uintptr, n uintptr, pattern byte) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(n))
	for i := range b {
		b[i] = pattern
	}
}

func assertPattern(t *testing.T, ptr uintptr, n uintptr, pattern byte) {
	t.Helper()
	b := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), int(n))
	for i, v := range b {
		require.Equalf(t, pattern, v, "byte %d", i)
	}
}

func TestAllocOfOneByteIsPageAligned(t *testing.T) {
	ps := vm.PageSize()
	ptr, ok := Alloc(Layout{Size: 1, Align: 1})
	require.True(t, ok)
	defer Dealloc(ptr, Layout{Size: 1, Align: 1})
	assert.Zero(t, ptr%ps)
}

func TestAllocRejectsBadAlignment(t *testing.T) {
	_, ok := Alloc(Layout{Size: 8, Align: 3})
	assert.False(t, ok)
}

func TestAllocRejectsSizeThatOverflowsWhenPageAligned(t *testing.T) {
	_, ok := Alloc(Layout{Size: ^uintptr(0) - 3, Align: 8})
	assert.False(t, ok)
}

func TestReallocShrinkPreservesPrefix(t *testing.T) {
	ps := vm.PageSize()
	big := 4 * ps
	ptr, ok := Alloc(Layout{Size: big, Align: 1})
	require.True(t, ok)
	writePattern(ptr, ps, 0x42)

	shrunk, ok := Realloc(ptr, Layout{Size: big, Align: 1}, ps)
	require.True(t, ok)
	assert.Equal(t, ptr, shrunk, "shrinking in place must keep the same base pointer")
	assertPattern(t, shrunk, ps, 0x42)
	Dealloc(shrunk, Layout{Size: ps, Align: 1})
}

func TestReallocGrowPreservesContents(t *testing.T) {
	ps := vm.PageSize()
	ptr, ok := Alloc(Layout{Size: ps, Align: 1})
	require.True(t, ok)
	writePattern(ptr, ps, 0x99)

	grown, ok := Realloc(ptr, Layout{Size: ps, Align: 1}, 8*ps)
	require.True(t, ok)
	require.NotZero(t, grown)
	assertPattern(t, grown, ps, 0x99)
	Dealloc(grown, Layout{Size: 8 * ps, Align: 1})
}

func TestReallocUnrepresentableOldLayoutFails(t *testing.T) {
	ps := vm.PageSize()
	ptr, ok := Alloc(Layout{Size: ps, Align: 1})
	require.True(t, ok)
	defer Dealloc(ptr, Layout{Size: ps, Align: 1})

	_, ok = Realloc(ptr, Layout{Size: ps, Align: 0}, ps)
	assert.False(t, ok)
}
