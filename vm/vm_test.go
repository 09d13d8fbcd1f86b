package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageSizeIsPlausibleAndStable(t *testing.T) {
	ps := PageSize()
	require.Greater(t, ps, uintptr(0))
	assert.Zero(t, ps%4096, "page size must be a multiple of 4096 on every supported target")
	assert.Equal(t, ps, PageSize(), "page size must be stable across calls")
}

func TestMapReturnsZeroedWritableRegion(t *testing.T) {
	size := PageSize()
	base, ok := Map(size)
	require.True(t, ok)
	require.NotZero(t, base)
	defer Unmap(base, size)

	b := sliceAt(base, size)
	for i, v := range b {
		require.Zerof(t, v, "byte %d of a fresh mapping must be zero", i)
	}
	for i := range b {
		b[i] = 0xAB
	}
	for _, v := range b {
		assert.Equal(t, byte(0xAB), v)
	}
}

func TestMapIsPageAligned(t *testing.T) {
	base, ok := Map(PageSize())
	require.True(t, ok)
	defer Unmap(base, PageSize())
	assert.Zero(t, base%PageSize())
}
