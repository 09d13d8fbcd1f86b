package threadcache

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vela-alloc/binalloc/sizeclass"
)

func TestGoroutineIDStableWithinOneGoroutine(t *testing.T) {
	a := goroutineID()
	b := goroutineID()
	assert.Equal(t, a, b)
}

func TestGoroutineIDDiffersAcrossGoroutines(t *testing.T) {
	var wg sync.WaitGroup
	ids := make(chan uint64, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			ids <- goroutineID()
		}()
	}
	wg.Wait()
	close(ids)

	var seen []uint64
	for id := range ids {
		seen = append(seen, id)
	}
	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1])
}

func TestMix64IsDeterministicAndAvalanches(t *testing.T) {
	assert.Equal(t, mix64(1), mix64(1))
	assert.NotEqual(t, mix64(1), mix64(2))
	assert.NotEqual(t, uint64(0), mix64(0)^mix64(1))
}

func TestNumBinsIsFourTimesCPUCount(t *testing.T) {
	tc := New(sizeclass.Classes)
	assert.Equal(t, 4*runtime.NumCPU(), tc.NumBins())
}

func TestPickReturnsSameBinsForSameGoroutine(t *testing.T) {
	tc := New(sizeclass.Classes)
	a, ok := tc.Pick()
	require.True(t, ok)
	b, ok := tc.Pick()
	require.True(t, ok)
	assert.Same(t, a, b)
}

func TestPickedBinsServesAllocDealloc(t *testing.T) {
	tc := New(sizeclass.Classes)
	bs, ok := tc.Pick()
	require.True(t, ok)

	bin, ok := bs.BinFor(64)
	require.True(t, ok)

	ptr := bin.Alloc()
	require.NotZero(t, ptr)
	bin.Dealloc(ptr)
}

func TestConcurrentPickNeverReturnsOutOfRangeBin(t *testing.T) {
	tc := New(sizeclass.Reduced)
	numBins := tc.NumBins()

	const goroutines = 64
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			bs, ok := tc.Pick()
			require.True(t, ok)
			require.NotNil(t, bs)
		}()
	}
	wg.Wait()
	assert.Equal(t, 4*runtime.NumCPU(), numBins)
}
