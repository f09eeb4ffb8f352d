package ompmap

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveGrowthPolicyDoublesAtLeast(t *testing.T) {
	m := New[int, int](WithInitialBuckets[int](16), WithSegments[int](4))
	require.NoError(t, m.Reserve(20))
	// max(16*2, 20) = 32, rounded up to a multiple of 4 segments is 32.
	require.Equal(t, 32, m.Buckets())
}

func TestConcurrentReserveRequestsReachTarget(t *testing.T) {
	m := New[int, int](WithInitialBuckets[int](8), WithSegments[int](8))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, m.Reserve(1000))
		}()
	}
	wg.Wait()

	require.GreaterOrEqual(t, m.Buckets(), 1000)
}

// S9 Concurrent mixed workload: many goroutines each own a disjoint key
// range and race Set/Unset/Has/GetOrDefault against one goroutine calling
// Reserve in a loop. Because each goroutine's keys are its own, a
// sequential oracle updated alongside each of its own ops predicts exactly
// which of its keys should remain present once every goroutine has joined —
// linearizability per key is exactly what makes that true even though
// Reserve is rehashing concurrently underneath.
func TestConcurrentMixedWorkloadMatchesSequentialOracle(t *testing.T) {
	const nGoroutines = 16
	const keysPerGoroutine = 64
	const opsPerKey = 200

	m := New[string, int](WithSegments[string](8), WithInitialBuckets[string](8))

	var wg sync.WaitGroup
	wantPresent := make([][]bool, nGoroutines)
	for g := 0; g < nGoroutines; g++ {
		wantPresent[g] = make([]bool, keysPerGoroutine)
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			seed := g*2654435761 + 1
			present := wantPresent[g]
			for i := 0; i < opsPerKey*keysPerGoroutine; i++ {
				seed = seed*1103515245 + 12345
				local := int((uint64(seed) >> 8) % keysPerGoroutine)
				key := strconv.Itoa(g*keysPerGoroutine + local)
				if seed%5 == 0 {
					m.Unset(key)
					present[local] = false
				} else {
					m.Set(key, seed)
					present[local] = true
				}
				m.Has(key)
				m.GetOrDefault(key, -1)
			}
		}(g)
	}

	stopReserve := make(chan struct{})
	reserveDone := make(chan struct{})
	go func() {
		defer close(reserveDone)
		n := 16
		for {
			select {
			case <-stopReserve:
				return
			default:
				n += 16
				require.NoError(t, m.Reserve(n))
			}
		}
	}()

	wg.Wait()
	close(stopReserve)
	<-reserveDone

	wantLen := 0
	for g := 0; g < nGoroutines; g++ {
		for local, present := range wantPresent[g] {
			key := strconv.Itoa(g*keysPerGoroutine + local)
			require.Equal(t, present, m.Has(key), "key %s", key)
			if present {
				wantLen++
			}
		}
	}
	require.EqualValues(t, wantLen, m.Len())
}
