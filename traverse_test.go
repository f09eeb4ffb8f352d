package ompmap

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// S6 Map-reduce sum-of-a.
func TestMapReduceSumOfKeysStartingWithA(t *testing.T) {
	m := New[string, float64]()
	entries := map[string]float64{
		"aa": 1.1, "ab": 2.2, "ac": 3.3, "ad": 4.4, "ae": 5.5,
		"ba": 6.6, "bb": 7.7,
	}
	for k, v := range entries {
		m.Set(k, v)
	}

	result := MapReduce[string, float64, int](
		m,
		func(k string, _ float64) int {
			if strings.HasPrefix(k, "a") {
				return 1
			}
			return 0
		},
		func(a, b int) int { return a + b },
		0,
	)
	require.Equal(t, 5, result)
}

// S8 Sequential sum/max/min over 0..99.
func TestMapReduceSumMaxMinSequential(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 100; i++ {
		m.Set(i, i)
	}

	sum := MapReduce[int, int, int](m, func(_ int, v int) int { return v },
		func(a, b int) int { return a + b }, 0)
	require.Equal(t, 4950, sum)

	max := MapReduce[int, int, int](m, func(_ int, v int) int { return v },
		func(a, b int) int {
			if a > b {
				return a
			}
			return b
		}, 0)
	require.Equal(t, 99, max)

	min := MapReduce[int, int, int](m, func(_ int, v int) int { return v },
		func(a, b int) int {
			if a < b {
				return a
			}
			return b
		}, 100)
	require.Equal(t, 0, min)
}

// map_reduce equals the sequential fold of mapper over all entries, for
// an arbitrary associative+commutative reducer.
func TestMapReduceMatchesSequentialFold(t *testing.T) {
	m := New[int, int](WithSegments[int](8))
	want := 0
	for i := 0; i < 2000; i++ {
		m.Set(i, i)
		want += i * 2
	}

	got := MapReduce[int, int, int](
		m,
		func(_ int, v int) int { return v * 2 },
		func(a, b int) int { return a + b },
		0,
	)
	require.Equal(t, want, got)
}

func TestApplyAllVisitsEveryEntryExactlyOnce(t *testing.T) {
	m := New[int, int](WithSegments[int](4))
	for i := 0; i < 1000; i++ {
		m.Set(i, i)
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	m.ApplyAll(func(k int, v *int) {
		mu.Lock()
		seen[k]++
		mu.Unlock()
		*v = *v + 1
	})

	require.Len(t, seen, 1000)
	for _, count := range seen {
		require.Equal(t, 1, count)
	}
	for i := 0; i < 1000; i++ {
		require.Equal(t, i+1, m.GetOrDefault(i, -1))
	}
}

// S7 Parallel 10M-style insert, scaled down for test speed: N goroutines
// insert disjoint ranges concurrently, then MapReduce(max) is checked.
func TestParallelInsertAndMapReduceMax(t *testing.T) {
	const n = 200_000
	const workers = 8

	m := New[int, int]()
	var wg sync.WaitGroup
	per := n / workers
	for w := 0; w < workers; w++ {
		lo, hi := w*per, (w+1)*per
		if w == workers-1 {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				m.Set(i, i)
			}
		}(lo, hi)
	}
	wg.Wait()

	require.EqualValues(t, n, m.Len())
	require.GreaterOrEqual(t, m.Buckets(), n)

	max := MapReduce[int, int, int](m, func(_ int, v int) int { return v },
		func(a, b int) int {
			if a > b {
				return a
			}
			return b
		}, 0)
	require.Equal(t, n-1, max)
}

// rehash preserves the multiset of (k,v) entries.
func TestRehashPreservesContents(t *testing.T) {
	m := New[int, string](WithInitialBuckets[int](4), WithSegments[int](4))
	want := make(map[int]string)
	for i := 0; i < 5000; i++ {
		want[i] = strconv.Itoa(i)
		m.Set(i, want[i])
	}
	require.NoError(t, m.Reserve(20000))

	var mu sync.Mutex
	got := make(map[int]string)
	m.ApplyAll(func(k int, v *string) {
		mu.Lock()
		got[k] = *v
		mu.Unlock()
	})
	require.Equal(t, want, got)
}
