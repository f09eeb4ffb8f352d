package ompmap

import "sync"

// ApplyAll invokes fn once for every entry currently in the map, in no
// particular order, with the owning bucket's lock held for each call. fn
// must not re-enter m. Buckets are partitioned into contiguous ranges and
// processed by a bounded pool of goroutines; every segment lock is held in
// shared mode for the duration of the call, which excludes a concurrent
// rehash (but not other readers) for the whole traversal.
func (m *Map[K, V]) ApplyAll(fn func(k K, v *V)) {
	rLockSegmentsAscending(m.segments)
	defer rUnlockSegmentsDescending(m.segments)

	tbl := m.tbl.Load()
	m.pool.forEachRange(len(tbl.buckets), func(start, end int) {
		for i := start; i < end; i++ {
			b := &tbl.buckets[i]
			b.mu.Lock()
			for e := b.head; e != nil; e = e.next {
				fn(e.key, &e.value)
			}
			b.mu.Unlock()
		}
	})
}

// MapReduce maps every entry with mapper, folds the results per worker
// with reducer starting from identity, then folds the per-worker partials
// together with reducer. reducer must be associative and commutative;
// identity must be its neutral element. It is a package-level function,
// not a method, because Go methods cannot introduce the extra type
// parameter R. Every segment lock is held in shared mode for the
// duration, excluding a concurrent rehash for the whole traversal.
func MapReduce[K comparable, V, R any](
	m *Map[K, V],
	mapper func(k K, v V) R,
	reducer func(a, b R) R,
	identity R,
) R {
	rLockSegmentsAscending(m.segments)
	defer rUnlockSegmentsDescending(m.segments)

	tbl := m.tbl.Load()
	chunks := m.pool.partition(len(tbl.buckets))
	if len(chunks) == 0 {
		return identity
	}

	partials := make([]R, len(chunks))
	for i := range partials {
		partials[i] = identity
	}

	if len(chunks) == 1 {
		partials[0] = reduceBucketRange(tbl, chunks[0].start, chunks[0].end, mapper, reducer, identity)
	} else {
		var wg sync.WaitGroup
		wg.Add(len(chunks))
		for i, c := range chunks {
			go func(i int, c chunk) {
				defer wg.Done()
				partials[i] = reduceBucketRange(tbl, c.start, c.end, mapper, reducer, identity)
			}(i, c)
		}
		wg.Wait()
	}

	result := identity
	for _, p := range partials {
		result = reducer(result, p)
	}
	return result
}

// reduceBucketRange folds mapper(k, v) over every entry in buckets
// [start, end) of tbl into a single thread-local accumulator, starting
// from identity. Caller must hold every segment's lock in at least shared
// mode.
func reduceBucketRange[K comparable, V, R any](
	tbl *table[K, V],
	start, end int,
	mapper func(k K, v V) R,
	reducer func(a, b R) R,
	identity R,
) R {
	acc := identity
	for i := start; i < end; i++ {
		b := &tbl.buckets[i]
		b.mu.Lock()
		for e := b.head; e != nil; e = e.next {
			acc = reducer(acc, mapper(e.key, e.value))
		}
		b.mu.Unlock()
	}
	return acc
}
