package ompmap

import (
	"strconv"

	"github.com/pkg/errors"
)

// maxBuckets bounds the bucket count Reserve will accept, leaving headroom
// so nBuckets*entriesPerBucket-style arithmetic elsewhere never overflows
// an int.
const maxBuckets = int(^uint(0) >> 1 >> 4)

// Reserve ensures the table holds at least n buckets, rehashing if the
// current bucket count falls short. If n is already satisfied, no work is
// performed. The growth policy doubles the current size unless n demands
// more: the actual new size is the smallest multiple of the segment count
// that is at least max(current*2, n).
func (m *Map[K, V]) Reserve(n int) error {
	if n < 0 {
		return errors.Errorf("ompmap: reserve: negative bucket count %d", n)
	}
	if n > maxBuckets {
		return errors.Errorf("ompmap: reserve: %d buckets overflows the table", n)
	}

	cur := len(m.tbl.Load().buckets)
	if cur >= n {
		return nil
	}

	target := cur * 2
	if n > target {
		target = n
	}
	m.requestRehash(roundBucketsToSegments(target, len(m.segments)))
	return nil
}

// requestRehash gates concurrent callers asking for the same target bucket
// count onto a single in-flight rehash, so concurrent requests de-duplicate
// instead of each migrating the table separately. singleflight.Group makes
// losers wait for, and share, the winner's result.
func (m *Map[K, V]) requestRehash(targetLen int) {
	key := strconv.Itoa(targetLen)
	m.rehashSF.Do(key, func() (any, error) {
		m.rehash(targetLen)
		return nil, nil
	})
}

// rehash grows the table to targetLen buckets (rounded up to a segment
// multiple by the caller), migrating every entry: acquire every segment
// lock exclusively in ascending order, allocate the new array, migrate
// entries in parallel by disjoint old-bucket ranges, swap the new array
// in, release segment locks in descending order.
func (m *Map[K, V]) rehash(targetLen int) {
	lockSegmentsAscending(m.segments)
	defer unlockSegmentsDescending(m.segments)

	old := m.tbl.Load()
	if len(old.buckets) >= targetLen {
		// Another goroutine already grew the table to a sufficient size
		// by the time we acquired every segment lock; abort without
		// rebuilding.
		m.log.rehashSkipped(len(old.buckets), targetLen)
		return
	}

	newLen := roundBucketsToSegments(targetLen, len(m.segments))
	m.log.rehashStarted(len(old.buckets), newLen)
	newTbl := newTable[K, V](newLen, len(m.segments))

	m.pool.forEachRange(len(old.buckets), func(start, end int) {
		for i := start; i < end; i++ {
			src := &old.buckets[i]
			for e := src.head; e != nil; {
				next := e.next
				newIdx := indexOf(e.digest, newLen)
				dest := &newTbl.buckets[newIdx]

				// Segment-aligned partitioning of the OLD buckets does not
				// imply one writer per NEW bucket: two different old
				// buckets can map to the same new bucket. We already hold
				// every segment lock exclusively (no point operation can
				// observe either table), so the only remaining hazard is
				// two migration workers appending to the same new bucket
				// concurrently; its own mutex serializes that.
				dest.mu.Lock()
				e.next = dest.head
				dest.head = e
				dest.mu.Unlock()

				e = next
			}
			src.head = nil
		}
	})

	m.tbl.Store(newTbl)
	m.log.rehashFinished(newLen)
}
