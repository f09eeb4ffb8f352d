package ompmap

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// cacheLineSize pads segment and bucket slots so adjacent locks never share
// a cache line under concurrent contention.
const cacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// segment exists purely to coordinate rehashing: point operations acquire
// one segment's lock in shared mode before touching a bucket; rehash,
// Clear, and the traversal operations acquire every segment's lock in
// exclusive or shared mode respectively, for the bucket range the segment
// covers.
type segment struct {
	mu sync.RWMutex
	//lint:ignore U1000 prevents false sharing between adjacent segments
	_ [(cacheLineSize - unsafe.Sizeof(sync.RWMutex{})%cacheLineSize) % cacheLineSize]byte
}

// lockSegmentsAscending acquires every segment's lock exclusively in
// ascending index order. Rehash, Clear, and Reserve use this; the ascending
// order is what makes concurrent full-table operations deadlock-free.
func lockSegmentsAscending(segments []segment) {
	for i := range segments {
		segments[i].mu.Lock()
	}
}

// unlockSegmentsDescending releases every segment's exclusive lock in
// descending index order, the mirror image of lockSegmentsAscending.
func unlockSegmentsDescending(segments []segment) {
	for i := len(segments) - 1; i >= 0; i-- {
		segments[i].mu.Unlock()
	}
}

// rLockSegmentsAscending acquires every segment's lock in shared mode,
// ascending. ApplyAll and MapReduce use this to exclude concurrent rehash
// for the duration of a traversal without excluding other readers.
func rLockSegmentsAscending(segments []segment) {
	for i := range segments {
		segments[i].mu.RLock()
	}
}

// rUnlockSegmentsDescending is the mirror image of rLockSegmentsAscending.
func rUnlockSegmentsDescending(segments []segment) {
	for i := len(segments) - 1; i >= 0; i-- {
		segments[i].mu.RUnlock()
	}
}
