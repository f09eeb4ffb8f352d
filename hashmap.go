package ompmap

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Map is a lock-sharded, chain-bucketed hash map from K to V safe for
// concurrent use by many goroutines without any coordination from the
// caller. See the package doc for the locking discipline that makes this
// safe.
//
// The zero value is not usable; construct one with New.
type Map[K comparable, V any] struct {
	nKeys atomic.Uint64
	tbl   atomic.Pointer[table[K, V]]

	segments []segment
	hashFn   func(K) uint64
	loadFac  float64
	pool     *workerPool

	rehashSF singleflight.Group
	log      zeroLogger
}

// New builds an empty Map. With no options it starts with 64 segments and
// 64 buckets and grows automatically past a load factor of 1.0.
func New[K comparable, V any](opts ...Option[K]) *Map[K, V] {
	cfg := newConfig[K]()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.segments < 1 {
		cfg.segments = 1
	}
	if cfg.poolSize < 1 {
		cfg.poolSize = runtime.GOMAXPROCS(0)
	}
	hashFn := cfg.hashFn
	if hashFn == nil {
		hashFn = newDefaultHashFn[K]()
	}

	nBuckets := roundBucketsToSegments(cfg.initialBuckets, cfg.segments)

	m := &Map[K, V]{
		segments: make([]segment, cfg.segments),
		hashFn:   hashFn,
		loadFac:  cfg.loadFactor,
		pool:     newWorkerPool(cfg.poolSize),
		log:      zeroLogger{cfg.logger},
	}
	m.tbl.Store(newTable[K, V](nBuckets, cfg.segments))
	return m
}

// Len returns the current number of distinct keys, read with a single
// atomic load.
func (m *Map[K, V]) Len() uint64 {
	return m.nKeys.Load()
}

// Buckets returns the current bucket array length. The read is taken while
// holding one segment's lock in shared mode, which is enough: n_buckets
// only ever changes while every segment lock is held exclusively.
func (m *Map[K, V]) Buckets() int {
	m.segments[0].mu.RLock()
	defer m.segments[0].mu.RUnlock()
	return len(m.tbl.Load().buckets)
}

// Clear drops every entry and resets the key count to zero. The bucket
// array length is left unchanged.
func (m *Map[K, V]) Clear() {
	lockSegmentsAscending(m.segments)
	defer unlockSegmentsDescending(m.segments)

	tbl := m.tbl.Load()
	for i := range tbl.buckets {
		tbl.buckets[i].head = nil
	}
	m.nKeys.Store(0)
}
