package ompmap

import (
	"sync"
	"unsafe"
)

// entry is one key/value record in a bucket chain. digest is cached from
// the key's hash at insertion time so rehash never recomputes it, and so
// chain walks can reject non-matches on a cheap integer compare before
// falling back to comparing keys.
type entry[K comparable, V any] struct {
	key    K
	value  V
	digest uint64
	next   *entry[K, V]
}

// bucket owns a singly-linked chain of entries that hash to it. Every read
// or mutation of the chain rooted at head requires holding mu.
type bucket[K comparable, V any] struct {
	mu   sync.Mutex
	head *entry[K, V]
	//lint:ignore U1000 prevents false sharing between adjacent buckets
	_ [(cacheLineSize - unsafe.Sizeof(struct {
		mu   sync.Mutex
		head unsafe.Pointer
	}{})%cacheLineSize) % cacheLineSize]byte
}

// find walks the chain comparing digest first, then key, returning the
// matching entry or nil. Caller must hold b.mu.
func (b *bucket[K, V]) find(digest uint64, key K) *entry[K, V] {
	for e := b.head; e != nil; e = e.next {
		if e.digest == digest && e.key == key {
			return e
		}
	}
	return nil
}

// insertHead pushes e onto the chain. Caller must hold b.mu.
func (b *bucket[K, V]) insertHead(e *entry[K, V]) {
	e.next = b.head
	b.head = e
}

// remove detaches the entry matching digest and key, if any, reporting
// whether one was found. Caller must hold b.mu.
func (b *bucket[K, V]) remove(digest uint64, key K) bool {
	var prev *entry[K, V]
	for e := b.head; e != nil; e = e.next {
		if e.digest == digest && e.key == key {
			if prev == nil {
				b.head = e.next
			} else {
				prev.next = e.next
			}
			return true
		}
		prev = e
	}
	return false
}
