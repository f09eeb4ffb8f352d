package ompmap

import (
	dolthubmaphash "github.com/dolthub/maphash"
)

// newDefaultHashFn builds a seeded, allocation-light 64-bit digest function
// over any comparable K, courtesy of github.com/dolthub/maphash.
func newDefaultHashFn[K comparable]() func(K) uint64 {
	h := dolthubmaphash.NewHasher[K]()
	return h.Hash
}

// indexOf maps a digest to a bucket index: digest mod n_buckets.
func indexOf(digest uint64, nBuckets int) int {
	return int(digest % uint64(nBuckets))
}

// segmentIndexOf maps a bucket index to the segment that covers it.
func segmentIndexOf(bucketIdx, bucketsPerSegment int) int {
	return bucketIdx / bucketsPerSegment
}
