// Package ompmap implements a concurrent associative container tuned for
// bulk parallel insertion, lookup, update, and map-reduce traversal from
// many goroutines at once.
//
// The container is a classic chained hash table: a fixed-size array of
// buckets, each owning a singly-linked chain of entries and its own mutex.
// A smaller array of read-write "segment" locks sits above the buckets
// purely to coordinate rehashing — point operations (Set, Unset, Has, ...)
// take a segment lock in shared mode before touching a bucket, so a rehash
// that takes every segment lock exclusively is guaranteed no point
// operation is in flight. Parallel traversal (ApplyAll, MapReduce) takes
// every segment lock in shared mode for its duration, which excludes
// rehashing (but not other readers) for the whole walk.
//
// Callables passed to SetFunc, SetFuncOr, Apply, MapValue, ApplyAll, and
// MapReduce all run with the owning bucket's lock held. They must not call
// back into the same Map: doing so deadlocks.
package ompmap
