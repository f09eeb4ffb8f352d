package ompmap

// withBucket implements the point-operation protocol: compute the digest,
// acquire the owning segment's lock in shared mode,
// compute the bucket index (re-validated against the live table so a
// rehash that slips in between the digest computation and the lock
// acquisition cannot leave us operating on a stale bucket index), acquire
// the bucket's own lock, run fn, then release both locks in reverse order.
//
// fn must not call back into m: it runs with the bucket lock held.
func (m *Map[K, V]) withBucket(
	key K,
	fn func(tbl *table[K, V], digest uint64, b *bucket[K, V]),
) *table[K, V] {
	digest := m.hashFn(key)
	for {
		tbl := m.tbl.Load()
		idx := indexOf(digest, len(tbl.buckets))
		segIdx := segmentIndexOf(idx, tbl.bucketsPerSegment)
		seg := &m.segments[segIdx]

		seg.mu.RLock()
		if m.tbl.Load() != tbl {
			// A rehash replaced the table between our load and the lock
			// acquisition; idx/segIdx were computed against a table that
			// no longer exists. Retry against the current one.
			seg.mu.RUnlock()
			continue
		}

		b := &tbl.buckets[idx]
		func() {
			// Deferred so a panicking fn still releases both locks before
			// the panic propagates to the caller.
			defer seg.mu.RUnlock()
			b.mu.Lock()
			defer b.mu.Unlock()
			fn(tbl, digest, b)
		}()
		return tbl
	}
}

// Set inserts or overwrites the value for key.
func (m *Map[K, V]) Set(key K, value V) {
	var inserted bool
	tbl := m.withBucket(key, func(_ *table[K, V], digest uint64, b *bucket[K, V]) {
		if e := b.find(digest, key); e != nil {
			e.value = value
			return
		}
		b.insertHead(&entry[K, V]{key: key, value: value, digest: digest})
		inserted = true
	})
	m.afterInsert(inserted, tbl)
}

// SetFunc updates the value for key via setter, which runs with the owning
// bucket's lock held and must not re-enter m. If key is absent, a new entry
// holding V's zero value is inserted first, then setter runs on it.
func (m *Map[K, V]) SetFunc(key K, setter func(v *V)) {
	var inserted bool
	tbl := m.withBucket(key, func(_ *table[K, V], digest uint64, b *bucket[K, V]) {
		if e := b.find(digest, key); e != nil {
			setter(&e.value)
			return
		}
		e := &entry[K, V]{key: key, digest: digest}
		b.insertHead(e)
		setter(&e.value)
		inserted = true
	})
	m.afterInsert(inserted, tbl)
}

// SetFuncOr is SetFunc, but seeds a newly inserted entry with def instead
// of V's zero value before setter runs on it.
func (m *Map[K, V]) SetFuncOr(key K, setter func(v *V), def V) {
	var inserted bool
	tbl := m.withBucket(key, func(_ *table[K, V], digest uint64, b *bucket[K, V]) {
		if e := b.find(digest, key); e != nil {
			setter(&e.value)
			return
		}
		e := &entry[K, V]{key: key, digest: digest, value: def}
		b.insertHead(e)
		setter(&e.value)
		inserted = true
	})
	m.afterInsert(inserted, tbl)
}

// Unset removes key if present. It is a no-op if key is absent.
func (m *Map[K, V]) Unset(key K) {
	var removed bool
	m.withBucket(key, func(_ *table[K, V], digest uint64, b *bucket[K, V]) {
		removed = b.remove(digest, key)
	})
	if removed {
		m.nKeys.Add(^uint64(0)) // -1, the documented atomic decrement idiom
	}
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	var found bool
	m.withBucket(key, func(_ *table[K, V], digest uint64, b *bucket[K, V]) {
		found = b.find(digest, key) != nil
	})
	return found
}

// GetOrDefault returns a copy of the value stored for key, or def if key is
// absent.
func (m *Map[K, V]) GetOrDefault(key K, def V) V {
	result := def
	m.withBucket(key, func(_ *table[K, V], digest uint64, b *bucket[K, V]) {
		if e := b.find(digest, key); e != nil {
			result = e.value
		}
	})
	return result
}

// MapValue returns fn(value) for the value stored at key, or def if key is
// absent. It is a package-level function, not a method, because Go methods
// cannot introduce a type parameter the receiver doesn't already have.
func MapValue[K comparable, V, R any](m *Map[K, V], key K, fn func(V) R, def R) R {
	result := def
	m.withBucket(key, func(_ *table[K, V], digest uint64, b *bucket[K, V]) {
		if e := b.find(digest, key); e != nil {
			result = fn(e.value)
		}
	})
	return result
}

// Apply invokes fn on the value stored at key, under the owning bucket's
// lock, for an atomic single-key read-modify-write. It is a no-op if key is
// absent. fn must not re-enter m.
func (m *Map[K, V]) Apply(key K, fn func(v *V)) {
	m.withBucket(key, func(_ *table[K, V], digest uint64, b *bucket[K, V]) {
		if e := b.find(digest, key); e != nil {
			fn(&e.value)
		}
	})
}

// afterInsert runs the post-insert bookkeeping every insert path shares:
// bump n_keys, then check the load factor and request a rehash if needed.
// Both happen after the bucket and segment locks from withBucket have
// already been released, so a rehash triggered here never tries to
// re-acquire a lock this call is still holding.
func (m *Map[K, V]) afterInsert(inserted bool, tbl *table[K, V]) {
	if !inserted {
		return
	}
	m.nKeys.Add(1)
	if tbl == nil {
		return
	}
	n := len(tbl.buckets)
	if float64(m.nKeys.Load())/float64(n) > m.loadFac {
		m.requestRehash(roundBucketsToSegments(n*2, len(m.segments)))
	}
}
