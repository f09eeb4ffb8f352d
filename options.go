package ompmap

import "github.com/rs/zerolog"

const (
	defaultSegments       = 64
	defaultLoadFactor     = 1.0
	defaultInitialBuckets = defaultSegments
)

// config collects the options New applies before building a Map. It
// mirrors a functional-option config pattern: a plain struct mutated by a
// chain of func(*config[K]) closures.
type config[K comparable] struct {
	segments       int
	initialBuckets int
	loadFactor     float64
	hashFn         func(K) uint64
	poolSize       int
	logger         zerolog.Logger
}

// Option configures a Map at construction time. See New.
type Option[K comparable] func(*config[K])

// WithSegments sets the number of segment locks used to coordinate
// rehashing. More segments mean finer-grained rehash exclusion at the cost
// of one RWMutex each; the default is 64.
func WithSegments[K comparable](n int) Option[K] {
	return func(c *config[K]) {
		if n > 0 {
			c.segments = n
		}
	}
}

// WithInitialBuckets sets the minimum starting bucket count. It is rounded
// up to a multiple of the segment count.
func WithInitialBuckets[K comparable](n int) Option[K] {
	return func(c *config[K]) {
		if n > 0 {
			c.initialBuckets = n
		}
	}
}

// WithLoadFactor sets the n_keys/n_buckets threshold that triggers an
// automatic rehash after an insert. The default is 1.0.
func WithLoadFactor[K comparable](f float64) Option[K] {
	return func(c *config[K]) {
		if f > 0 {
			c.loadFactor = f
		}
	}
}

// WithHasher overrides the default key hasher. fn must be deterministic:
// equal keys must always hash to the same digest.
func WithHasher[K comparable](fn func(K) uint64) Option[K] {
	return func(c *config[K]) {
		if fn != nil {
			c.hashFn = fn
		}
	}
}

// WithWorkerPoolSize bounds the number of goroutines rehash migration and
// parallel traversal may use at once. The default is runtime.GOMAXPROCS(0).
func WithWorkerPoolSize[K comparable](n int) Option[K] {
	return func(c *config[K]) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithLogger attaches a zerolog.Logger the Map uses for rehash and
// migration diagnostics. The default is a no-op logger: the container
// itself never requires logging to satisfy its contract.
func WithLogger[K comparable](l zerolog.Logger) Option[K] {
	return func(c *config[K]) {
		c.logger = l
	}
}

func newConfig[K comparable]() config[K] {
	return config[K]{
		segments:       defaultSegments,
		initialBuckets: defaultInitialBuckets,
		loadFactor:     defaultLoadFactor,
		logger:         zerolog.Nop(),
	}
}
