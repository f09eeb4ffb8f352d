// Command bench drives the parallel-insert workload from the container's
// own test scenario S7: -workers goroutines inserting -n key/value pairs
// concurrently, then a MapReduce over the result. It exists to exercise
// the container outside of `go test`, not as part of its contract.
package main

import (
	"flag"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	ompmap "github.com/Edison18/omp-hash-map"
)

var (
	n       = flag.Int("n", 10_000_000, "number of keys to insert")
	workers = flag.Int("workers", runtime.GOMAXPROCS(0), "number of inserting goroutines")
)

func main() {
	flag.Parse()
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	m := ompmap.New[int, int](ompmap.WithWorkerPoolSize[int](*workers))

	start := time.Now()
	var wg sync.WaitGroup
	per := (*n + *workers - 1) / *workers
	for w := 0; w < *workers; w++ {
		lo := w * per
		hi := lo + per
		if hi > *n {
			hi = *n
		}
		if lo >= hi {
			continue
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
	insertElapsed := time.Since(start)

	start = time.Now()
	max := ompmap.MapReduce[int, int, int](
		m,
		func(_ int, v int) int { return v },
		func(a, b int) int {
			if a > b {
				return a
			}
			return b
		},
		0,
	)
	reduceElapsed := time.Since(start)

	log.Info().
		Int("n", *n).
		Uint64("len", m.Len()).
		Int("buckets", m.Buckets()).
		Int("max", max).
		Dur("insert", insertElapsed).
		Dur("map_reduce", reduceElapsed).
		Msg("bench complete")

	if m.Len() != uint64(*n) || max != *n-1 {
		os.Exit(1)
	}
}
