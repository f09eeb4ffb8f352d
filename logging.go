package ompmap

import "github.com/rs/zerolog"

// zeroLogger wraps zerolog.Logger so rehash/migration diagnostics have a
// single, narrow seam into the logging library. The map's own operations
// never fail or block on logging: every call here is fire and forget,
// pure diagnostics rather than anything the container depends on.
type zeroLogger struct {
	l zerolog.Logger
}

func (z zeroLogger) rehashStarted(oldLen, newLen int) {
	z.l.Debug().
		Int("old_buckets", oldLen).
		Int("new_buckets", newLen).
		Msg("ompmap: rehash started")
}

func (z zeroLogger) rehashSkipped(curLen, targetLen int) {
	z.l.Debug().
		Int("current_buckets", curLen).
		Int("target_buckets", targetLen).
		Msg("ompmap: rehash skipped, already sufficient")
}

func (z zeroLogger) rehashFinished(newLen int) {
	z.l.Debug().
		Int("new_buckets", newLen).
		Msg("ompmap: rehash finished")
}
