package scanner

import "time"

const (
	// DefaultBackwardWindow is about one month of blocks.
	DefaultBackwardWindow uint64 = 4320

	defaultPrefetch        = 1
	defaultPollInterval    = 30 * time.Second
	defaultRangeWorkers    = 4
	defaultPersistAttempts = 3
	defaultPersistDelay    = 500 * time.Millisecond
)
