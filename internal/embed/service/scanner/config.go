package scanner

import "time"

// Config tunes the scan pipelines. Zero values select defaults.
type Config struct {
	// StartHeight is where a forward run begins when it has no checkpoint.
	StartHeight *uint64
	// BackwardFrom is where a backward run begins when it has no checkpoint.
	BackwardFrom *uint64
	// Follow keeps a forward run alive at the tip, waiting for new blocks.
	Follow         bool
	PollInterval   time.Duration
	BackwardWindow uint64
	// Prefetch is how many blocks may be fetched ahead of the one being persisted.
	Prefetch        int
	RangeWorkers    int
	PersistAttempts uint
	PersistDelay    time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.BackwardWindow == 0 {
		c.BackwardWindow = DefaultBackwardWindow
	}
	if c.Prefetch <= 0 {
		c.Prefetch = defaultPrefetch
	}
	if c.RangeWorkers <= 0 {
		c.RangeWorkers = defaultRangeWorkers
	}
	if c.PersistAttempts == 0 {
		c.PersistAttempts = defaultPersistAttempts
	}
	if c.PersistDelay <= 0 {
		c.PersistDelay = defaultPersistDelay
	}
	return c
}
