package badgerslot

import "time"

// Config configures the Badger slot medium.
type Config struct {
	// Dir is the storage directory. Required unless InMemory is set.
	Dir string

	// InMemory keeps all data in memory (tests).
	InMemory bool

	// GCInterval is the interval between value log GC runs.
	// Default: 10m. Zero or negative disables the loop.
	GCInterval time.Duration

	// GCThreshold is the discard ratio passed to RunValueLogGC.
	// Default: 0.5
	GCThreshold float64

	// SyncWrites fsyncs after every write.
	// Default: true, slots are few and small.
	SyncWrites bool
}

// DefaultConfig returns the default configuration for dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
		SyncWrites:  true,
	}
}
