package archive

import "time"

// Config controls batching behavior for the archiver.
type Config struct {
	// BatchSize is the number of rows that triggers an immediate flush.
	BatchSize int

	// FlushInterval is how often buffered rows are flushed regardless of
	// batch size.
	FlushInterval time.Duration
}

// DefaultConfig returns the default archiver configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:     500,
		FlushInterval: 2 * time.Second,
	}
}

// barRow is the database representation of one ingested bar.
type barRow struct {
	RunID      string
	Symbol     string
	AssetClass string
	BarTs      int64
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	Price      float64
	Source     string
	IngestedAt int64
}

// Metrics tracks archiver activity. Conflicts counts rows skipped by
// ON CONFLICT DO NOTHING, not errors.
type Metrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
