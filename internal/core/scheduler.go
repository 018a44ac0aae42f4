package core

import (
	"context"
	"time"

	"github.com/target/jobwatch/internal/domain/model"
)

// SweepRunner defines the interface for the periodic crawl sweep service.
type SweepRunner interface {
	// Sweep builds the queue and crawls every entry in priority order.
	// Returns the per-company results; individual failures do not abort the sweep.
	Sweep(ctx context.Context) ([]model.CrawlResult, error)
}

// SweepConfig holds configuration for the periodic sweep.
type SweepConfig struct {
	// Interval between full sweeps of the queue.
	Interval time.Duration `json:"interval"`
	// BatchSize is the number of entries dispatched per batch.
	BatchSize int `json:"batch_size"`
	// BatchDelay is the pause between batches; the final batch is not followed by one.
	BatchDelay time.Duration `json:"batch_delay"`
	// MaxConcurrent bounds how many crawls run at once within a batch.
	MaxConcurrent int `json:"max_concurrent"`
}

// DefaultSweepConfig returns a SweepConfig with sensible defaults.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Interval:      24 * time.Hour,
		BatchSize:     10,
		BatchDelay:    60 * time.Second,
		MaxConcurrent: 10,
	}
}
