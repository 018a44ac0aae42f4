package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/jobwatch/config"
	"github.com/target/jobwatch/internal/adapters/crawlrunner"
	schedrunner "github.com/target/jobwatch/internal/adapters/scheduler"
	"github.com/target/jobwatch/internal/core"
)

// SchedulerConfig contains configuration for the crawl scheduler.
type SchedulerConfig struct {
	Services  ServiceContainer
	Scheduler config.SchedulerConfig
	Cache     config.CacheConfig
	Logger    *slog.Logger
}

// RunScheduler starts the periodic crawl sweep. It blocks until the context
// is cancelled.
func RunScheduler(ctx context.Context, cfg SchedulerConfig) error {
	if cfg.Services.Crawl == nil || cfg.Services.Queue == nil {
		return errors.New("scheduler requires the crawl and queue services")
	}

	pool, err := crawlrunner.NewRunner(crawlrunner.RunnerOptions{
		Crawler:       cfg.Services.Crawl,
		MaxConcurrent: int64(cfg.Scheduler.MaxConcurrent),
		Logger:        cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("create crawl runner: %w", err)
	}

	opts := schedrunner.RunnerOptions{
		Queue:      cfg.Services.Queue,
		Dispatcher: pool,
		Config: core.SweepConfig{
			Interval:      cfg.Scheduler.Interval(),
			BatchSize:     cfg.Scheduler.BatchSize,
			BatchDelay:    cfg.Scheduler.BatchDelay(),
			MaxConcurrent: cfg.Scheduler.MaxConcurrent,
		},
		HeartbeatPath: cfg.Scheduler.HeartbeatFile,
		Logger:        cfg.Logger,
	}

	// With shared Redis, serialise sweeps across instances.
	if repos := cfg.Services.repos; repos != nil && repos.SharedCache != nil {
		lock, lockErr := schedrunner.NewCacheLock(schedrunner.CacheLockOptions{
			Cache:  repos.SharedCache,
			TTL:    cfg.Cache.SweepLockTTL,
			Logger: cfg.Logger,
		})
		if lockErr != nil {
			return fmt.Errorf("create sweep lock: %w", lockErr)
		}
		opts.Lock = lock
	}

	runner, err := schedrunner.NewRunner(opts)
	if err != nil {
		return fmt.Errorf("create scheduler runner: %w", err)
	}

	return runner.Run(ctx)
}
