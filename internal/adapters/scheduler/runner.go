// Package scheduler runs the periodic crawl sweep loop.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/domain/model"
)

// BatchDispatcher executes one batch of queue entries and reports per-company
// results. The crawlrunner worker pool is the production implementation.
type BatchDispatcher interface {
	RunBatch(ctx context.Context, entries []model.QueueEntry) []model.CrawlResult
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Queue      core.QueueBuilder
	Dispatcher BatchDispatcher
	Config     core.SweepConfig

	// HeartbeatPath is the liveness file rewritten while the loop is healthy.
	// Empty disables heartbeats.
	HeartbeatPath string

	// Lock serialises sweeps across instances sharing one database.
	// Nil runs unlocked, which is fine for a single instance.
	Lock SweepLock

	Logger *slog.Logger
}

// Runner drives full sweeps of the crawl queue. Each sweep rebuilds the
// priority queue and dispatches it in batches, pausing between batches so a
// long queue does not hammer every career site at once.
type Runner struct {
	queue     core.QueueBuilder
	dispatch  BatchDispatcher
	cfg       core.SweepConfig
	heartbeat string
	lock      SweepLock
	logger    *slog.Logger

	running atomic.Bool

	// Overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewRunner creates a sweep runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}
	return &Runner{
		queue:     opts.Queue,
		dispatch:  opts.Dispatcher,
		cfg:       opts.Config,
		heartbeat: opts.HeartbeatPath,
		lock:      opts.Lock,
		logger:    opts.Logger,
		sleep:     sleepCtx,
		now:       time.Now,
	}, nil
}

// validateRunnerOptions validates and sets defaults for RunnerOptions.
func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.Queue == nil {
		return errors.New("queue builder is required")
	}
	if opts.Dispatcher == nil {
		return errors.New("batch dispatcher is required")
	}
	def := core.DefaultSweepConfig()
	if opts.Config.Interval <= 0 {
		opts.Config.Interval = def.Interval
	}
	if opts.Config.BatchSize <= 0 {
		opts.Config.BatchSize = def.BatchSize
	}
	if opts.Config.BatchDelay < 0 {
		opts.Config.BatchDelay = def.BatchDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// Run starts the sweep loop and blocks until the context is cancelled.
// The first sweep fires immediately; later sweeps fire every Interval.
// While idle the heartbeat file is refreshed once a minute.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("starting crawl scheduler",
		"interval", r.cfg.Interval,
		"batch_size", r.cfg.BatchSize,
		"batch_delay", r.cfg.BatchDelay)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	idle := time.NewTicker(time.Minute)
	defer idle.Stop()

	if _, err := r.Sweep(ctx); err != nil {
		r.logger.Error("sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("crawl scheduler stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-idle.C:
			r.writeHeartbeat()

		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.logger.Error("sweep failed", "error", err)
				// Keep looping; the next tick gets a fresh queue.
			}
		}
	}
}

// Sweep builds the crawl queue and dispatches it batch by batch. A sweep that
// finds another sweep still in flight is skipped rather than stacked.
func (r *Runner) Sweep(ctx context.Context) ([]model.CrawlResult, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("sweep still in flight, skipping this cycle")
		return nil, nil
	}
	defer r.running.Store(false)

	if r.lock != nil {
		held, err := r.lock.Acquire(ctx)
		if err != nil {
			// The lock is advisory; a broken lock store must not stop crawling.
			r.logger.Warn("sweep lock unavailable, proceeding unlocked", "error", err)
		} else if !held {
			r.logger.Info("another instance holds the sweep lock, skipping this cycle")
			return nil, nil
		} else {
			defer r.lock.Release(ctx)
		}
	}

	start := r.now()
	// Sweeps refresh what has gone stale; fresh subscribed companies keep
	// serving from cache until their entries expire.
	entries, err := r.queue.Build(ctx, model.QueueModeStale)
	if err != nil {
		return nil, fmt.Errorf("build crawl queue: %w", err)
	}
	if len(entries) == 0 {
		r.logger.Info("crawl queue empty, nothing to sweep")
		r.writeHeartbeat()
		return nil, nil
	}

	results := make([]model.CrawlResult, 0, len(entries))
	batches := (len(entries) + r.cfg.BatchSize - 1) / r.cfg.BatchSize

	for i := 0; i < len(entries); i += r.cfg.BatchSize {
		end := min(i+r.cfg.BatchSize, len(entries))
		batch := entries[i:end]

		r.logger.Info("dispatching batch",
			"batch", i/r.cfg.BatchSize+1,
			"batches", batches,
			"companies", len(batch))
		results = append(results, r.dispatch.RunBatch(ctx, batch)...)
		r.writeHeartbeat()

		if end < len(entries) {
			if err := r.sleep(ctx, r.cfg.BatchDelay); err != nil {
				r.logger.Info("sweep interrupted", "completed", len(results), "queued", len(entries))
				return results, err
			}
		}
	}

	succeeded := 0
	inserted := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
		inserted += res.JobsInserted
	}
	r.logger.Info("sweep complete",
		"companies", len(results),
		"succeeded", succeeded,
		"jobs_inserted", inserted,
		"elapsed", r.now().Sub(start))

	return results, nil
}

// writeHeartbeat stamps the liveness file with the current time. Failures are
// logged and otherwise ignored; a missed heartbeat must not stop the sweep.
func (r *Runner) writeHeartbeat() {
	if r.heartbeat == "" {
		return
	}
	stamp := r.now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(r.heartbeat, []byte(stamp), 0o644); err != nil {
		r.logger.Warn("heartbeat write failed", "path", r.heartbeat, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
