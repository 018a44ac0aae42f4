// Package crawlrunner executes one-company crawls through a bounded worker pool.
package crawlrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/domain/model"
)

// RunnerOptions configures the crawl runner.
type RunnerOptions struct {
	Crawler       core.Crawler
	MaxConcurrent int64
	Logger        *slog.Logger
}

// Runner fans a batch of queue entries out to the crawler, never letting more
// than MaxConcurrent companies crawl at once. Workers never escalate; every
// failure lands in that company's result.
type Runner struct {
	crawler core.Crawler
	sem     *semaphore.Weighted
	logger  *slog.Logger
}

// NewRunner creates a crawl runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Crawler == nil {
		return nil, errors.New("crawler is required")
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		crawler: opts.Crawler,
		sem:     semaphore.NewWeighted(opts.MaxConcurrent),
		logger:  opts.Logger,
	}, nil
}

// RunBatch crawls every entry and returns results in entry order. When the
// context is cancelled mid-batch, in-flight crawls are awaited and entries
// that never started carry a cancellation error in their result.
func (r *Runner) RunBatch(ctx context.Context, entries []model.QueueEntry) []model.CrawlResult {
	results := make([]model.CrawlResult, len(entries))
	var wg sync.WaitGroup

	for i, entry := range entries {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			r.logger.Warn("batch dispatch interrupted",
				"skipped", len(entries)-i, "error", err)
			for j := i; j < len(entries); j++ {
				res := model.CrawlResult{
					CompanyID:   entries[j].CompanyID,
					CompanyName: entries[j].CompanyName,
				}
				res.AddError(fmt.Sprintf("crawl not started: %v", err))
				results[j] = res
			}
			break
		}

		wg.Add(1)
		go func(i int, entry model.QueueEntry) {
			defer wg.Done()
			defer r.sem.Release(1)
			results[i] = r.crawler.Crawl(ctx, entry)
		}(i, entry)
	}

	wg.Wait()
	return results
}
