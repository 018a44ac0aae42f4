package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/target/jobwatch/internal/data"
	"github.com/target/jobwatch/internal/service"
)

type statsOptions struct {
	Window time.Duration
}

func parseStatsFlags(args []string) (statsOptions, error) {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := statsOptions{Window: 24 * time.Hour}
	fs.DurationVar(&opts.Window, "window", 24*time.Hour, "Reporting window for crawl outcomes")

	if err := fs.Parse(args); err != nil {
		return statsOptions{}, err
	}

	if opts.Window <= 0 {
		return statsOptions{}, errors.New("--window must be greater than zero")
	}

	return opts, nil
}

func runStats(cmdCtx *commandContext, args []string) error {
	opts, err := parseStatsFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		svc := service.NewStatsService(service.StatsServiceOptions{
			Logs:   data.NewCrawlLogRepo(db),
			Cache:  data.NewJobCacheRepo(db),
			Logger: cmdCtx.Logger,
		})

		stats, statsErr := svc.Overview(ctx, opts.Window)
		if statsErr != nil {
			return statsErr
		}

		return printCrawlStats(stats)
	})
}

func printCrawlStats(stats *service.CrawlStats) error {
	if err := writef(os.Stdout, "Crawl Activity (last %.1fh)\n\n", stats.WindowHours); err != nil {
		return fmt.Errorf("write stats title: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Status\tCount\tAvg Response"); err != nil {
		return fmt.Errorf("write status header: %w", err)
	}
	for _, row := range stats.Statuses {
		if err := writef(w, "%s\t%d\t%.0fms\n", row.Status, row.Count, row.AvgResponseTimeMs); err != nil {
			return fmt.Errorf("write status row %q: %w", row.Status, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush status table: %w", err)
	}

	if err := writef(os.Stdout, "\nCache entries: %d total, %d fresh\n",
		stats.CacheTotal, stats.CacheFresh); err != nil {
		return fmt.Errorf("write cache occupancy: %w", err)
	}
	return nil
}

type cleanupOptions struct {
	CacheRetention time.Duration
	LogRetention   time.Duration
}

func parseCleanupFlags(args []string) (cleanupOptions, error) {
	fs := flag.NewFlagSet("cleanup-cache", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts cleanupOptions
	fs.DurationVar(&opts.CacheRetention, "cache-retention", 0,
		"Override how long expired cache entries linger (default from service config)")
	fs.DurationVar(&opts.LogRetention, "log-retention", 0,
		"Override how long crawl log rows are kept (default from service config)")

	if err := fs.Parse(args); err != nil {
		return cleanupOptions{}, err
	}

	return opts, nil
}

func runCleanupCache(cmdCtx *commandContext, args []string) error {
	opts, err := parseCleanupFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, 2*time.Minute, func(ctx context.Context, db *sql.DB) error {
		svc := service.NewCacheService(service.CacheServiceOptions{
			Cache: data.NewJobCacheRepo(db),
			Logs:  data.NewCrawlLogRepo(db),
			Config: service.CacheConfig{
				CacheRetention: opts.CacheRetention,
				LogRetention:   opts.LogRetention,
			},
			Logger: cmdCtx.Logger,
		})

		cacheRemoved, logsRemoved, cleanupErr := svc.Cleanup(ctx)
		if cleanupErr != nil {
			return cleanupErr
		}

		if err := writef(os.Stdout, "Removed %d cache entries and %d crawl log rows\n",
			cacheRemoved, logsRemoved); err != nil {
			return fmt.Errorf("write cleanup summary: %w", err)
		}
		return nil
	})
}
