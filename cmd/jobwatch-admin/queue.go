package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/target/jobwatch/internal/data"
	"github.com/target/jobwatch/internal/domain/model"
	"github.com/target/jobwatch/internal/service"
)

type queueOptions struct {
	Limit       int
	Stats       bool
	All         bool
	StaleMaxAge time.Duration
	HeavyDemand int64
}

// Mode returns the queue mode the flags select.
func (o queueOptions) Mode() model.QueueMode {
	if o.All {
		return model.QueueModeAllSubscribed
	}
	return model.QueueModeStale
}

func parseQueueFlags(args []string) (queueOptions, error) {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts queueOptions
	fs.IntVar(&opts.Limit, "limit", 20, "Maximum entries to display (0 for unlimited)")
	fs.BoolVar(&opts.Stats, "stats", false, "Print queue summary statistics")
	fs.BoolVar(&opts.All, "all", false,
		"Preview every subscribed company instead of the stale set a sweep would select")
	fs.DurationVar(&opts.StaleMaxAge, "stale-max-age", 0,
		"Override the stale candidate window (default from service config)")
	fs.Int64Var(&opts.HeavyDemand, "heavy-demand", 0,
		"Override the subscriber count that escalates priority")

	if err := fs.Parse(args); err != nil {
		return queueOptions{}, err
	}

	if opts.Limit < 0 {
		return queueOptions{}, errors.New("--limit must be zero or positive")
	}

	return opts, nil
}

// runQueuePreview assembles the crawl queue exactly the way a sweep would and
// prints it without dispatching anything.
func runQueuePreview(cmdCtx *commandContext, args []string) error {
	opts, err := parseQueueFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, 2*time.Minute, func(ctx context.Context, db *sql.DB) error {
		builder := service.NewQueueBuilderService(service.QueueBuilderServiceOptions{
			Queue: data.NewQueueRepo(db),
			Config: service.QueueConfig{
				StaleMaxAge: opts.StaleMaxAge,
				HeavyDemand: opts.HeavyDemand,
			},
			Logger: cmdCtx.Logger,
		})

		entries, buildErr := builder.Build(ctx, opts.Mode())
		if buildErr != nil {
			return buildErr
		}

		if len(entries) == 0 {
			return writeln(os.Stdout, "Crawl queue is empty")
		}

		if printErr := printQueueEntries(entries, opts.Limit); printErr != nil {
			return printErr
		}

		if opts.Stats {
			return printQueueStats(builder.Stats(entries))
		}
		return nil
	})
}

func printQueueEntries(entries []model.QueueEntry, limit int) error {
	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Priority\tCompany\tSubscribers\tATS\tLast Crawled\tCache Expires"); err != nil {
		return fmt.Errorf("write queue header: %w", err)
	}
	for i := range shown {
		e := &shown[i]
		if err := writef(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			e.Priority,
			e.CompanyName,
			e.SubscriberCount,
			renderOptString(e.ATSType),
			renderOptTime(e.LastCrawled),
			renderOptTime(e.CacheExpiresAt),
		); err != nil {
			return fmt.Errorf("write queue row %q: %w", e.CompanyName, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush queue table: %w", err)
	}

	if limit > 0 && len(entries) > limit {
		if err := writef(os.Stdout, "\n(showing %d of %d entries)\n", limit, len(entries)); err != nil {
			return fmt.Errorf("write queue truncation notice: %w", err)
		}
	}
	return nil
}

func printQueueStats(stats model.QueueStats) error {
	if err := writef(os.Stdout, "\nQueue Summary\n"); err != nil {
		return fmt.Errorf("write queue summary title: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Metric\tValue"); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	if err := writef(w, "Total Entries\t%d\n", stats.TotalEntries); err != nil {
		return fmt.Errorf("write total entries: %w", err)
	}
	if err := writef(w, "Unique Companies\t%d\n", stats.UniqueCompanies); err != nil {
		return fmt.Errorf("write unique companies: %w", err)
	}
	if err := writef(w, "Total Subscribers\t%d\n", stats.TotalSubscribers); err != nil {
		return fmt.Errorf("write total subscribers: %w", err)
	}
	if err := writef(w, "Estimated Duration\t%.1f min\n", stats.EstimatedDurationMin); err != nil {
		return fmt.Errorf("write estimated duration: %w", err)
	}
	for _, key := range sortedKeys(stats.ByPriority) {
		if err := writef(w, "Priority %s\t%d\n", key, stats.ByPriority[key]); err != nil {
			return fmt.Errorf("write priority count %q: %w", key, err)
		}
	}
	for _, key := range sortedKeys(stats.ByATSType) {
		if err := writef(w, "ATS %s\t%d\n", key, stats.ByATSType[key]); err != nil {
			return fmt.Errorf("write ats count %q: %w", key, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush queue summary: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderOptString(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func renderOptTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
