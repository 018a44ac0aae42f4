package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/crawler/rategate"
	"github.com/target/jobwatch/internal/domain/model"
)

// GateStats exposes the rate gate's per-domain snapshot.
// Implemented by rategate.Gate.
type GateStats interface {
	Stats() []rategate.DomainStats
}

// CrawlStats rolls up fetch outcomes, cache occupancy and rate-gate state
// over a reporting window.
type CrawlStats struct {
	WindowHours float64                `json:"window_hours"`
	Statuses    []model.CrawlLogStats  `json:"statuses"`
	CacheTotal  int64                  `json:"cache_entries_total"`
	CacheFresh  int64                  `json:"cache_entries_fresh"`
	Domains     []rategate.DomainStats `json:"domains,omitempty"`
}

// StatsServiceOptions groups dependencies for StatsService.
type StatsServiceOptions struct {
	Logs   core.CrawlLogRepository
	Cache  core.JobCacheRepository
	Gate   GateStats // optional; scheduler-less deployments have no gate
	Logger *slog.Logger
}

// StatsService assembles the operational stats surface.
type StatsService struct {
	logs   core.CrawlLogRepository
	cache  core.JobCacheRepository
	gate   GateStats
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService constructs a new StatsService.
func NewStatsService(opts StatsServiceOptions) *StatsService {
	if opts.Logs == nil {
		panic("CrawlLogRepository is required")
	}
	if opts.Cache == nil {
		panic("JobCacheRepository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &StatsService{
		logs:   opts.Logs,
		cache:  opts.Cache,
		gate:   opts.Gate,
		logger: opts.Logger,
		now:    time.Now,
	}
}

// Overview reports crawl outcomes over the window plus cache occupancy and,
// when a rate gate is attached, its per-domain counters.
func (s *StatsService) Overview(ctx context.Context, window time.Duration) (*CrawlStats, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}

	statuses, err := s.logs.StatsSince(ctx, s.now().UTC().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("crawl log stats: %w", err)
	}

	total, fresh, err := s.cache.CountEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cache entries: %w", err)
	}

	stats := &CrawlStats{
		WindowHours: window.Hours(),
		Statuses:    statuses,
		CacheTotal:  total,
		CacheFresh:  fresh,
	}
	if s.gate != nil {
		stats.Domains = s.gate.Stats()
	}
	return stats, nil
}
