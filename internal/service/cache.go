package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/domain/model"
	apperrors "github.com/target/jobwatch/internal/errors"
)

// CacheConfig holds retention tuning for cache maintenance.
type CacheConfig struct {
	// CacheRetention is how long an expired cache entry lingers before pruning.
	CacheRetention time.Duration `json:"cache_retention"`
	// LogRetention is how long crawl log rows are kept.
	LogRetention time.Duration `json:"log_retention"`
}

// DefaultCacheConfig returns a CacheConfig with sensible defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		CacheRetention: 7 * 24 * time.Hour,
		LogRetention:   30 * 24 * time.Hour,
	}
}

// CacheServiceOptions groups dependencies for CacheService.
type CacheServiceOptions struct {
	Cache  core.JobCacheRepository
	Logs   core.CrawlLogRepository
	Config CacheConfig
	Logger *slog.Logger
}

// CacheService serves cached postings and prunes expired state.
type CacheService struct {
	cache  core.JobCacheRepository
	logs   core.CrawlLogRepository
	cfg    CacheConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewCacheService constructs a new CacheService.
func NewCacheService(opts CacheServiceOptions) *CacheService {
	if opts.Cache == nil {
		panic("JobCacheRepository is required")
	}
	if opts.Config.CacheRetention <= 0 {
		opts.Config.CacheRetention = DefaultCacheConfig().CacheRetention
	}
	if opts.Config.LogRetention <= 0 {
		opts.Config.LogRetention = DefaultCacheConfig().LogRetention
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CacheService{
		cache:  opts.Cache,
		logs:   opts.Logs,
		cfg:    opts.Config,
		logger: opts.Logger,
		now:    time.Now,
	}
}

// CachedJobs returns the company's postings while its cache entry is fresh.
func (s *CacheService) CachedJobs(ctx context.Context, companyID int64) ([]model.Job, error) {
	entry, err := s.cache.GetCached(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("get cached jobs: %w", err)
	}
	if entry == nil {
		return nil, apperrors.NotFoundf("no fresh cache entry for company %d", companyID)
	}

	jobs, err := entry.DecodeJobs()
	if err != nil {
		return nil, fmt.Errorf("decode cached jobs: %w", err)
	}
	return jobs, nil
}

// Cleanup prunes cache entries expired past the retention window and, when a
// log repository is attached, old crawl log rows. Returns counts removed.
func (s *CacheService) Cleanup(ctx context.Context) (cacheRemoved, logsRemoved int64, err error) {
	now := s.now().UTC()

	cacheRemoved, err = s.cache.DeleteExpiredBefore(ctx, now.Add(-s.cfg.CacheRetention))
	if err != nil {
		return 0, 0, fmt.Errorf("prune cache entries: %w", err)
	}

	if s.logs != nil {
		logsRemoved, err = s.logs.DeleteBefore(ctx, now.Add(-s.cfg.LogRetention))
		if err != nil {
			return cacheRemoved, 0, fmt.Errorf("prune crawl logs: %w", err)
		}
	}

	s.logger.Info("cache cleanup done",
		"cache_entries_removed", cacheRemoved,
		"crawl_logs_removed", logsRemoved)
	return cacheRemoved, logsRemoved, nil
}
