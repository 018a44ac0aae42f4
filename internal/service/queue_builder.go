package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/domain/model"
)

// QueueConfig holds tuning for queue assembly.
type QueueConfig struct {
	// StaleMaxAge is how old a company's last crawl may get before the
	// sweep picks it up even without subscribers.
	StaleMaxAge time.Duration `json:"stale_max_age"`
	// HeavyDemand is the subscriber count that escalates priority.
	HeavyDemand int64 `json:"heavy_demand"`
}

// DefaultQueueConfig returns a QueueConfig with sensible defaults.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		StaleMaxAge: 24 * time.Hour,
		HeavyDemand: 5,
	}
}

// QueueBuilderServiceOptions groups dependencies for QueueBuilderService.
type QueueBuilderServiceOptions struct {
	Queue  core.QueueRepository
	Config QueueConfig
	Logger *slog.Logger
}

// QueueBuilderService assembles the prioritized, deduplicated crawl queue
// from one candidate set per mode. A company appears at most once however
// often the candidate query lists it.
type QueueBuilderService struct {
	queue  core.QueueRepository
	cfg    QueueConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewQueueBuilderService constructs a new QueueBuilderService.
func NewQueueBuilderService(opts QueueBuilderServiceOptions) *QueueBuilderService {
	if opts.Queue == nil {
		panic("QueueRepository is required")
	}
	if opts.Config.StaleMaxAge <= 0 {
		opts.Config.StaleMaxAge = DefaultQueueConfig().StaleMaxAge
	}
	if opts.Config.HeavyDemand <= 0 {
		opts.Config.HeavyDemand = DefaultQueueConfig().HeavyDemand
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &QueueBuilderService{
		queue:  opts.Queue,
		cfg:    opts.Config,
		logger: opts.Logger,
		now:    time.Now,
	}
}

// Build gathers candidates from the set the mode names, deduplicates them
// by company, assigns priorities and returns the queue ordered most urgent
// first. Ties break toward more subscribers. Scheduled sweeps build in
// stale mode; all-subscribed mode serves previews.
func (s *QueueBuilderService) Build(ctx context.Context, mode model.QueueMode) ([]model.QueueEntry, error) {
	var candidates []model.QueueEntry
	var err error
	switch mode {
	case model.QueueModeAllSubscribed:
		candidates, err = s.queue.SubscribedCandidates(ctx)
		if err != nil {
			return nil, fmt.Errorf("subscribed candidates: %w", err)
		}
	default:
		candidates, err = s.queue.StaleCandidates(ctx, s.cfg.StaleMaxAge)
		if err != nil {
			return nil, fmt.Errorf("stale candidates: %w", err)
		}
	}

	now := s.now().UTC()
	seen := make(map[int64]struct{}, len(candidates))
	entries := make([]model.QueueEntry, 0, len(candidates))
	for _, e := range candidates {
		if _, dup := seen[e.CompanyID]; dup {
			continue
		}
		seen[e.CompanyID] = struct{}{}
		e.Priority = s.priorityFor(&e, now)
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return entries[i].SubscriberCount > entries[j].SubscriberCount
	})

	s.logger.Info("crawl queue built",
		"mode", mode.String(),
		"entries", len(entries),
		"candidates", len(candidates))
	return entries, nil
}

// Stats summarises an assembled queue for observability.
func (s *QueueBuilderService) Stats(entries []model.QueueEntry) model.QueueStats {
	return model.BuildQueueStats(entries)
}

// priorityFor ranks one entry. Heavy subscriber demand with an expired cache
// is critical; an expired cache nobody wants still beats background refresh.
func (s *QueueBuilderService) priorityFor(e *model.QueueEntry, now time.Time) model.CrawlPriority {
	expired := e.CacheExpired(now)
	switch {
	case e.SubscriberCount >= s.cfg.HeavyDemand && expired:
		return model.PriorityCritical
	case e.SubscriberCount >= s.cfg.HeavyDemand:
		return model.PriorityHigh
	case e.SubscriberCount >= 1:
		return model.PriorityNormal
	case expired:
		return model.PriorityLow
	default:
		return model.PriorityBackground
	}
}
