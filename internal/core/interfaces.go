package core

import (
	"context"
	"time"

	"github.com/target/jobwatch/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// CompanyRepository defines the interface for company data operations.
type CompanyRepository interface {
	// UpsertByCareerURL creates a company on first reference and refreshes it
	// on subsequent references, keyed by the unique career page URL.
	UpsertByCareerURL(ctx context.Context, req *model.UpsertCompanyRequest) (*model.Company, error)
	GetByID(ctx context.Context, id int64) (*model.Company, error)
	GetByCareerURL(ctx context.Context, url string) (*model.Company, error)
	// TouchCrawled advances last_crawled and persists the detected ATS tag when known.
	TouchCrawled(ctx context.Context, id int64, atsType string) error
}

// JobRepository defines the interface for posting data operations.
type JobRepository interface {
	// Upsert inserts or refreshes a posting keyed on (company_id, title, location).
	// Returns the posting id and whether a new row was created.
	Upsert(ctx context.Context, job *model.Job) (int64, bool, error)
	// MarkInactiveExcept deactivates every active posting for the company whose
	// id is not in freshIDs. Returns the number of postings deactivated.
	MarkInactiveExcept(ctx context.Context, companyID int64, freshIDs []int64) (int64, error)
	ActiveByCompany(ctx context.Context, companyID int64) ([]model.Job, error)
}

// JobCacheRepository defines the interface for the per-company crawl cache.
type JobCacheRepository interface {
	// GetCached returns the entry only while it is fresh; expired entries read as a miss.
	GetCached(ctx context.Context, companyID int64) (*model.JobCacheEntry, error)
	// GetEntry returns the entry regardless of freshness.
	GetEntry(ctx context.Context, companyID int64) (*model.JobCacheEntry, error)
	UpdateCache(
		ctx context.Context,
		companyID int64,
		jobs []model.Job,
		ttl time.Duration,
		atsType string,
		crawlDuration time.Duration,
	) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountEntries(ctx context.Context) (total int64, fresh int64, err error)
}

// CrawlLogRepository defines the interface for the append-only fetch log.
type CrawlLogRepository interface {
	Insert(
		ctx context.Context,
		url string,
		status model.CrawlStatus,
		errMsg string,
		responseTime time.Duration,
	) error
	StatsSince(ctx context.Context, since time.Time) ([]model.CrawlLogStats, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubscriptionRepository defines the interface for user subscription operations.
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, userID string, companyID int64) (*model.Subscription, error)
	Unsubscribe(ctx context.Context, userID string, companyID int64) (bool, error)
	CountForCompany(ctx context.Context, companyID int64) (int, error)
}

// QueueRepository surfaces the raw crawl candidates the queue builder ranks.
type QueueRepository interface {
	// SubscribedCandidates returns every company with at least one subscriber.
	SubscribedCandidates(ctx context.Context) ([]model.QueueEntry, error)
	// StaleCandidates returns companies with an expired or missing cache, or
	// whose last crawl is older than maxAge, regardless of subscribers.
	StaleCandidates(ctx context.Context, maxAge time.Duration) ([]model.QueueEntry, error)
}

// CrawlRequestRepository tracks ad-hoc crawl requests through their lifecycle.
type CrawlRequestRepository interface {
	Create(ctx context.Context, targets []model.CrawlRequestTarget) (*model.CrawlRequest, error)
	Get(ctx context.Context, id string) (*model.CrawlRequest, error)
	Update(ctx context.Context, req *model.CrawlRequest) error
	Health(ctx context.Context) error
}

// Crawler executes the smart crawl of a single queue entry.
type Crawler interface {
	Crawl(ctx context.Context, entry model.QueueEntry) model.CrawlResult
}

// QueueBuilder assembles the prioritized, deduplicated crawl queue from the
// candidate set the mode names.
type QueueBuilder interface {
	Build(ctx context.Context, mode model.QueueMode) ([]model.QueueEntry, error)
}
