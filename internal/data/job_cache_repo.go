package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/target/jobwatch/internal/domain/model"
)

// JobCacheRepo provides database operations for the crawl result cache.
// One row per company, refreshed in place on every successful crawl.
type JobCacheRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobCacheRepo creates a new JobCacheRepo instance with the given database connection.
func NewJobCacheRepo(db *sql.DB) *JobCacheRepo {
	return &JobCacheRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewJobCacheRepoWithTimeProvider creates a JobCacheRepo with a custom TimeProvider (useful for testing).
func NewJobCacheRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *JobCacheRepo {
	return &JobCacheRepo{DB: db, timeProvider: tp}
}

const jobCacheColumns = `
  company_id,
  jobs,
  job_count,
  cached_at,
  expires_at,
  ats_type,
  crawl_duration_ms
`

// GetCached returns the company's cache entry only while it is fresh.
// An expired or missing entry returns nil without error; the caller
// falls through to a live crawl.
func (r *JobCacheRepo) GetCached(ctx context.Context, companyID int64) (*model.JobCacheEntry, error) {
	query := `
		SELECT ` + jobCacheColumns + `
		FROM job_cache
		WHERE company_id = $1 AND expires_at > $2
	`

	now := r.timeProvider.Now().UTC()
	entry, err := scanJobCacheEntry(r.DB.QueryRowContext(ctx, query, companyID, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached jobs for company %d: %w", companyID, err)
	}
	return entry, nil
}

// GetEntry returns the cache entry regardless of freshness. The queue builder
// needs expired rows too, to tell "stale" apart from "never cached".
func (r *JobCacheRepo) GetEntry(ctx context.Context, companyID int64) (*model.JobCacheEntry, error) {
	query := `SELECT ` + jobCacheColumns + ` FROM job_cache WHERE company_id = $1`

	entry, err := scanJobCacheEntry(r.DB.QueryRowContext(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cache entry for company %d: %w", companyID, err)
	}
	return entry, nil
}

// UpdateCache writes the crawl result for a company, replacing any previous
// entry. The expiry is now + ttl so every refresh restarts the clock.
func (r *JobCacheRepo) UpdateCache(
	ctx context.Context,
	companyID int64,
	jobs []model.Job,
	ttl time.Duration,
	atsType string,
	crawlDuration time.Duration,
) error {
	if ttl <= 0 {
		return errors.New("cache ttl must be positive")
	}
	if jobs == nil {
		jobs = []model.Job{}
	}

	payload, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("marshal jobs for cache: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	expires := now.Add(ttl)

	var atsArg any
	if atsType != "" {
		atsArg = atsType
	}

	query := `
		INSERT INTO job_cache (
			company_id, jobs, job_count, cached_at, expires_at, ats_type, crawl_duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id) DO UPDATE SET
			jobs = EXCLUDED.jobs,
			job_count = EXCLUDED.job_count,
			cached_at = EXCLUDED.cached_at,
			expires_at = EXCLUDED.expires_at,
			ats_type = COALESCE(EXCLUDED.ats_type, job_cache.ats_type),
			crawl_duration_ms = EXCLUDED.crawl_duration_ms
	`

	_, err = r.DB.ExecContext(ctx, query,
		companyID, payload, len(jobs), now, expires, atsArg, crawlDuration.Milliseconds())
	if err != nil {
		return fmt.Errorf("update job cache for company %d: %w", companyID, err)
	}
	return nil
}

// DeleteExpiredBefore removes cache rows whose expiry is older than the cutoff.
// Recently expired rows are kept so the queue builder can still prioritize them.
func (r *JobCacheRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM job_cache WHERE expires_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted cache entries: %w", err)
	}
	return affected, nil
}

// CountEntries returns total and fresh cache entry counts for stats reporting.
func (r *JobCacheRepo) CountEntries(ctx context.Context) (total int64, fresh int64, err error) {
	now := r.timeProvider.Now().UTC()
	err = r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE expires_at > $1)
		FROM job_cache
	`, now).Scan(&total, &fresh)
	if err != nil {
		return 0, 0, fmt.Errorf("count cache entries: %w", err)
	}
	return total, fresh, nil
}

func scanJobCacheEntry(row *sql.Row) (*model.JobCacheEntry, error) {
	var e model.JobCacheEntry
	var atsType sql.NullString
	var duration sql.NullInt64

	err := row.Scan(&e.CompanyID, &e.Jobs, &e.JobCount, &e.CachedAt, &e.ExpiresAt, &atsType, &duration)
	if err != nil {
		return nil, err
	}
	if atsType.Valid {
		e.ATSType = &atsType.String
	}
	if duration.Valid {
		d := duration.Int64
		e.CrawlDurationMs = &d
	}
	return &e, nil
}
