package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/target/jobwatch/internal/data/pgxutil"
	"github.com/target/jobwatch/internal/domain/model"
)

// QueueRepo aggregates companies, subscriptions and cache state into crawl
// queue candidates. Priority assignment happens in the service layer; this
// repo only surfaces the raw signals.
type QueueRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewQueueRepo creates a new QueueRepo instance with the given database connection.
func NewQueueRepo(db *sql.DB) *QueueRepo {
	return &QueueRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewQueueRepoWithTimeProvider creates a QueueRepo with a custom TimeProvider (useful for testing).
func NewQueueRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *QueueRepo {
	return &QueueRepo{DB: db, timeProvider: tp}
}

// SubscribedCandidates returns every company with at least one subscriber,
// joined with its cache expiry. Most subscribed first, then least recently
// crawled; never-crawled companies sort ahead of crawled ones.
func (r *QueueRepo) SubscribedCandidates(ctx context.Context) ([]model.QueueEntry, error) {
	query := `
		SELECT
			c.company_id,
			c.company_name,
			c.career_page_url,
			c.ats_type,
			c.last_crawled,
			COUNT(DISTINCT s.user_id) AS subscriber_count,
			jc.expires_at AS cache_expires_at
		FROM companies c
		JOIN company_subscriptions s ON s.company_id = c.company_id
		LEFT JOIN job_cache jc ON jc.company_id = c.company_id
		GROUP BY c.company_id, c.company_name, c.career_page_url, c.ats_type,
		         c.last_crawled, jc.expires_at
		HAVING COUNT(DISTINCT s.user_id) > 0
		ORDER BY subscriber_count DESC, c.last_crawled ASC NULLS FIRST
	`

	entries, err := r.collectQueueRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query subscribed candidates: %w", err)
	}
	return entries, nil
}

// StaleCandidates returns companies whose cache is expired or missing, or
// that have not been crawled within maxAge, regardless of subscribers.
// Subscriber counts come from a subquery so zero-subscriber companies still
// appear with a count of 0.
func (r *QueueRepo) StaleCandidates(ctx context.Context, maxAge time.Duration) ([]model.QueueEntry, error) {
	query := `
		SELECT
			c.company_id,
			c.company_name,
			c.career_page_url,
			c.ats_type,
			c.last_crawled,
			COALESCE(sub.subscriber_count, 0) AS subscriber_count,
			jc.expires_at AS cache_expires_at
		FROM companies c
		LEFT JOIN (
			SELECT company_id, COUNT(DISTINCT user_id) AS subscriber_count
			FROM company_subscriptions
			GROUP BY company_id
		) sub ON sub.company_id = c.company_id
		LEFT JOIN job_cache jc ON jc.company_id = c.company_id
		WHERE jc.expires_at IS NULL
		   OR jc.expires_at < $1
		   OR c.last_crawled IS NULL
		   OR c.last_crawled < $2
		ORDER BY subscriber_count DESC, c.last_crawled ASC NULLS FIRST
	`

	now := r.timeProvider.Now().UTC()
	entries, err := r.collectQueueRows(ctx, query, now, now.Add(-maxAge))
	if err != nil {
		return nil, fmt.Errorf("query stale candidates: %w", err)
	}
	return entries, nil
}

func (r *QueueRepo) collectQueueRows(
	ctx context.Context,
	query string,
	args ...any,
) ([]model.QueueEntry, error) {
	var entries []model.QueueEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		collected, collectErr := pgx.CollectRows(rows, rowToQueueEntry)
		if collectErr != nil {
			return collectErr
		}
		entries = collected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// queueRow matches the candidate queries so pgx.RowToStructByName can scan it.
type queueRow struct {
	CompanyID       int64          `db:"company_id"`
	CompanyName     string         `db:"company_name"`
	CareerPageURL   string         `db:"career_page_url"`
	ATSType         sql.NullString `db:"ats_type"`
	LastCrawled     sql.NullTime   `db:"last_crawled"`
	SubscriberCount int64          `db:"subscriber_count"`
	CacheExpiresAt  sql.NullTime   `db:"cache_expires_at"`
}

func rowToQueueEntry(row pgx.CollectableRow) (model.QueueEntry, error) {
	dbRow, err := pgx.RowToStructByName[queueRow](row)
	if err != nil {
		return model.QueueEntry{}, fmt.Errorf("scan queue row: %w", err)
	}

	entry := model.QueueEntry{
		CompanyID:       dbRow.CompanyID,
		CompanyName:     dbRow.CompanyName,
		CareerPageURL:   dbRow.CareerPageURL,
		SubscriberCount: dbRow.SubscriberCount,
	}
	if dbRow.ATSType.Valid {
		entry.ATSType = &dbRow.ATSType.String
	}
	if dbRow.LastCrawled.Valid {
		t := dbRow.LastCrawled.Time
		entry.LastCrawled = &t
	}
	if dbRow.CacheExpiresAt.Valid {
		t := dbRow.CacheExpiresAt.Time
		entry.CacheExpiresAt = &t
	}
	return entry, nil
}
