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

// CrawlLogRepo records the outcome of every fetch attempt. The log is
// advisory; callers treat insert failures as non-fatal.
type CrawlLogRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCrawlLogRepo creates a new CrawlLogRepo instance with the given database connection.
func NewCrawlLogRepo(db *sql.DB) *CrawlLogRepo {
	return &CrawlLogRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewCrawlLogRepoWithTimeProvider creates a CrawlLogRepo with a custom TimeProvider (useful for testing).
func NewCrawlLogRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CrawlLogRepo {
	return &CrawlLogRepo{DB: db, timeProvider: tp}
}

// Insert appends one crawl log row. errMsg and responseTime are optional;
// a zero responseTime is stored as NULL.
func (r *CrawlLogRepo) Insert(
	ctx context.Context,
	url string,
	status model.CrawlStatus,
	errMsg string,
	responseTime time.Duration,
) error {
	var msgArg any
	if errMsg != "" {
		msgArg = errMsg
	}
	var rtArg any
	if responseTime > 0 {
		rtArg = responseTime.Milliseconds()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO crawl_logs (url, status, error_message, response_time_ms, crawled_at)
		VALUES ($1, $2, $3, $4, $5)
	`, url, string(status), msgArg, rtArg, r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert crawl log: %w", err)
	}
	return nil
}

// StatsSince aggregates log rows newer than the cutoff into per-status counts
// and average response times, most frequent status first.
func (r *CrawlLogRepo) StatsSince(ctx context.Context, since time.Time) ([]model.CrawlLogStats, error) {
	query := `
		SELECT
			status,
			COUNT(*) AS count,
			COALESCE(AVG(response_time_ms), 0) AS avg_response_time_ms
		FROM crawl_logs
		WHERE crawled_at >= $1
		GROUP BY status
		ORDER BY count DESC
	`

	var stats []model.CrawlLogStats
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, since.UTC())
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		collected, collectErr := pgx.CollectRows(rows, pgx.RowToStructByName[model.CrawlLogStats])
		if collectErr != nil {
			return collectErr
		}
		stats = collected
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate crawl log stats: %w", err)
	}
	return stats, nil
}

// DeleteBefore prunes log rows older than the cutoff.
func (r *CrawlLogRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM crawl_logs WHERE crawled_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old crawl logs: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted crawl logs: %w", err)
	}
	return affected, nil
}
