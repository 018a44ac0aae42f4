package model

import (
	"fmt"
	"time"
)

// CrawlStatus tags the outcome of a single HTTP fetch attempt.
type CrawlStatus string

const (
	// CrawlStatusSuccess indicates a 200 response with a usable body.
	CrawlStatusSuccess CrawlStatus = "success"
	// CrawlStatusRateLimited indicates the origin answered 429.
	CrawlStatusRateLimited CrawlStatus = "rate_limited"
	// CrawlStatusAccessDenied indicates the origin answered 401 or 403.
	CrawlStatusAccessDenied CrawlStatus = "access_denied"
	// CrawlStatusTimeout indicates the request exceeded its deadline.
	CrawlStatusTimeout CrawlStatus = "timeout"
	// CrawlStatusClientError indicates a transport-level failure.
	CrawlStatusClientError CrawlStatus = "client_error"
	// CrawlStatusError indicates an unclassified failure.
	CrawlStatusError CrawlStatus = "error"
)

// CrawlStatusHTTP tags any other HTTP status, e.g. "http_500".
func CrawlStatusHTTP(code int) CrawlStatus {
	return CrawlStatus(fmt.Sprintf("http_%d", code))
}

// CrawlLog is one append-only record of a fetch attempt.
type CrawlLog struct {
	ID             int64       `json:"log_id"           db:"log_id"`
	URL            string      `json:"url"              db:"url"`
	Status         CrawlStatus `json:"status"           db:"status"`
	ErrorMessage   *string     `json:"error_message"    db:"error_message"`
	ResponseTimeMs *int64      `json:"response_time_ms" db:"response_time_ms"`
	CrawledAt      time.Time   `json:"crawled_at"       db:"crawled_at"`
}

// CrawlLogStats aggregates crawl_logs over a window, per status.
type CrawlLogStats struct {
	Status            CrawlStatus `json:"status"               db:"status"`
	Count             int64       `json:"count"                db:"count"`
	AvgResponseTimeMs float64     `json:"avg_response_time_ms" db:"avg_response_time_ms"`
}
