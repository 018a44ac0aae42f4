package model

import (
	"encoding/json"
	"time"
)

// JobCacheEntry is the freshness-bounded snapshot of a company's postings.
// One row per company; reads return content only while ExpiresAt is in the future.
type JobCacheEntry struct {
	CompanyID       int64           `json:"company_id"        db:"company_id"`
	Jobs            json.RawMessage `json:"jobs"              db:"jobs"`
	JobCount        int             `json:"job_count"         db:"job_count"`
	CachedAt        time.Time       `json:"cached_at"         db:"cached_at"`
	ExpiresAt       time.Time       `json:"expires_at"        db:"expires_at"`
	ATSType         *string         `json:"ats_type"          db:"ats_type"`
	CrawlDurationMs *int64          `json:"crawl_duration_ms" db:"crawl_duration_ms"`
}

// Fresh reports whether the entry may still be served at the given instant.
func (e *JobCacheEntry) Fresh(now time.Time) bool {
	return e != nil && e.ExpiresAt.After(now)
}

// DecodeJobs unmarshals the serialised job list.
func (e *JobCacheEntry) DecodeJobs() ([]Job, error) {
	if len(e.Jobs) == 0 {
		return nil, nil
	}
	var jobs []Job
	if err := json.Unmarshal(e.Jobs, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
