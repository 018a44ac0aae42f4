package model

import "time"

// CrawlRequestStatus tracks an ad-hoc crawl request through its lifecycle.
type CrawlRequestStatus string

const (
	// CrawlRequestQueued indicates the request is accepted but not yet running.
	CrawlRequestQueued CrawlRequestStatus = "queued"
	// CrawlRequestRunning indicates workers are crawling the requested companies.
	CrawlRequestRunning CrawlRequestStatus = "running"
	// CrawlRequestCompleted indicates all companies finished.
	CrawlRequestCompleted CrawlRequestStatus = "completed"
	// CrawlRequestFailed indicates the request aborted before finishing.
	CrawlRequestFailed CrawlRequestStatus = "failed"
)

// Valid returns true if the status is one of the lifecycle states.
func (s CrawlRequestStatus) Valid() bool {
	switch s {
	case CrawlRequestQueued, CrawlRequestRunning, CrawlRequestCompleted, CrawlRequestFailed:
		return true
	default:
		return false
	}
}

// CrawlRequestTarget names one company to crawl; URL is optional when the
// company is already known by name.
type CrawlRequestTarget struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// CrawlRequest is the tracked state of an ad-hoc crawl, persisted with a TTL.
type CrawlRequest struct {
	ID        string               `json:"id"`
	Status    CrawlRequestStatus   `json:"status"`
	Targets   []CrawlRequestTarget `json:"targets"`
	Results   []CrawlResult        `json:"results,omitempty"`
	Error     string               `json:"error,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Summary rolls up per-company results for status polling.
type CrawlRequestSummary struct {
	Companies    int `json:"companies"`
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`
	JobsFound    int `json:"jobs_found"`
	JobsInserted int `json:"jobs_inserted"`
}

// Summarize computes the roll-up over accumulated results.
func (r *CrawlRequest) Summarize() CrawlRequestSummary {
	s := CrawlRequestSummary{Companies: len(r.Targets)}
	for i := range r.Results {
		res := &r.Results[i]
		if res.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
		s.JobsFound += res.JobsFound
		s.JobsInserted += res.JobsInserted
	}
	return s
}
