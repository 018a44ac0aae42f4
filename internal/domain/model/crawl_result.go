package model

// Crawl method tags recorded on per-company results.
const (
	// MethodCache marks a result served straight from the cache probe.
	MethodCache = "cache"
	// MethodHTML marks a result produced by the career-page HTML fallback.
	MethodHTML = "html"
	// MethodAPIPrefix prefixes provider-backed results, e.g. "api:greenhouse".
	MethodAPIPrefix = "api:"
)

// CrawlResult is the outcome of a smart crawl of one company.
// Workers never escalate failures; they accumulate them in Errors.
type CrawlResult struct {
	CompanyID    int64    `json:"company_id"`
	CompanyName  string   `json:"company_name"`
	Success      bool     `json:"success"`
	JobsFound    int      `json:"jobs_found"`
	JobsInserted int      `json:"jobs_inserted"`
	Method       string   `json:"method"`
	CacheHit     bool     `json:"cache_hit"`
	DurationMs   int64    `json:"duration_ms"`
	Errors       []string `json:"errors,omitempty"`
}

// AddError records a failure without failing the crawl as a whole.
func (r *CrawlResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}
