package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/crawler/detect"
	"github.com/target/jobwatch/internal/crawler/htmlparse"
	"github.com/target/jobwatch/internal/crawler/providers"
	"github.com/target/jobwatch/internal/domain/model"
)

// PageFetcher fetches a page body through the rate-gated HTTP client.
// Implemented by fetch.Client.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// ProviderCatalog resolves ATS providers for career URLs.
// Implemented by providers.Registry.
type ProviderCatalog interface {
	ForURL(careerURL string) providers.Provider
}

// CrawlRepos groups the repositories the crawl writes through.
type CrawlRepos struct {
	Companies core.CompanyRepository
	Jobs      core.JobRepository
	Cache     core.JobCacheRepository
}

// CrawlTools groups the crawl's outbound dependencies.
type CrawlTools struct {
	Providers ProviderCatalog
	Fetcher   PageFetcher
}

// CrawlConfig holds tuning for a single company crawl.
type CrawlConfig struct {
	// CacheTTL is how long a crawl result stays servable.
	CacheTTL time.Duration `json:"cache_ttl"`
}

// DefaultCrawlConfig returns a CrawlConfig with sensible defaults.
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{CacheTTL: 24 * time.Hour}
}

// CrawlServiceOptions groups dependencies for CrawlService.
type CrawlServiceOptions struct {
	Repos  CrawlRepos
	Tools  CrawlTools
	Config CrawlConfig
	Logger *slog.Logger
}

// CrawlService runs the smart crawl for one company at a time: probe the
// cache, try the structured ATS API, fall back to scraping the career page.
// Failures accumulate on the result instead of aborting the crawl.
type CrawlService struct {
	companies core.CompanyRepository
	jobs      core.JobRepository
	cache     core.JobCacheRepository
	catalog   ProviderCatalog
	fetcher   PageFetcher
	cfg       CrawlConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewCrawlService constructs a new CrawlService.
func NewCrawlService(opts CrawlServiceOptions) *CrawlService {
	if opts.Repos.Companies == nil {
		panic("CompanyRepository is required")
	}
	if opts.Repos.Jobs == nil {
		panic("JobRepository is required")
	}
	if opts.Repos.Cache == nil {
		panic("JobCacheRepository is required")
	}
	if opts.Tools.Fetcher == nil {
		panic("PageFetcher is required")
	}
	if opts.Config.CacheTTL <= 0 {
		opts.Config.CacheTTL = DefaultCrawlConfig().CacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CrawlService{
		companies: opts.Repos.Companies,
		jobs:      opts.Repos.Jobs,
		cache:     opts.Repos.Cache,
		catalog:   opts.Tools.Providers,
		fetcher:   opts.Tools.Fetcher,
		cfg:       opts.Config,
		logger:    opts.Logger,
		now:       time.Now,
	}
}

// Crawl runs the smart crawl for one queue entry.
func (s *CrawlService) Crawl(ctx context.Context, entry model.QueueEntry) model.CrawlResult {
	return s.CrawlFiltered(ctx, entry, nil)
}

// CrawlFiltered runs the smart crawl, keeping only postings the filter
// accepts on the scraping path. A nil filter keeps everything. Provider APIs
// return complete boards, so the filter does not apply there.
func (s *CrawlService) CrawlFiltered(
	ctx context.Context,
	entry model.QueueEntry,
	filter *htmlparse.Filter,
) model.CrawlResult {
	start := s.now()
	result := model.CrawlResult{
		CompanyID:   entry.CompanyID,
		CompanyName: entry.CompanyName,
	}

	cached, err := s.cache.GetCached(ctx, entry.CompanyID)
	if err != nil {
		result.AddError(fmt.Sprintf("cache probe: %v", err))
	} else if cached != nil {
		result.Success = true
		result.CacheHit = true
		result.Method = model.MethodCache
		result.JobsFound = cached.JobCount
		result.JobsInserted = cached.JobCount
		result.DurationMs = s.sinceMs(start)
		s.logger.Info("cache hit",
			"company", entry.CompanyName, "jobs", cached.JobCount)
		return result
	}

	if s.catalog != nil {
		if p := s.catalog.ForURL(entry.CareerPageURL); p != nil {
			if s.crawlAPI(ctx, p, entry, &result, start) {
				result.DurationMs = s.sinceMs(start)
				return result
			}
		}
	}

	s.logger.Info("falling back to page scraping", "company", entry.CompanyName)
	s.crawlHTML(ctx, entry, filter, &result, start)
	result.DurationMs = s.sinceMs(start)
	return result
}

// crawlAPI pulls the board through a hosted ATS API. Returns false when the
// crawl should fall through to scraping.
func (s *CrawlService) crawlAPI(
	ctx context.Context,
	p providers.Provider,
	entry model.QueueEntry,
	result *model.CrawlResult,
	start time.Time,
) bool {
	slug := p.Slug(entry.CareerPageURL)
	if slug == "" {
		result.AddError(fmt.Sprintf("%s url has no board slug: %s", p.Name(), entry.CareerPageURL))
		return false
	}

	s.logger.Info("trying ATS API", "provider", p.Name(), "company", entry.CompanyName)
	jobs, err := p.FetchJobs(ctx, slug)
	if err != nil {
		result.AddError(fmt.Sprintf("%s api: %v", p.Name(), err))
		return false
	}
	if len(jobs) == 0 {
		return false
	}

	result.Method = model.MethodAPIPrefix + p.Name()
	result.JobsFound = len(jobs)
	result.Success = true

	for i := range jobs {
		jobs[i].CompanyID = entry.CompanyID
		if _, _, upsertErr := s.jobs.Upsert(ctx, &jobs[i]); upsertErr != nil {
			result.AddError(fmt.Sprintf("store %q: %v", jobs[i].Title, upsertErr))
			continue
		}
		result.JobsInserted++
	}

	if cacheErr := s.cache.UpdateCache(
		ctx, entry.CompanyID, jobs, s.cfg.CacheTTL, p.Name(), s.now().Sub(start),
	); cacheErr != nil {
		result.AddError(fmt.Sprintf("update cache: %v", cacheErr))
	}
	if touchErr := s.companies.TouchCrawled(ctx, entry.CompanyID, p.Name()); touchErr != nil {
		result.AddError(fmt.Sprintf("touch company: %v", touchErr))
	}

	s.logger.Info("crawled via ATS API",
		"company", entry.CompanyName,
		"provider", p.Name(),
		"jobs", len(jobs))
	return true
}

// crawlHTML scrapes the career page: collect posting links, parse each
// posting, deactivate whatever the page no longer lists.
func (s *CrawlService) crawlHTML(
	ctx context.Context,
	entry model.QueueEntry,
	filter *htmlparse.Filter,
	result *model.CrawlResult,
	start time.Time,
) {
	result.Method = model.MethodHTML

	body, err := s.fetcher.Get(ctx, entry.CareerPageURL)
	if err != nil || body == nil {
		result.AddError(fmt.Sprintf("fetch career page %s: %v", entry.CareerPageURL, err))
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		result.AddError(fmt.Sprintf("parse career page: %v", err))
		return
	}

	ats, confidence := detect.Detect(entry.CareerPageURL, doc)
	s.logger.Info("detected ATS",
		"company", entry.CompanyName, "ats", ats, "confidence", confidence)

	links := htmlparse.JobLinks(doc, entry.CareerPageURL)
	if len(links) == 0 {
		// An empty board is still a successful crawl.
		s.logger.Warn("no posting links found", "company", entry.CompanyName)
		result.Success = true
		return
	}
	result.JobsFound = len(links)

	var freshIDs []int64
	for _, link := range links {
		job := s.scrapePosting(ctx, link, result)
		if job == nil {
			continue
		}
		if filter != nil && !filter.Matches(job) {
			continue
		}
		job.CompanyID = entry.CompanyID
		id, _, upsertErr := s.jobs.Upsert(ctx, job)
		if upsertErr != nil {
			result.AddError(fmt.Sprintf("store %q: %v", job.Title, upsertErr))
			continue
		}
		freshIDs = append(freshIDs, id)
		result.JobsInserted++
	}

	if len(freshIDs) > 0 {
		if _, staleErr := s.jobs.MarkInactiveExcept(ctx, entry.CompanyID, freshIDs); staleErr != nil {
			result.AddError(fmt.Sprintf("deactivate removed postings: %v", staleErr))
		}
	}
	if touchErr := s.companies.TouchCrawled(ctx, entry.CompanyID, ats); touchErr != nil {
		result.AddError(fmt.Sprintf("touch company: %v", touchErr))
	}
	result.Success = true

	// The cache entry's expiry must advance even when nothing new parsed;
	// a still-expired entry would put the company back in every stale sweep.
	active, listErr := s.jobs.ActiveByCompany(ctx, entry.CompanyID)
	if listErr != nil {
		result.AddError(fmt.Sprintf("list active postings: %v", listErr))
		return
	}
	if cacheErr := s.cache.UpdateCache(
		ctx, entry.CompanyID, active, s.cfg.CacheTTL, model.MethodHTML, s.now().Sub(start),
	); cacheErr != nil {
		result.AddError(fmt.Sprintf("update cache: %v", cacheErr))
	}

	s.logger.Info("scraped career page",
		"company", entry.CompanyName,
		"links", len(links),
		"inserted", result.JobsInserted)
}

func (s *CrawlService) scrapePosting(
	ctx context.Context,
	link string,
	result *model.CrawlResult,
) *model.Job {
	body, err := s.fetcher.Get(ctx, link)
	if err != nil || body == nil {
		result.AddError(fmt.Sprintf("fetch posting %s: %v", link, err))
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		result.AddError(fmt.Sprintf("parse posting %s: %v", link, err))
		return nil
	}
	job := htmlparse.ParseJob(doc, link)
	if job == nil {
		s.logger.Debug("posting page had no parsable title", "url", link)
	}
	return job
}

func (s *CrawlService) sinceMs(start time.Time) int64 {
	return s.now().Sub(start).Milliseconds()
}
