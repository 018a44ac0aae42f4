package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/target/jobwatch/internal/core"
	"github.com/target/jobwatch/internal/crawler/htmlparse"
	"github.com/target/jobwatch/internal/domain/model"
	apperrors "github.com/target/jobwatch/internal/errors"
)

// FilteredCrawler crawls one entry with an optional posting filter.
// Implemented by CrawlService.
type FilteredCrawler interface {
	CrawlFiltered(ctx context.Context, entry model.QueueEntry, filter *htmlparse.Filter) model.CrawlResult
}

// CareerPageFinder resolves a company name to its career page URL, for
// targets submitted without one.
type CareerPageFinder interface {
	Discover(ctx context.Context, name string) (string, error)
}

// CrawlRequestServiceOptions groups dependencies for CrawlRequestService.
type CrawlRequestServiceOptions struct {
	Requests  core.CrawlRequestRepository
	Companies core.CompanyRepository
	Crawler   FilteredCrawler
	// Finder is optional; without one, every target must carry a URL.
	Finder CareerPageFinder
	Logger *slog.Logger
}

// CrawlRequestService tracks ad-hoc crawl requests: accept targets, run them
// outside the scheduled sweep, and expose status for polling.
type CrawlRequestService struct {
	requests  core.CrawlRequestRepository
	companies core.CompanyRepository
	crawler   FilteredCrawler
	finder    CareerPageFinder
	logger    *slog.Logger
}

// NewCrawlRequestService constructs a new CrawlRequestService.
func NewCrawlRequestService(opts CrawlRequestServiceOptions) *CrawlRequestService {
	if opts.Requests == nil {
		panic("CrawlRequestRepository is required")
	}
	if opts.Companies == nil {
		panic("CompanyRepository is required")
	}
	if opts.Crawler == nil {
		panic("FilteredCrawler is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CrawlRequestService{
		requests:  opts.Requests,
		companies: opts.Companies,
		crawler:   opts.Crawler,
		finder:    opts.Finder,
		logger:    opts.Logger,
	}
}

// Submit validates and registers a new crawl request in the queued state.
// Every target needs a name; the career page URL may be omitted when a
// CareerPageFinder is configured to resolve it during the run.
func (s *CrawlRequestService) Submit(
	ctx context.Context,
	targets []model.CrawlRequestTarget,
) (*model.CrawlRequest, error) {
	if len(targets) == 0 {
		return nil, apperrors.Validationf("at least one crawl target is required")
	}
	for i, t := range targets {
		if strings.TrimSpace(t.Name) == "" {
			return nil, apperrors.Validationf("target %d: company name is required", i)
		}
		if strings.TrimSpace(t.URL) == "" && s.finder == nil {
			return nil, apperrors.Validationf(
				"target %q: career page url is required (no discovery configured)", t.Name)
		}
	}

	req, err := s.requests.Create(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("create crawl request: %w", err)
	}

	s.logger.Info("crawl request accepted", "request_id", req.ID, "targets", len(targets))
	return req, nil
}

// Status returns the tracked request, or ErrCrawlRequestNotFound.
func (s *CrawlRequestService) Status(ctx context.Context, id string) (*model.CrawlRequest, error) {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get crawl request: %w", err)
	}
	if req == nil {
		return nil, apperrors.NotFoundf("crawl request %s not found", id)
	}
	return req, nil
}

// Run executes a queued request: each target's company is upserted and
// crawled in turn, with progress persisted after every company so pollers
// see partial results. Per-company failures land in that company's result;
// only infrastructure failures fail the request itself.
func (s *CrawlRequestService) Run(ctx context.Context, id string, filter *htmlparse.Filter) error {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load crawl request: %w", err)
	}
	if req == nil {
		return apperrors.NotFoundf("crawl request %s not found", id)
	}

	req.Status = model.CrawlRequestRunning
	if err := s.requests.Update(ctx, req); err != nil {
		return fmt.Errorf("mark request running: %w", err)
	}

	for _, target := range req.Targets {
		result := s.crawlTarget(ctx, target, filter)
		req.Results = append(req.Results, result)

		if err := s.requests.Update(ctx, req); err != nil {
			req.Status = model.CrawlRequestFailed
			req.Error = err.Error()
			return fmt.Errorf("persist request progress: %w", err)
		}
		if ctx.Err() != nil {
			req.Status = model.CrawlRequestFailed
			req.Error = ctx.Err().Error()
			_ = s.requests.Update(ctx, req)
			return ctx.Err()
		}
	}

	req.Status = model.CrawlRequestCompleted
	if err := s.requests.Update(ctx, req); err != nil {
		return fmt.Errorf("mark request completed: %w", err)
	}

	summary := req.Summarize()
	s.logger.Info("crawl request completed",
		"request_id", req.ID,
		"companies", summary.Companies,
		"succeeded", summary.Succeeded,
		"jobs_inserted", summary.JobsInserted)
	return nil
}

func (s *CrawlRequestService) crawlTarget(
	ctx context.Context,
	target model.CrawlRequestTarget,
	filter *htmlparse.Filter,
) model.CrawlResult {
	careerURL := strings.TrimSpace(target.URL)
	if careerURL == "" {
		if s.finder == nil {
			result := model.CrawlResult{CompanyName: target.Name}
			result.AddError("no career page url and no discovery configured")
			return result
		}
		discovered, err := s.finder.Discover(ctx, target.Name)
		if err != nil {
			result := model.CrawlResult{CompanyName: target.Name}
			result.AddError(fmt.Sprintf("discover career page: %v", err))
			return result
		}
		careerURL = discovered
		s.logger.Info("career page discovered", "company", target.Name, "url", careerURL)
	}

	company, err := s.companies.UpsertByCareerURL(ctx, &model.UpsertCompanyRequest{
		Name:          target.Name,
		CareerPageURL: careerURL,
	})
	if err != nil {
		result := model.CrawlResult{CompanyName: target.Name}
		result.AddError(fmt.Sprintf("register company: %v", err))
		return result
	}

	entry := model.QueueEntry{
		CompanyID:     company.ID,
		CompanyName:   company.Name,
		CareerPageURL: company.CareerPageURL,
		ATSType:       company.ATSType,
	}
	return s.crawler.CrawlFiltered(ctx, entry, filter)
}
