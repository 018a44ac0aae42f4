package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/target/jobwatch/internal/crawler/htmlparse"
	"github.com/target/jobwatch/internal/crawler/providers"
	"github.com/target/jobwatch/internal/domain/model"
)

// fakeQueueRepo serves canned candidate sets.
type fakeQueueRepo struct {
	subscribed []model.QueueEntry
	stale      []model.QueueEntry
	err        error
}

func (f *fakeQueueRepo) SubscribedCandidates(context.Context) ([]model.QueueEntry, error) {
	return f.subscribed, f.err
}

func (f *fakeQueueRepo) StaleCandidates(context.Context, time.Duration) ([]model.QueueEntry, error) {
	return f.stale, f.err
}

// fakeCompanyRepo records touches and serves upserts from a map keyed by URL.
type fakeCompanyRepo struct {
	companies map[string]*model.Company
	nextID    int64
	touched   map[int64]string
	upsertErr error
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{
		companies: make(map[string]*model.Company),
		touched:   make(map[int64]string),
	}
}

func (f *fakeCompanyRepo) UpsertByCareerURL(
	_ context.Context,
	req *model.UpsertCompanyRequest,
) (*model.Company, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if c, ok := f.companies[req.CareerPageURL]; ok {
		c.Name = req.Name
		return c, nil
	}
	f.nextID++
	c := &model.Company{
		ID:            f.nextID,
		Name:          req.Name,
		CareerPageURL: req.CareerPageURL,
		ATSType:       req.ATSType,
	}
	f.companies[req.CareerPageURL] = c
	return c, nil
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*model.Company, error) {
	for _, c := range f.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCompanyRepo) GetByCareerURL(_ context.Context, url string) (*model.Company, error) {
	return f.companies[url], nil
}

func (f *fakeCompanyRepo) TouchCrawled(_ context.Context, id int64, atsType string) error {
	f.touched[id] = atsType
	return nil
}

// fakeJobRepo stores postings in memory keyed by (company, title, location).
type fakeJobRepo struct {
	jobs      map[string]*model.Job
	nextID    int64
	inactive  map[int64][]int64 // company -> freshIDs passed to MarkInactiveExcept
	upsertErr error
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:     make(map[string]*model.Job),
		inactive: make(map[int64][]int64),
	}
}

func jobKey(j *model.Job) string {
	return fmt.Sprintf("%d|%s|%s", j.CompanyID, j.Title, j.Location)
}

func (f *fakeJobRepo) Upsert(_ context.Context, job *model.Job) (int64, bool, error) {
	if f.upsertErr != nil {
		return 0, false, f.upsertErr
	}
	key := jobKey(job)
	if existing, ok := f.jobs[key]; ok {
		existing.Description = job.Description
		existing.IsActive = true
		job.ID = existing.ID
		return existing.ID, false, nil
	}
	f.nextID++
	job.ID = f.nextID
	job.IsActive = true
	stored := *job
	f.jobs[key] = &stored
	return job.ID, true, nil
}

func (f *fakeJobRepo) MarkInactiveExcept(
	_ context.Context,
	companyID int64,
	freshIDs []int64,
) (int64, error) {
	f.inactive[companyID] = freshIDs
	keep := make(map[int64]bool, len(freshIDs))
	for _, id := range freshIDs {
		keep[id] = true
	}
	var n int64
	for _, j := range f.jobs {
		if j.CompanyID == companyID && j.IsActive && !keep[j.ID] {
			j.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeJobRepo) ActiveByCompany(_ context.Context, companyID int64) ([]model.Job, error) {
	var out []model.Job
	for _, j := range f.jobs {
		if j.CompanyID == companyID && j.IsActive {
			out = append(out, *j)
		}
	}
	return out, nil
}

// fakeCacheRepo is an in-memory JobCacheRepository with a controllable clock.
type fakeCacheRepo struct {
	entries map[int64]*model.JobCacheEntry
	now     time.Time
	getErr  error
}

func newFakeCacheRepo(now time.Time) *fakeCacheRepo {
	return &fakeCacheRepo{
		entries: make(map[int64]*model.JobCacheEntry),
		now:     now,
	}
}

func (f *fakeCacheRepo) GetCached(_ context.Context, companyID int64) (*model.JobCacheEntry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	entry := f.entries[companyID]
	if !entry.Fresh(f.now) {
		return nil, nil
	}
	return entry, nil
}

func (f *fakeCacheRepo) GetEntry(_ context.Context, companyID int64) (*model.JobCacheEntry, error) {
	return f.entries[companyID], nil
}

func (f *fakeCacheRepo) UpdateCache(
	_ context.Context,
	companyID int64,
	jobs []model.Job,
	ttl time.Duration,
	atsType string,
	crawlDuration time.Duration,
) error {
	var ats *string
	if atsType != "" {
		ats = &atsType
	}
	ms := crawlDuration.Milliseconds()
	f.entries[companyID] = &model.JobCacheEntry{
		CompanyID:       companyID,
		JobCount:        len(jobs),
		CachedAt:        f.now,
		ExpiresAt:       f.now.Add(ttl),
		ATSType:         ats,
		CrawlDurationMs: &ms,
	}
	return nil
}

func (f *fakeCacheRepo) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, e := range f.entries {
		if e.ExpiresAt.Before(cutoff) {
			delete(f.entries, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeCacheRepo) CountEntries(context.Context) (int64, int64, error) {
	var total, fresh int64
	for _, e := range f.entries {
		total++
		if e.Fresh(f.now) {
			fresh++
		}
	}
	return total, fresh, nil
}

// fakeLogRepo records inserted crawl logs and serves canned stats.
type fakeLogRepo struct {
	stats       []model.CrawlLogStats
	deleted     []time.Time
	deleteCount int64
}

func (f *fakeLogRepo) Insert(
	context.Context, string, model.CrawlStatus, string, time.Duration,
) error {
	return nil
}

func (f *fakeLogRepo) StatsSince(context.Context, time.Time) ([]model.CrawlLogStats, error) {
	return f.stats, nil
}

func (f *fakeLogRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.deleted = append(f.deleted, cutoff)
	return f.deleteCount, nil
}

// fakeFetcher serves bodies from a URL map; missing URLs fail.
type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Get(_ context.Context, rawURL string) ([]byte, error) {
	f.calls = append(f.calls, rawURL)
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("fetch failed")
	}
	return []byte(body), nil
}

// fakeProvider is a canned ATS provider.
type fakeProvider struct {
	name string
	host string
	jobs []model.Job
	err  error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Matches(careerURL string) bool {
	return p.host != "" && strings.Contains(careerURL, p.host)
}

func (p *fakeProvider) Slug(careerURL string) string {
	if !p.Matches(careerURL) {
		return ""
	}
	return "acme"
}

func (p *fakeProvider) FetchJobs(context.Context, string) ([]model.Job, error) {
	return p.jobs, p.err
}

// fakeCatalog resolves a single fake provider.
type fakeCatalog struct {
	provider *fakeProvider
}

func (c *fakeCatalog) ForURL(careerURL string) providers.Provider {
	if c.provider != nil && c.provider.Matches(careerURL) {
		return c.provider
	}
	return nil
}

// fakeRequestRepo is an in-memory CrawlRequestRepository.
type fakeRequestRepo struct {
	requests  map[string]*model.CrawlRequest
	nextID    int
	updateErr error
	updates   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*model.CrawlRequest)}
}

func (f *fakeRequestRepo) Create(
	_ context.Context,
	targets []model.CrawlRequestTarget,
) (*model.CrawlRequest, error) {
	f.nextID++
	req := &model.CrawlRequest{
		ID:      fmt.Sprintf("req-%d", f.nextID),
		Status:  model.CrawlRequestQueued,
		Targets: targets,
	}
	stored := *req
	f.requests[req.ID] = &stored
	return req, nil
}

func (f *fakeRequestRepo) Get(_ context.Context, id string) (*model.CrawlRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, req *model.CrawlRequest) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeRequestRepo) Health(context.Context) error { return nil }

// recordingCrawler returns canned results and records the entries it saw.
type recordingCrawler struct {
	results map[int64]model.CrawlResult
	entries []model.QueueEntry
	filters []*htmlparse.Filter
}

func (c *recordingCrawler) CrawlFiltered(
	_ context.Context,
	entry model.QueueEntry,
	filter *htmlparse.Filter,
) model.CrawlResult {
	c.entries = append(c.entries, entry)
	c.filters = append(c.filters, filter)
	if r, ok := c.results[entry.CompanyID]; ok {
		return r
	}
	return model.CrawlResult{
		CompanyID:   entry.CompanyID,
		CompanyName: entry.CompanyName,
		Success:     true,
	}
}
