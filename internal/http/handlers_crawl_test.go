package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/jobwatch/internal/crawler/htmlparse"
	"github.com/target/jobwatch/internal/domain/model"
	apperrors "github.com/target/jobwatch/internal/errors"
)

type fakeCrawlRequests struct {
	mu       sync.Mutex
	requests map[string]*model.CrawlRequest
	ran      chan string
	filters  map[string]*htmlparse.Filter
}

func newFakeCrawlRequests() *fakeCrawlRequests {
	return &fakeCrawlRequests{
		requests: make(map[string]*model.CrawlRequest),
		filters:  make(map[string]*htmlparse.Filter),
		ran:      make(chan string, 8),
	}
}

func (f *fakeCrawlRequests) Submit(
	ctx context.Context,
	targets []model.CrawlRequestTarget,
) (*model.CrawlRequest, error) {
	if len(targets) == 0 {
		return nil, apperrors.Validationf("at least one crawl target is required")
	}
	for _, t := range targets {
		if t.Name == "" || t.URL == "" {
			return nil, apperrors.Validationf("target %q: career page url is required", t.Name)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	req := &model.CrawlRequest{
		ID:      "req-1",
		Status:  model.CrawlRequestQueued,
		Targets: targets,
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeCrawlRequests) Status(ctx context.Context, id string) (*model.CrawlRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFoundf("crawl request %s not found", id)
	}
	return req, nil
}

func (f *fakeCrawlRequests) Run(ctx context.Context, id string, filter *htmlparse.Filter) error {
	f.mu.Lock()
	f.filters[id] = filter
	f.mu.Unlock()
	f.ran <- id
	return nil
}

func (f *fakeCrawlRequests) filterFor(id string) *htmlparse.Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters[id]
}

func postCrawl(t *testing.T, h *CrawlHandlers, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/crawl", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCrawlHandlers_Create(t *testing.T) {
	svc := newFakeCrawlRequests()
	h := &CrawlHandlers{Svc: svc}

	rec := postCrawl(t, h, `{"companies":[{"name":"Acme","career_url":"https://acme.example.com/careers"}]}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp crawlAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, model.CrawlRequestQueued, resp.Status)
	assert.Equal(t, 1, resp.Companies)

	// The crawl runs in the background after the response is written.
	select {
	case id := <-svc.ran:
		assert.Equal(t, "req-1", id)
		assert.Nil(t, svc.filterFor("req-1"))
	case <-time.After(time.Second):
		t.Fatal("crawl never started")
	}
}

func TestCrawlHandlers_CreateWithNamedFilter(t *testing.T) {
	svc := newFakeCrawlRequests()
	h := &CrawlHandlers{Svc: svc}

	rec := postCrawl(t, h,
		`{"companies":[{"name":"Acme","career_url":"https://acme.example.com/careers"}],"filter":"security"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	select {
	case id := <-svc.ran:
		assert.NotNil(t, svc.filterFor(id))
	case <-time.After(time.Second):
		t.Fatal("crawl never started")
	}
}

func TestCrawlHandlers_CreateUnknownFilter(t *testing.T) {
	h := &CrawlHandlers{Svc: newFakeCrawlRequests()}

	rec := postCrawl(t, h,
		`{"companies":[{"name":"Acme","career_url":"https://acme.example.com/careers"}],"filter":"nope"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown filter")
}

func TestCrawlHandlers_CreateValidation(t *testing.T) {
	h := &CrawlHandlers{Svc: newFakeCrawlRequests()}

	rec := postCrawl(t, h, `{"companies":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postCrawl(t, h, `{"companies":[{"name":"Acme"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postCrawl(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestCrawlHandlers_Get(t *testing.T) {
	svc := newFakeCrawlRequests()
	completed := &model.CrawlRequest{
		ID:     "req-9",
		Status: model.CrawlRequestCompleted,
		Targets: []model.CrawlRequestTarget{
			{Name: "Acme", URL: "https://acme.example.com/careers"},
		},
		Results: []model.CrawlResult{
			{CompanyID: 1, Success: true, JobsFound: 3, JobsInserted: 3},
		},
	}
	svc.requests[completed.ID] = completed

	mux := http.NewServeMux()
	h := &CrawlHandlers{Svc: svc}
	mux.HandleFunc("GET /api/crawl/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/crawl/req-9", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ID      string                    `json:"id"`
		Status  model.CrawlRequestStatus  `json:"status"`
		Summary model.CrawlRequestSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-9", resp.ID)
	assert.Equal(t, model.CrawlRequestCompleted, resp.Status)
	assert.Equal(t, 1, resp.Summary.Succeeded)
	assert.Equal(t, 3, resp.Summary.JobsInserted)
}

func TestCrawlHandlers_GetNotFound(t *testing.T) {
	mux := http.NewServeMux()
	h := &CrawlHandlers{Svc: newFakeCrawlRequests()}
	mux.HandleFunc("GET /api/crawl/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/crawl/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}
