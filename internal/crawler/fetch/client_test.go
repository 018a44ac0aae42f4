package fetch

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/jobwatch/internal/domain/model"
)

type recordedLog struct {
	URL    string
	Status model.CrawlStatus
	ErrMsg string
}

type recordingLogger struct {
	mu   sync.Mutex
	logs []recordedLog
}

func (l *recordingLogger) Log(_ context.Context, url string, status model.CrawlStatus, errMsg string, _ time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, recordedLog{URL: url, Status: status, ErrMsg: errMsg})
}

func (l *recordingLogger) statuses() []model.CrawlStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.CrawlStatus, len(l.logs))
	for i, rec := range l.logs {
		out[i] = rec.Status
	}
	return out
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func newTestClient(logs CrawlLogger) *Client {
	return NewClient(Options{
		Timeout:       5 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		RetryBackoff:  2,
		Logs:          logs,
		sleep:         noSleep,
	})
}

func TestClient_Get_Success(t *testing.T) {
	var gotReferer, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>jobs</html>"))
	}))
	defer srv.Close()

	logs := &recordingLogger{}
	c := newTestClient(logs)

	body, err := c.Get(context.Background(), srv.URL+"/careers")
	require.NoError(t, err)
	assert.Equal(t, "<html>jobs</html>", string(body))

	// Referer points at the origin, and a browser identity is presented.
	assert.Equal(t, srv.URL, gotReferer)
	assert.Contains(t, gotUA, "Mozilla/5.0")

	require.Len(t, logs.logs, 1)
	assert.Equal(t, model.CrawlStatusSuccess, logs.logs[0].Status)
}

func TestClient_Get_DecompressesGzipResponses(t *testing.T) {
	page := "<html><a href=\"/jobs/1\">Software Engineer</a></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			t.Errorf("expected gzip to be negotiated, got Accept-Encoding %q", r.Header.Get("Accept-Encoding"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(page))
		_ = gz.Close()
	}))
	defer srv.Close()

	c := newTestClient(nil)

	body, err := c.Get(context.Background(), srv.URL+"/careers")
	require.NoError(t, err)
	assert.Equal(t, page, string(body))
}

func TestClient_Get_RetriesServerErrorThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	logs := &recordingLogger{}
	c := newTestClient(logs)

	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 2, calls)

	assert.Equal(t, []model.CrawlStatus{
		model.CrawlStatus("http_500"),
		model.CrawlStatusSuccess,
	}, logs.statuses())
}

func TestClient_Get_RateLimitedLogsAndRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	logs := &recordingLogger{}
	c := newTestClient(logs)

	body, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, body)

	statuses := logs.statuses()
	require.Len(t, statuses, 3)
	for _, s := range statuses {
		assert.Equal(t, model.CrawlStatusRateLimited, s)
	}
}

func TestClient_Get_AccessDeniedRotatesHeaders(t *testing.T) {
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		if len(agents) < 2 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("welcome"))
	}))
	defer srv.Close()

	logs := &recordingLogger{}
	c := newTestClient(logs)

	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "welcome", string(body))

	require.Len(t, agents, 2)
	// Identity rotation is random; agents may coincide, but both must be set.
	assert.NotEmpty(t, agents[0])
	assert.NotEmpty(t, agents[1])

	assert.Equal(t, []model.CrawlStatus{
		model.CrawlStatusAccessDenied,
		model.CrawlStatusSuccess,
	}, logs.statuses())
}

func TestClient_Get_ExhaustedReturnsNilBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(nil)

	body, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, body)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Get_RespectsLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	limited := &stubLimiter{err: context.Canceled}
	c := NewClient(Options{
		Timeout: time.Second,
		Limiter: limited,
		sleep:   noSleep,
	})

	_, err := c.Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, limited.calls)
}

func TestClient_Get_LimiterGatesEveryAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	limited := &stubLimiter{}
	c := NewClient(Options{
		Timeout:       time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		Limiter:       limited,
		sleep:         noSleep,
	})

	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 3, limited.calls)
}

type stubLimiter struct {
	err   error
	calls int
}

func (s *stubLimiter) Wait(_ context.Context, _ string) error {
	s.calls++
	return s.err
}

func TestClient_BackoffPolicy(t *testing.T) {
	c := NewClient(Options{RetryDelay: time.Second, RetryBackoff: 2, sleep: noSleep})

	// 429 backs off hardest: delay * backoff^attempt * 2.
	assert.Equal(t, 4*time.Second, c.backoffFor(&statusError{code: 429}, 1))
	assert.Equal(t, 8*time.Second, c.backoffFor(&statusError{code: 429}, 2))

	// Access denied and other statuses back off linearly.
	assert.Equal(t, 2*time.Second, c.backoffFor(&statusError{code: 403}, 2))
	assert.Equal(t, 3*time.Second, c.backoffFor(&statusError{code: 500}, 3))

	// Timeouts linearly, transport errors exponentially.
	assert.Equal(t, 2*time.Second, c.backoffFor(errTimeout, 2))
	assert.Equal(t, 4*time.Second, c.backoffFor(assert.AnError, 2))
}
