// Package fetch implements the crawler's HTTP client: rate gated, retried
// with status-aware backoff, and logged per attempt.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/target/jobwatch/internal/domain/model"
)

// Limiter gates requests per domain. Implemented by rategate.Gate.
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// CrawlLogger records fetch outcomes. Implemented by data.CrawlLogRepo via
// a thin adapter; failures to log never fail the fetch.
type CrawlLogger interface {
	Log(ctx context.Context, url string, status model.CrawlStatus, errMsg string, responseTime time.Duration)
}

// Options configures a Client.
type Options struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	RetryBackoff  float64
	Limiter       Limiter
	Logs          CrawlLogger
	Logger        *slog.Logger
	// sleep is overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Client fetches pages with retry and anti-blocking behavior.
type Client struct {
	opts Options
	http *http.Client
}

// NewClient creates a Client, clamping nonsensical options to usable values.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.RetryBackoff <= 1 {
		opts.RetryBackoff = 2
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.sleep == nil {
		opts.sleep = func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		}
	}

	transport := &http.Transport{
		// Some career pages run on misconfigured certs; a failed handshake
		// loses the whole company.
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		opts: opts,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
	}
}

// Get fetches url with retries. Returns the body on a 200 response, or nil
// with the last error once every attempt is exhausted.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	headers := realisticHeaders()
	if origin := originOf(rawURL); origin != "" {
		headers.Set("Referer", origin)
	}

	var lastErr error
	start := time.Now()

	for attempt := 1; attempt <= c.opts.RetryAttempts; attempt++ {
		// Every attempt goes through the gate, so retries keep the same
		// per-origin spacing as first requests.
		if c.opts.Limiter != nil {
			if err := c.opts.Limiter.Wait(ctx, rawURL); err != nil {
				return nil, err
			}
		}

		body, retry, err := c.attempt(ctx, rawURL, headers, attempt, start)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}

		// On access denial the next attempt shows up as a different browser.
		if isAccessDenied(err) {
			headers = realisticHeaders()
			if origin := originOf(rawURL); origin != "" {
				headers.Set("Referer", origin)
			}
		}

		if sleepErr := c.opts.sleep(ctx, c.backoffFor(err, attempt)); sleepErr != nil {
			return nil, sleepErr
		}
	}

	c.opts.Logger.Error("all retries exhausted",
		"url", rawURL,
		"attempts", c.opts.RetryAttempts,
		"error", lastErr)
	return nil, fmt.Errorf("fetch %s: %w", rawURL, lastErr)
}

// statusError carries the HTTP status that failed an attempt.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http status %d", e.code)
}

var errTimeout = errors.New("request timed out")

func (c *Client) attempt(
	ctx context.Context,
	rawURL string,
	headers http.Header,
	attempt int,
	start time.Time,
) (body []byte, retry bool, err error) {
	c.opts.Logger.Debug("fetching",
		"url", rawURL,
		"attempt", attempt,
		"max_attempts", c.opts.RetryAttempts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header = headers.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if isTimeout(err) {
			c.log(ctx, rawURL, model.CrawlStatusTimeout, err.Error(), 0)
			return nil, true, errTimeout
		}
		c.log(ctx, rawURL, model.CrawlStatusClientError, err.Error(), 0)
		return nil, true, fmt.Errorf("transport: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	elapsed := time.Since(start)

	switch {
	case resp.StatusCode == http.StatusOK:
		// Some career pages still declare legacy encodings; normalize to
		// UTF-8 so the parsers downstream see one charset.
		reader, decErr := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
		if decErr != nil {
			reader = resp.Body
		}
		content, readErr := io.ReadAll(reader)
		if readErr != nil {
			c.log(ctx, rawURL, model.CrawlStatusClientError, readErr.Error(), elapsed)
			return nil, true, fmt.Errorf("read body: %w", readErr)
		}
		c.log(ctx, rawURL, model.CrawlStatusSuccess, "", elapsed)
		c.opts.Logger.Info("fetched", "url", rawURL, "bytes", len(content))
		return content, false, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		msg := fmt.Sprintf("rate limited (429) on %s", rawURL)
		c.opts.Logger.Warn("rate limited by origin", "url", rawURL)
		c.log(ctx, rawURL, model.CrawlStatusRateLimited, msg, elapsed)
		return nil, true, &statusError{code: resp.StatusCode}

	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		msg := fmt.Sprintf("access denied (%d) on %s", resp.StatusCode, rawURL)
		c.opts.Logger.Warn("access denied", "url", rawURL, "status", resp.StatusCode)
		c.log(ctx, rawURL, model.CrawlStatusAccessDenied, msg, elapsed)
		return nil, true, &statusError{code: resp.StatusCode}

	default:
		msg := fmt.Sprintf("HTTP %d on %s", resp.StatusCode, rawURL)
		c.opts.Logger.Warn("unexpected status", "url", rawURL, "status", resp.StatusCode)
		c.log(ctx, rawURL, model.CrawlStatusHTTP(resp.StatusCode), msg, elapsed)
		return nil, true, &statusError{code: resp.StatusCode}
	}
}

// backoffFor picks the wait before the next attempt based on what failed.
// Rate limiting backs off hardest, access denial and odd statuses linearly,
// transport trouble exponentially.
func (c *Client) backoffFor(err error, attempt int) time.Duration {
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.code == http.StatusTooManyRequests:
			return scale(c.opts.RetryDelay, math.Pow(c.opts.RetryBackoff, float64(attempt))*2)
		default:
			return c.opts.RetryDelay * time.Duration(attempt)
		}
	}
	if errors.Is(err, errTimeout) {
		return c.opts.RetryDelay * time.Duration(attempt)
	}
	return scale(c.opts.RetryDelay, math.Pow(c.opts.RetryBackoff, float64(attempt)))
}

func scale(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}

func (c *Client) log(
	ctx context.Context,
	url string,
	status model.CrawlStatus,
	errMsg string,
	responseTime time.Duration,
) {
	if c.opts.Logs == nil {
		return
	}
	c.opts.Logs.Log(ctx, url, status, errMsg, responseTime)
}

func isAccessDenied(err error) bool {
	var se *statusError
	return errors.As(err, &se) &&
		(se.code == http.StatusForbidden || se.code == http.StatusUnauthorized)
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
