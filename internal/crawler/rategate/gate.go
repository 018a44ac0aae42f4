// Package rategate spaces requests per origin domain so career sites never
// see bursts from the crawler. Delays are randomized to look less mechanical.
package rategate

import (
	"context"
	"log/slog"
	"math/rand"
	"net/url"
	"sync"
	"time"
)

const windowLength = time.Minute

// Options configures a Gate.
type Options struct {
	// RequestsPerMinute caps requests per domain within a rolling window.
	RequestsPerMinute int
	// MinDelay and MaxDelay bound the randomized gap between requests
	// to the same domain.
	MinDelay time.Duration
	MaxDelay time.Duration
	Logger   *slog.Logger
	// now is overridable in tests.
	now func() time.Time
	// sleep is overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Gate is a per-domain rate limiter. All crawl workers share one Gate so the
// budget holds across concurrent crawls of companies on the same domain.
type Gate struct {
	opts Options

	mu      sync.Mutex
	domains map[string]*domainState
}

type domainState struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
	lastRequest time.Time
	seen        bool
}

// DomainStats is a point-in-time snapshot of one domain's budget.
type DomainStats struct {
	Domain             string    `json:"domain"`
	RequestsThisMinute int       `json:"requests_this_minute"`
	LastRequest        time.Time `json:"last_request"`
}

// New creates a Gate, clamping nonsensical options to usable values.
func New(opts Options) *Gate {
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 20
	}
	if opts.MinDelay <= 0 {
		opts.MinDelay = 2 * time.Second
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	if opts.sleep == nil {
		opts.sleep = sleepCtx
	}
	return &Gate{
		opts:    opts,
		domains: make(map[string]*domainState),
	}
}

// Wait blocks until a request to rawURL is allowed under the domain's budget.
// Returns early with the context error if the caller gives up.
func (g *Gate) Wait(ctx context.Context, rawURL string) error {
	domain := domainOf(rawURL)

	state := g.state(domain)
	state.mu.Lock()
	defer state.mu.Unlock()

	now := g.opts.now()

	if !state.seen {
		state.windowStart = now
		state.count = 0
	}

	// Rolling minute window.
	if now.Sub(state.windowStart) > windowLength {
		state.windowStart = now
		state.count = 0
		g.opts.Logger.Debug("rate window reset", "domain", domain)
	}

	if state.count >= g.opts.RequestsPerMinute {
		wait := windowLength - now.Sub(state.windowStart)
		if wait > 0 {
			g.opts.Logger.Info("rate limit reached, waiting",
				"domain", domain,
				"wait", wait.Round(100*time.Millisecond))
			if err := g.opts.sleep(ctx, wait); err != nil {
				return err
			}
			state.windowStart = g.opts.now()
			state.count = 0
		}
	}

	if state.seen {
		sinceLast := g.opts.now().Sub(state.lastRequest)
		delay := g.randomDelay()
		if sinceLast < delay {
			if err := g.opts.sleep(ctx, delay-sinceLast); err != nil {
				return err
			}
		}
	} else {
		// Small warm-up before the first request to a new domain.
		warmup := time.Duration(500+rand.Intn(1001)) * time.Millisecond
		if err := g.opts.sleep(ctx, warmup); err != nil {
			return err
		}
		state.seen = true
	}

	state.lastRequest = g.opts.now()
	state.count++

	g.opts.Logger.Debug("rate slot acquired",
		"domain", domain,
		"count", state.count,
		"limit", g.opts.RequestsPerMinute)
	return nil
}

// Stats snapshots all tracked domains.
func (g *Gate) Stats() []DomainStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]DomainStats, 0, len(g.domains))
	for domain, state := range g.domains {
		state.mu.Lock()
		out = append(out, DomainStats{
			Domain:             domain,
			RequestsThisMinute: state.count,
			LastRequest:        state.lastRequest,
		})
		state.mu.Unlock()
	}
	return out
}

func (g *Gate) state(domain string) *domainState {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.domains[domain]
	if !ok {
		s = &domainState{}
		g.domains[domain] = s
	}
	return s
}

func (g *Gate) randomDelay() time.Duration {
	span := g.opts.MaxDelay - g.opts.MinDelay
	if span <= 0 {
		return g.opts.MinDelay
	}
	return g.opts.MinDelay + time.Duration(rand.Int63n(int64(span)+1))
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
