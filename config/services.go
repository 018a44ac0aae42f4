package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeScheduler runs the periodic crawl scheduler.
	ServiceModeScheduler ServiceMode = "scheduler"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeScheduler,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeScheduler:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, scheduler)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// SchedulerConfig contains crawl scheduler configuration.
type SchedulerConfig struct {
	// IntervalHours is the period between full sweeps of the crawl queue.
	IntervalHours int `env:"CRAWL_INTERVAL_HOURS" envDefault:"24"`

	// BatchSize is the number of companies dispatched per batch.
	BatchSize int `env:"BATCH_SIZE" envDefault:"10"`

	// BatchDelaySeconds is the pause between batches within a sweep.
	BatchDelaySeconds int `env:"BATCH_DELAY_SECONDS" envDefault:"60"`

	// MaxConcurrent bounds how many companies crawl at once within a batch.
	MaxConcurrent int `env:"MAX_CONCURRENT_TASKS" envDefault:"10"`

	// HeartbeatFile is the liveness file the scheduler rewrites while healthy.
	HeartbeatFile string `env:"HEARTBEAT_FILE" envDefault:"/tmp/scheduler_heartbeat"`
}

// Sanitize applies guardrails to scheduler configuration values.
func (s *SchedulerConfig) Sanitize() {
	if s.IntervalHours < 1 {
		s.IntervalHours = 1
	}
	if s.BatchSize < 1 {
		s.BatchSize = 1
	}
	if s.BatchDelaySeconds < 0 {
		s.BatchDelaySeconds = 0
	}
	if s.MaxConcurrent < 1 {
		s.MaxConcurrent = 1
	}
}

// Interval returns the sweep period as a duration.
func (s *SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalHours) * time.Hour
}

// BatchDelay returns the inter-batch pause as a duration.
func (s *SchedulerConfig) BatchDelay() time.Duration {
	return time.Duration(s.BatchDelaySeconds) * time.Second
}

// CrawlerConfig contains fetch and rate limiting configuration shared by
// every crawl path.
type CrawlerConfig struct {
	// RequestsPerMinute caps requests per target domain.
	RequestsPerMinute int `env:"REQUESTS_PER_MINUTE" envDefault:"20"`

	// MinDelaySeconds and MaxDelaySeconds bound the randomized pause
	// between consecutive requests to the same domain.
	MinDelaySeconds int `env:"MIN_DELAY_SECONDS" envDefault:"2"`
	MaxDelaySeconds int `env:"MAX_DELAY_SECONDS" envDefault:"5"`

	// RetryAttempts is the number of fetch attempts per URL.
	RetryAttempts int `env:"RETRY_ATTEMPTS" envDefault:"3"`

	// RetryDelaySeconds is the base wait before a retry.
	RetryDelaySeconds int `env:"RETRY_DELAY_SECONDS" envDefault:"2"`

	// RetryBackoff is the exponential multiplier applied per attempt.
	RetryBackoff float64 `env:"RETRY_BACKOFF" envDefault:"2"`

	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `env:"HTTP_TIMEOUT_SECONDS" envDefault:"30"`

	// CacheTTLHours is how long crawl results stay fresh in the job cache.
	CacheTTLHours int `env:"CACHE_TTL_HOURS" envDefault:"24"`
}

// Sanitize applies guardrails to crawler configuration values.
func (c *CrawlerConfig) Sanitize() {
	if c.RequestsPerMinute < 1 {
		c.RequestsPerMinute = 1
	}
	if c.MinDelaySeconds < 0 {
		c.MinDelaySeconds = 0
	}
	if c.MaxDelaySeconds < c.MinDelaySeconds {
		c.MaxDelaySeconds = c.MinDelaySeconds
	}
	if c.RetryAttempts < 1 {
		c.RetryAttempts = 1
	}
	if c.RetryDelaySeconds < 0 {
		c.RetryDelaySeconds = 0
	}
	if c.RetryBackoff <= 1 {
		c.RetryBackoff = 2
	}
	if c.TimeoutSeconds < 1 {
		c.TimeoutSeconds = 1
	}
	if c.CacheTTLHours < 1 {
		c.CacheTTLHours = 1
	}
}

// MinDelay returns the minimum inter-request pause as a duration.
func (c *CrawlerConfig) MinDelay() time.Duration {
	return time.Duration(c.MinDelaySeconds) * time.Second
}

// MaxDelay returns the maximum inter-request pause as a duration.
func (c *CrawlerConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelaySeconds) * time.Second
}

// RetryDelay returns the base retry wait as a duration.
func (c *CrawlerConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// Timeout returns the per-request timeout as a duration.
func (c *CrawlerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the job cache freshness window as a duration.
func (c *CrawlerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}
