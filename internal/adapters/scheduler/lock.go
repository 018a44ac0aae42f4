package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/target/jobwatch/internal/core"
)

// SweepLock guards a sweep so that only one scheduler instance crawls at a
// time when several share the same database.
type SweepLock interface {
	// Acquire returns true when this instance now holds the lock.
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

const defaultLockKey = "scheduler:sweep:lock"

// CacheLockOptions holds the dependencies for creating a CacheLock.
type CacheLockOptions struct {
	Cache core.CacheRepository
	// Key defaults to "scheduler:sweep:lock".
	Key string
	// TTL bounds how long a crashed holder can block other instances.
	TTL    time.Duration
	Logger *slog.Logger
}

// CacheLock implements SweepLock on the shared cache with an atomic
// set-if-not-exists. The TTL means a crashed holder releases implicitly.
type CacheLock struct {
	cache  core.CacheRepository
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCacheLock creates a CacheLock, defaulting the key and a 1 hour TTL.
func NewCacheLock(opts CacheLockOptions) (*CacheLock, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("cache repository is required")
	}
	if opts.Key == "" {
		opts.Key = defaultLockKey
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CacheLock{
		cache:  opts.Cache,
		key:    opts.Key,
		ttl:    opts.TTL,
		logger: opts.Logger,
	}, nil
}

// Acquire tries to take the lock. The stored value identifies the holder for
// operators inspecting the cache by hand.
func (l *CacheLock) Acquire(ctx context.Context) (bool, error) {
	host, _ := os.Hostname()
	value := host + " " + time.Now().UTC().Format(time.RFC3339)

	held, err := l.cache.SetIfNotExists(ctx, l.key, []byte(value), l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire sweep lock: %w", err)
	}
	return held, nil
}

// Release drops the lock. Failures are logged; the TTL reclaims the key.
func (l *CacheLock) Release(ctx context.Context) {
	if _, err := l.cache.Delete(ctx, l.key); err != nil {
		l.logger.WarnContext(ctx, "sweep lock release failed", "key", l.key, "error", err)
	}
}
