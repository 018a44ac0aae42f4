// Package core defines the ports and contracts for the jobwatch crawl system.
package core

import (
	"context"
	"time"
)

// CacheRepository is the shared key-value store behind the scheduler's sweep
// lock and the readiness probe. The job cache itself lives in Postgres; this
// store only holds coordination state.
type CacheRepository interface {
	// SetIfNotExists atomically claims a key, returning true when this
	// caller set it. The TTL bounds how long a crashed claimant can hold it.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes a key. Returns true if the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists reports whether a key is currently set.
	Exists(ctx context.Context, key string) (bool, error)

	// Health checks the store connection.
	Health(ctx context.Context) error
}
