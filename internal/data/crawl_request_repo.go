package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/target/jobwatch/internal/domain/model"
)

const (
	crawlRequestKeyPrefix = "jobwatch:crawl_request:"

	// Requests are poll-once artifacts; an hour is plenty for any client
	// that cares about the outcome.
	crawlRequestTTL = time.Hour
)

// CrawlRequestRepo stores ad-hoc crawl request state in Redis with a TTL.
// Requests are ephemeral; nothing here touches Postgres.
type CrawlRequestRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// NewCrawlRequestRepo creates a new CrawlRequestRepo with the given Redis client.
func NewCrawlRequestRepo(client redis.UniversalClient) *CrawlRequestRepo {
	return &CrawlRequestRepo{
		client:       client,
		timeProvider: &RealTimeProvider{},
	}
}

// NewCrawlRequestRepoWithTimeProvider creates a CrawlRequestRepo with a custom TimeProvider (useful for testing).
func NewCrawlRequestRepoWithTimeProvider(client redis.UniversalClient, tp TimeProvider) *CrawlRequestRepo {
	return &CrawlRequestRepo{client: client, timeProvider: tp}
}

// Create registers a new queued request for the given targets and returns it.
func (r *CrawlRequestRepo) Create(
	ctx context.Context,
	targets []model.CrawlRequestTarget,
) (*model.CrawlRequest, error) {
	if len(targets) == 0 {
		return nil, errors.New("at least one crawl target is required")
	}

	now := r.timeProvider.Now().UTC()
	req := &model.CrawlRequest{
		ID:        uuid.NewString(),
		Status:    model.CrawlRequestQueued,
		Targets:   targets,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.save(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Get fetches a request by id. A missing or expired request returns nil
// without error.
func (r *CrawlRequestRepo) Get(ctx context.Context, id string) (*model.CrawlRequest, error) {
	if id == "" {
		return nil, errors.New("request id is required")
	}

	raw, err := r.client.Get(ctx, crawlRequestKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get crawl request %s: %w", id, err)
	}

	var req model.CrawlRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, fmt.Errorf("decode crawl request %s: %w", id, err)
	}
	return &req, nil
}

// Update rewrites the request state and refreshes its TTL.
func (r *CrawlRequestRepo) Update(ctx context.Context, req *model.CrawlRequest) error {
	if req == nil || req.ID == "" {
		return errors.New("request id is required")
	}
	if !req.Status.Valid() {
		return fmt.Errorf("invalid crawl request status %q", req.Status)
	}

	req.UpdatedAt = r.timeProvider.Now().UTC()
	return r.save(ctx, req)
}

func (r *CrawlRequestRepo) save(ctx context.Context, req *model.CrawlRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode crawl request %s: %w", req.ID, err)
	}

	if err := r.client.Set(ctx, crawlRequestKeyPrefix+req.ID, payload, crawlRequestTTL).Err(); err != nil {
		return fmt.Errorf("store crawl request %s: %w", req.ID, err)
	}
	return nil
}

// Health checks the Redis connection.
func (r *CrawlRequestRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
