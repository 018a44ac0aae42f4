package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/jobwatch/internal/domain/model"
	"github.com/target/jobwatch/internal/testutil"
)

func TestCrawlRequestRepo_CreateGetUpdate(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	repo := NewCrawlRequestRepo(client)

	targets := []model.CrawlRequestTarget{
		{Name: "Acme", URL: "https://acme.example.com/careers"},
		{Name: "Globex"},
	}
	req, err := repo.Create(ctx, targets)
	require.NoError(t, err)
	require.NotEmpty(t, req.ID)
	assert.Equal(t, model.CrawlRequestQueued, req.Status)
	assert.Len(t, req.Targets, 2)
	assert.NotZero(t, req.CreatedAt)

	got, err := repo.Get(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, "Acme", got.Targets[0].Name)

	got.Status = model.CrawlRequestRunning
	got.Results = append(got.Results, model.CrawlResult{
		CompanyID:   1,
		CompanyName: "Acme",
		Success:     true,
		JobsFound:   5,
	})
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.Get(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, model.CrawlRequestRunning, reloaded.Status)
	require.Len(t, reloaded.Results, 1)
	assert.Equal(t, 5, reloaded.Results[0].JobsFound)
	assert.True(t, reloaded.UpdatedAt.After(reloaded.CreatedAt) || reloaded.UpdatedAt.Equal(reloaded.CreatedAt))
}

func TestCrawlRequestRepo_GetMissing(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	repo := NewCrawlRequestRepo(client)

	got, err := repo.Get(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = repo.Get(context.Background(), "")
	require.Error(t, err)
}

func TestCrawlRequestRepo_Validation(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	repo := NewCrawlRequestRepo(client)

	_, err := repo.Create(ctx, nil)
	require.Error(t, err)

	err = repo.Update(ctx, nil)
	require.Error(t, err)

	err = repo.Update(ctx, &model.CrawlRequest{ID: "x", Status: model.CrawlRequestStatus("bogus")})
	require.Error(t, err)
}

func TestCrawlRequestRepo_TTLSet(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	repo := NewCrawlRequestRepo(client)

	req, err := repo.Create(ctx, []model.CrawlRequestTarget{{Name: "Acme"}})
	require.NoError(t, err)

	ttl, err := client.TTL(ctx, crawlRequestKeyPrefix+req.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}
