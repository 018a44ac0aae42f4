package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/jobwatch/internal/crawler/rategate"
	"github.com/target/jobwatch/internal/domain/model"
)

type fakeGate struct {
	stats []rategate.DomainStats
}

func (f *fakeGate) Stats() []rategate.DomainStats { return f.stats }

func TestStats_Overview(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := newFakeCacheRepo(now)
	require.NoError(t, cache.UpdateCache(context.Background(), 1, nil, time.Hour, "", 0))

	logs := &fakeLogRepo{stats: []model.CrawlLogStats{
		{Status: model.CrawlStatusSuccess, Count: 12, AvgResponseTimeMs: 340},
		{Status: model.CrawlStatusTimeout, Count: 2, AvgResponseTimeMs: 0},
	}}
	gate := &fakeGate{stats: []rategate.DomainStats{
		{Domain: "acme.example.com", RequestsThisMinute: 5},
	}}

	svc := NewStatsService(StatsServiceOptions{Logs: logs, Cache: cache, Gate: gate})
	svc.now = func() time.Time { return now }

	stats, err := svc.Overview(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 24.0, stats.WindowHours)
	require.Len(t, stats.Statuses, 2)
	assert.Equal(t, model.CrawlStatusSuccess, stats.Statuses[0].Status)
	assert.EqualValues(t, 1, stats.CacheTotal)
	assert.EqualValues(t, 1, stats.CacheFresh)
	require.Len(t, stats.Domains, 1)
	assert.Equal(t, "acme.example.com", stats.Domains[0].Domain)
}

func TestStats_OverviewWithoutGate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewStatsService(StatsServiceOptions{
		Logs:  &fakeLogRepo{},
		Cache: newFakeCacheRepo(now),
	})
	svc.now = func() time.Time { return now }

	stats, err := svc.Overview(context.Background(), 0)
	require.NoError(t, err)
	// Zero window falls back to the default day.
	assert.Equal(t, 24.0, stats.WindowHours)
	assert.Empty(t, stats.Domains)
}
