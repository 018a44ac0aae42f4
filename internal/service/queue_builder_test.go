package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/jobwatch/internal/domain/model"
	"github.com/target/jobwatch/internal/testutil"
)

func newTestQueueBuilder(repo *fakeQueueRepo, now time.Time) *QueueBuilderService {
	s := NewQueueBuilderService(QueueBuilderServiceOptions{Queue: repo})
	s.now = func() time.Time { return now }
	return s
}

func TestQueueBuilder_PriorityAssignment(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry model.QueueEntry
		want  model.CrawlPriority
	}{
		{
			name:  "heavy demand with expired cache is critical",
			entry: testutil.ExpiredEntry(1, 8, now),
			want:  model.PriorityCritical,
		},
		{
			name:  "heavy demand with fresh cache is high",
			entry: testutil.FreshEntry(2, 5, now),
			want:  model.PriorityHigh,
		},
		{
			name:  "any subscriber is at least normal",
			entry: testutil.FreshEntry(3, 1, now),
			want:  model.PriorityNormal,
		},
		{
			name:  "no cache counts as expired",
			entry: testutil.SubscribedEntry(4, 0),
			want:  model.PriorityLow,
		},
		{
			name:  "fresh and unsubscribed is background",
			entry: testutil.FreshEntry(5, 0, now),
			want:  model.PriorityBackground,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeQueueRepo{stale: []model.QueueEntry{tt.entry}}
			entries, err := newTestQueueBuilder(repo, now).Build(context.Background(), model.QueueModeStale)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Priority)
		})
	}
}

func TestQueueBuilder_OrderAndDedup(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := &fakeQueueRepo{
		subscribed: []model.QueueEntry{
			testutil.FreshEntry(1, 6, now),   // high
			testutil.ExpiredEntry(2, 9, now), // critical
			testutil.ExpiredEntry(2, 9, now), // duplicate of the critical one
			testutil.FreshEntry(3, 2, now),   // normal
			testutil.FreshEntry(4, 3, now),   // normal, more subscribers than 3
		},
	}

	entries, err := newTestQueueBuilder(repo, now).Build(context.Background(), model.QueueModeAllSubscribed)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var ids []int64
	for _, e := range entries {
		ids = append(ids, e.CompanyID)
	}
	// Critical, high, then normals by subscriber count.
	assert.Equal(t, []int64{2, 1, 4, 3}, ids)
}

func TestQueueBuilder_ModeSelectsOneCandidateSet(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := &fakeQueueRepo{
		subscribed: []model.QueueEntry{
			testutil.FreshEntry(1, 6, now),
			testutil.ExpiredEntry(2, 3, now),
		},
		stale: []model.QueueEntry{
			testutil.ExpiredEntry(2, 3, now),
			testutil.ExpiredEntry(3, 0, now),
		},
	}
	builder := newTestQueueBuilder(repo, now)

	// Stale mode ignores fresh subscribed companies entirely.
	entries, err := builder.Build(context.Background(), model.QueueModeStale)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].CompanyID)
	assert.Equal(t, int64(3), entries[1].CompanyID)

	// All-subscribed mode ignores the unsubscribed stale company.
	entries, err = builder.Build(context.Background(), model.QueueModeAllSubscribed)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].CompanyID)
	assert.Equal(t, int64(1), entries[1].CompanyID)
}

func TestQueueBuilder_Stats(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	repo := &fakeQueueRepo{
		subscribed: []model.QueueEntry{
			testutil.NewQueueEntry(1).WithSubscribers(4).WithATS("greenhouse").Build(),
			testutil.NewQueueEntry(2).WithSubscribers(2).Build(),
		},
	}

	builder := newTestQueueBuilder(repo, now)
	entries, err := builder.Build(context.Background(), model.QueueModeAllSubscribed)
	require.NoError(t, err)

	stats := builder.Stats(entries)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 2, stats.UniqueCompanies)
	assert.EqualValues(t, 6, stats.TotalSubscribers)
	assert.Equal(t, 1, stats.ByATSType["greenhouse"])
	assert.Equal(t, 1, stats.ByATSType["unknown"])
	// One API entry at 3s, one scraped entry at 20s.
	assert.InDelta(t, 23.0/60.0, stats.EstimatedDurationMin, 0.001)
}

func TestQueueBuilder_DefaultsClamped(t *testing.T) {
	s := NewQueueBuilderService(QueueBuilderServiceOptions{
		Queue:  &fakeQueueRepo{},
		Config: QueueConfig{StaleMaxAge: -time.Hour, HeavyDemand: 0},
	})
	assert.Equal(t, DefaultQueueConfig().StaleMaxAge, s.cfg.StaleMaxAge)
	assert.Equal(t, DefaultQueueConfig().HeavyDemand, s.cfg.HeavyDemand)
}
