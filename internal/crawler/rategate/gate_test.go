package rategate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the gate deterministically. Sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestGate(rpm int, clock *fakeClock) *Gate {
	return New(Options{
		RequestsPerMinute: rpm,
		MinDelay:          2 * time.Second,
		MaxDelay:          2 * time.Second, // fixed so delays are predictable
		now:               clock.Now,
		sleep:             clock.Sleep,
	})
}

func TestGate_FirstRequestWarmsUp(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGate(20, clock)

	require.NoError(t, g.Wait(context.Background(), "https://acme.example.com/careers"))

	require.Len(t, clock.sleeps, 1)
	assert.GreaterOrEqual(t, clock.sleeps[0], 500*time.Millisecond)
	assert.LessOrEqual(t, clock.sleeps[0], 1500*time.Millisecond)
}

func TestGate_SpacesRequestsToSameDomain(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGate(20, clock)
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx, "https://acme.example.com/careers"))
	before := clock.now
	require.NoError(t, g.Wait(ctx, "https://acme.example.com/jobs"))

	// Second request to the same domain waits out the 2s spacing.
	assert.Equal(t, 2*time.Second, clock.now.Sub(before))
}

func TestGate_DomainsAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGate(1, clock)
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx, "https://a.example.com/"))
	sleepsAfterA := len(clock.sleeps)

	// A different domain only pays its own warm-up, not A's window.
	require.NoError(t, g.Wait(ctx, "https://b.example.com/"))
	require.Len(t, clock.sleeps, sleepsAfterA+1)
	assert.LessOrEqual(t, clock.sleeps[len(clock.sleeps)-1], 1500*time.Millisecond)
}

func TestGate_WindowBudgetBlocks(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGate(2, clock)
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx, "https://acme.example.com/"))
	require.NoError(t, g.Wait(ctx, "https://acme.example.com/"))

	start := clock.now
	require.NoError(t, g.Wait(ctx, "https://acme.example.com/"))

	// Third request exceeds the 2/min budget and waits for the window to roll.
	assert.GreaterOrEqual(t, clock.now.Sub(start), 30*time.Second)

	stats := g.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "acme.example.com", stats[0].Domain)
	assert.Equal(t, 1, stats[0].RequestsThisMinute)
}

func TestGate_WindowResetsAfterIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGate(2, clock)
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx, "https://acme.example.com/"))
	require.NoError(t, g.Wait(ctx, "https://acme.example.com/"))

	// After a quiet stretch the budget is fresh; no window wait needed.
	clock.now = clock.now.Add(2 * time.Minute)
	before := clock.now
	require.NoError(t, g.Wait(ctx, "https://acme.example.com/"))
	assert.Less(t, clock.now.Sub(before), 10*time.Second)
}

func TestGate_CanceledContext(t *testing.T) {
	g := New(Options{
		RequestsPerMinute: 20,
		MinDelay:          2 * time.Second,
		MaxDelay:          5 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Wait(ctx, "https://acme.example.com/")
	require.ErrorIs(t, err, context.Canceled)
}
