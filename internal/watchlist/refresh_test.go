package watchlist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchdeck/watchdeck/internal/models"
	"github.com/watchdeck/watchdeck/internal/ratelimit"
)

func TestRefreshAllAutoSkipsLoadingAndFailed(t *testing.T) {
	f := newFixture(t, testConfig())

	loading := loadedStock("MSFT", 0, 0)
	loading.Status = models.StatusLoading
	f.seed(loadedStock("AAPL", 1, 0.5), failedStock("TSLA"), loading)

	res := f.core.RefreshAll(context.Background(), false)
	assert.True(t, res.Allowed)

	require.Eventually(t, func() bool {
		return f.quotes.count("AAPL") == 1
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.quotes.count("TSLA"), "auto refresh must skip failed entries")
	assert.Equal(t, 0, f.quotes.count("MSFT"), "refresh must skip in-flight entries")

	t.Run("no limiter interaction on automatic passes", func(t *testing.T) {
		assert.Equal(t, 0, f.limiter.checks)
		assert.Equal(t, 0, f.limiter.records)
	})

	t.Run("refresh event published", func(t *testing.T) {
		assert.Contains(t, f.events.seen(), models.EventRefreshCompleted)
	})
}

func TestRefreshAllManualRetriesFailed(t *testing.T) {
	f := newFixture(t, testConfig())
	f.seed(loadedStock("AAPL", 1, 0.5), failedStock("TSLA"))

	res := f.core.RefreshAll(context.Background(), true)
	assert.True(t, res.Allowed)

	require.Eventually(t, func() bool {
		return f.quotes.count("AAPL") == 1 && f.quotes.count("TSLA") == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		s, ok := f.stock(t, "TSLA")
		return ok && s.Status == models.StatusLoaded
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, f.limiter.checks)
	assert.Equal(t, 1, f.limiter.records)
}

func TestRefreshAllManualRateLimited(t *testing.T) {
	f := newFixture(t, testConfig())
	f.limiter.result = ratelimit.Result{
		Allowed:  false,
		Reason:   "basic_cooldown",
		WaitTime: 20 * time.Second,
	}
	f.seed(loadedStock("AAPL", 1, 0.5))

	res := f.core.RefreshAll(context.Background(), true)

	assert.False(t, res.Allowed)
	assert.Equal(t, "basic_cooldown", res.Reason)
	assert.Equal(t, 0, f.limiter.records)
	assert.Contains(t, f.notices.seen(), "warning: Please wait 20 seconds before refreshing again")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.quotes.count("AAPL"), "rejected refresh must not fetch")
}

func TestRefreshAllCoalescesManualTriggers(t *testing.T) {
	f := newFixture(t, testConfig())
	f.seed(loadedStock("AAPL", 1, 0.5))

	first := f.core.RefreshAll(context.Background(), true)
	second := f.core.RefreshAll(context.Background(), true)

	assert.True(t, first.Allowed)
	assert.True(t, second.Allowed)
	assert.Equal(t, 1, f.limiter.checks, "duplicate trigger within the window must coalesce")
	assert.Equal(t, 1, f.limiter.records)

	require.Eventually(t, func() bool {
		return f.quotes.count("AAPL") == 1
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.quotes.count("AAPL"))
}

// gatedLimiter blocks inside Check until released, so tests can land a
// second manual trigger while the first verdict is still pending.
type gatedLimiter struct {
	mu      sync.Mutex
	entered chan struct{}
	release chan struct{}
	result  ratelimit.Result
	checks  int
}

func (l *gatedLimiter) Check(_ context.Context) ratelimit.Result {
	l.mu.Lock()
	l.checks++
	l.mu.Unlock()
	l.entered <- struct{}{}
	<-l.release
	return l.result
}

func (l *gatedLimiter) Record(_ context.Context) error { return nil }

func TestRefreshAllCoalescedTriggerWaitsForVerdict(t *testing.T) {
	f := newFixture(t, testConfig())
	f.seed(loadedStock("AAPL", 1, 0.5))

	gl := &gatedLimiter{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		result: ratelimit.Result{
			Allowed:  false,
			Reason:   "basic_cooldown",
			WaitTime: 20 * time.Second,
		},
	}
	f.core.mu.Lock()
	f.core.limiter = gl
	f.core.mu.Unlock()

	results := make(chan ratelimit.Result, 2)
	go func() { results <- f.core.RefreshAll(context.Background(), true) }()

	select {
	case <-gl.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first trigger never reached the limiter")
	}

	go func() { results <- f.core.RefreshAll(context.Background(), true) }()
	time.Sleep(20 * time.Millisecond)
	close(gl.release)

	for i := 0; i < 2; i++ {
		select {
		case res := <-results:
			assert.False(t, res.Allowed, "coalesced trigger must carry the real verdict")
			assert.Equal(t, "basic_cooldown", res.Reason)
		case <-time.After(2 * time.Second):
			t.Fatal("refresh trigger did not return")
		}
	}

	gl.mu.Lock()
	checks := gl.checks
	gl.mu.Unlock()
	assert.Equal(t, 1, checks, "duplicate trigger must not re-run the check")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.quotes.count("AAPL"), "rejected refresh must not fetch")
}

func TestRefreshAllForceFailsStuckEntries(t *testing.T) {
	f := newFixture(t, testConfig())

	stuck := loadedStock("AAPL", 0, 0)
	stuck.Status = models.StatusLoading
	stuck.LastUpdated = time.Now().Add(-3 * time.Minute)
	f.seed(stuck)

	f.core.RefreshAll(context.Background(), false)

	s, ok := f.stock(t, "AAPL")
	require.True(t, ok)
	assert.True(t, s.IsFailed())
	require.NotNil(t, s.Error)
	assert.Equal(t, models.ErrTimeout, s.Error.Kind)

	// Freshly failed entries are not refetched on the same automatic pass.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.quotes.count("AAPL"))
}

func TestRestore(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	aapl := loadedStock("AAPL", 1, 0.5)
	msft := loadedStock("MSFT", 0, 0)
	msft.Status = models.StatusLoading
	require.NoError(t, f.store.SaveWatchlist(ctx, []models.Stock{aapl, msft, failedStock("TSLA")}))
	require.NoError(t, f.store.SaveSelected(ctx, &aapl))

	require.NoError(t, f.core.Restore(ctx))

	assert.Len(t, f.core.Stocks(), 3)
	selected := f.core.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, "AAPL", selected.Symbol)

	t.Run("loading leftovers are refetched", func(t *testing.T) {
		require.Eventually(t, func() bool {
			s, ok := f.stock(t, "MSFT")
			return ok && s.Status == models.StatusLoaded
		}, 2*time.Second, 5*time.Millisecond)
	})
}

func TestRestoreRetriesOnlyRetryableFailures(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	badKey := models.Stock{
		Symbol:      "NVDA",
		CompanyName: "NVDA",
		LastUpdated: time.Now(),
		Status:      models.StatusFailed,
		Error:       models.NewQuoteError(models.ErrAPIKey, "invalid API key"),
	}
	require.NoError(t, f.store.SaveWatchlist(ctx, []models.Stock{failedStock("TSLA"), badKey}))

	require.NoError(t, f.core.Restore(ctx))

	require.Eventually(t, func() bool {
		s, ok := f.stock(t, "TSLA")
		return ok && s.Status == models.StatusLoaded
	}, 2*time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.quotes.count("NVDA"), "non-retryable failure must not be refetched")

	s, ok := f.stock(t, "NVDA")
	require.True(t, ok)
	assert.True(t, s.IsFailed())
	require.NotNil(t, s.Error)
	assert.Equal(t, models.ErrAPIKey, s.Error.Kind)
}

func TestRestoreDropsStaleSelection(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	gone := loadedStock("GONE", 0, 0)
	require.NoError(t, f.store.SaveWatchlist(ctx, []models.Stock{loadedStock("AAPL", 1, 0.5)}))
	require.NoError(t, f.store.SaveSelected(ctx, &gone))

	require.NoError(t, f.core.Restore(ctx))
	assert.Nil(t, f.core.Selected(), "selection not on the watchlist is discarded")
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshInterval = 10 * time.Millisecond
	f := newFixture(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.core.Run(ctx)
		close(done)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	f.core.mu.Lock()
	closed := f.core.closed
	f.core.mu.Unlock()
	assert.True(t, closed)
}
