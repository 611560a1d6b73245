package watchlist

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchdeck/watchdeck/internal/models"
	"github.com/watchdeck/watchdeck/internal/ratelimit"
	"github.com/watchdeck/watchdeck/internal/store"
)

// stubQuotes is a controllable QuoteGetter. Per-symbol errors are injectable
// and an optional gate blocks fetches until released.
type stubQuotes struct {
	mu    sync.Mutex
	errs  map[string]error
	calls map[string]int
	price float64
	gate  chan struct{}
}

func newStubQuotes() *stubQuotes {
	return &stubQuotes{
		errs:  make(map[string]error),
		calls: make(map[string]int),
		price: 100.0,
	}
}

func (q *stubQuotes) GetQuoteWithTimeout(_ context.Context, symbol string, _ time.Duration) (models.Stock, error) {
	q.mu.Lock()
	gate := q.gate
	q.mu.Unlock()
	if gate != nil {
		<-gate
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls[symbol]++
	if err := q.errs[symbol]; err != nil {
		return models.Stock{}, err
	}
	q.price += 0.25
	return models.Stock{
		Symbol:        symbol,
		CompanyName:   symbol + " Inc",
		CurrentPrice:  q.price,
		Change:        1.5,
		ChangePercent: 0.75,
		LastUpdated:   time.Now(),
		Status:        models.StatusLoaded,
		PriceHistory:  []models.PricePoint{},
	}, nil
}

func (q *stubQuotes) setErr(symbol string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err == nil {
		delete(q.errs, symbol)
	} else {
		q.errs[symbol] = err
	}
}

func (q *stubQuotes) count(symbol string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls[symbol]
}

type stubSearcher struct {
	mu      sync.Mutex
	queries []string
	results []models.SearchResult
}

func (s *stubSearcher) Search(_ context.Context, query string) []models.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.results
}

func (s *stubSearcher) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.queries))
	copy(out, s.queries)
	return out
}

type stubLimiter struct {
	mu      sync.Mutex
	result  ratelimit.Result
	checks  int
	records int
}

func (l *stubLimiter) Check(_ context.Context) ratelimit.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checks++
	return l.result
}

func (l *stubLimiter) Record(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records++
	return nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) record(evt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *eventRecorder) PublishStockAdded(_ context.Context, s *models.Stock) error {
	return r.record(models.EventStockAdded + ":" + s.Symbol)
}

func (r *eventRecorder) PublishStockRemoved(_ context.Context, symbol string) error {
	return r.record(models.EventStockRemoved + ":" + symbol)
}

func (r *eventRecorder) PublishQuoteUpdated(_ context.Context, s *models.Stock) error {
	return r.record(models.EventQuoteUpdated + ":" + s.Symbol)
}

func (r *eventRecorder) PublishRefreshCompleted(_ context.Context, _ bool) error {
	return r.record(models.EventRefreshCompleted)
}

func (r *eventRecorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []string
}

func (n *noticeRecorder) Notify(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, level+": "+message)
}

func (n *noticeRecorder) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.notices))
	copy(out, n.notices)
	return out
}

type coreFixture struct {
	core     *Core
	quotes   *stubQuotes
	searcher *stubSearcher
	store    *store.MemoryStore
	limiter  *stubLimiter
	events   *eventRecorder
	notices  *noticeRecorder
}

// testConfig shrinks the scheduling constants so async paths settle fast
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Stagger = time.Millisecond
	cfg.QuoteTimeout = time.Second
	cfg.RetryTimeout = time.Second
	cfg.SupplementaryDelay = 5 * time.Millisecond
	cfg.SearchDebounce = 20 * time.Millisecond
	cfg.ManualCoalesce = 200 * time.Millisecond
	cfg.RecoverySpread = 5 * time.Millisecond
	return cfg
}

func newFixture(t *testing.T, cfg Config) *coreFixture {
	t.Helper()
	f := &coreFixture{
		quotes:   newStubQuotes(),
		searcher: &stubSearcher{},
		store:    store.NewMemoryStore(),
		limiter:  &stubLimiter{result: ratelimit.Result{Allowed: true}},
		events:   &eventRecorder{},
		notices:  &noticeRecorder{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.core = New(cfg, f.quotes, f.searcher, f.store, f.limiter, f.events, f.notices, logger)
	t.Cleanup(f.core.Close)
	return f
}

func (f *coreFixture) stock(t *testing.T, symbol string) (models.Stock, bool) {
	t.Helper()
	for _, s := range f.core.Stocks() {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return models.Stock{}, false
}

// seed replaces the watchlist directly, bypassing the fetch pipeline
func (f *coreFixture) seed(stocks ...models.Stock) {
	f.core.mu.Lock()
	f.core.stocks = stocks
	f.core.mu.Unlock()
}

func loadedStock(symbol string, change, changePct float64) models.Stock {
	return models.Stock{
		Symbol:        symbol,
		CompanyName:   symbol + " Inc",
		CurrentPrice:  100,
		Change:        change,
		ChangePercent: changePct,
		LastUpdated:   time.Now(),
		Status:        models.StatusLoaded,
		PriceHistory:  []models.PricePoint{},
	}
}

func failedStock(symbol string) models.Stock {
	return models.Stock{
		Symbol:      symbol,
		CompanyName: symbol,
		LastUpdated: time.Now(),
		Status:      models.StatusFailed,
		Error:       models.NewQuoteError(models.ErrNetwork, "connection refused"),
	}
}

func TestAddStockLifecycle(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	require.NoError(t, f.core.AddStock(ctx, "aapl"))

	// The placeholder is visible immediately, before the fetch resolves.
	placeholder, ok := f.stock(t, "AAPL")
	if ok && placeholder.IsLoading() {
		assert.Equal(t, models.LoadingName, placeholder.CompanyName)
	}

	require.Eventually(t, func() bool {
		s, ok := f.stock(t, "AAPL")
		return ok && s.Status == models.StatusLoaded
	}, 2*time.Second, 5*time.Millisecond)

	s, _ := f.stock(t, "AAPL")
	assert.Equal(t, "AAPL Inc", s.CompanyName)
	assert.Greater(t, s.CurrentPrice, 100.0)
	assert.Nil(t, s.Error)
	assert.NotEmpty(t, s.PriceHistory)

	t.Run("supplementary refresh adds a second chart point", func(t *testing.T) {
		require.Eventually(t, func() bool {
			s, ok := f.stock(t, "AAPL")
			return ok && len(s.PriceHistory) >= 2
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("add event published", func(t *testing.T) {
		require.Eventually(t, func() bool {
			for _, e := range f.events.seen() {
				if e == models.EventStockAdded+":AAPL" {
					return true
				}
			}
			return false
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("snapshot persisted", func(t *testing.T) {
		saved, err := f.store.LoadWatchlist(ctx)
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, "AAPL", saved[0].Symbol)
	})
}

func TestAddStockRejections(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	t.Run("empty symbol", func(t *testing.T) {
		assert.ErrorIs(t, f.core.AddStock(ctx, "   "), ErrEmptySymbol)
	})

	t.Run("duplicate", func(t *testing.T) {
		require.NoError(t, f.core.AddStock(ctx, "AAPL"))
		assert.ErrorIs(t, f.core.AddStock(ctx, "aapl"), ErrDuplicateSymbol)
		assert.Contains(t, f.notices.seen(), "warning: AAPL is already in your watchlist")
	})
}

func TestAddStockCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = 2
	f := newFixture(t, cfg)
	ctx := context.Background()

	require.NoError(t, f.core.AddStock(ctx, "AAPL"))
	require.NoError(t, f.core.AddStock(ctx, "MSFT"))
	assert.ErrorIs(t, f.core.AddStock(ctx, "TSLA"), ErrWatchlistFull)
	assert.Contains(t, f.notices.seen(), "warning: Watchlist is full (max 2 stocks)")
	assert.Len(t, f.core.Stocks(), 2)
}

func TestAddStockInvalidSymbolRemovesEntry(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	f.quotes.setErr("FAKE", models.NewQuoteError(models.ErrInvalidSymbol, "no quote data for FAKE"))
	require.NoError(t, f.core.AddStock(ctx, "FAKE"))

	require.Eventually(t, func() bool {
		_, ok := f.stock(t, "FAKE")
		return !ok
	}, 2*time.Second, 5*time.Millisecond)

	assert.Contains(t, f.notices.seen(), "error: FAKE is not a valid symbol")
}

func TestAddStockFetchFailure(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	f.quotes.setErr("AAPL", models.NewQuoteError(models.ErrNetwork, "connection refused"))
	require.NoError(t, f.core.AddStock(ctx, "AAPL"))

	require.Eventually(t, func() bool {
		s, ok := f.stock(t, "AAPL")
		return ok && s.IsFailed()
	}, 2*time.Second, 5*time.Millisecond)

	s, _ := f.stock(t, "AAPL")
	require.NotNil(t, s.Error)
	assert.Equal(t, models.ErrNetwork, s.Error.Kind)
	assert.Contains(t, f.notices.seen(), "error: Failed to update AAPL: NETWORK_ERROR")
}

func TestRemoveStock(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	f.seed(loadedStock("AAPL", 1, 0.5), loadedStock("MSFT", 2, 1.0))
	require.NoError(t, f.core.SelectStock(ctx, "AAPL"))

	t.Run("unknown symbol", func(t *testing.T) {
		assert.ErrorIs(t, f.core.RemoveStock(ctx, "TSLA"), ErrSymbolNotFound)
	})

	t.Run("removal clears a matching selection", func(t *testing.T) {
		require.NoError(t, f.core.RemoveStock(ctx, "AAPL"))

		_, ok := f.stock(t, "AAPL")
		assert.False(t, ok)
		assert.Nil(t, f.core.Selected())
		assert.Contains(t, f.events.seen(), models.EventStockRemoved+":AAPL")

		selected, err := f.store.LoadSelected(ctx)
		require.NoError(t, err)
		assert.Nil(t, selected)
	})

	t.Run("removal keeps an unrelated selection", func(t *testing.T) {
		f.seed(loadedStock("MSFT", 2, 1.0), loadedStock("TSLA", -1, -0.5))
		require.NoError(t, f.core.SelectStock(ctx, "MSFT"))
		require.NoError(t, f.core.RemoveStock(ctx, "TSLA"))

		selected := f.core.Selected()
		require.NotNil(t, selected)
		assert.Equal(t, "MSFT", selected.Symbol)
	})
}

func TestSelectStock(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	f.seed(loadedStock("AAPL", 1, 0.5))

	assert.ErrorIs(t, f.core.SelectStock(ctx, "TSLA"), ErrSymbolNotFound)

	require.NoError(t, f.core.SelectStock(ctx, "aapl"))
	selected := f.core.Selected()
	require.NotNil(t, selected)
	assert.Equal(t, "AAPL", selected.Symbol)

	persisted, err := f.store.LoadSelected(ctx)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "AAPL", persisted.Symbol)

	f.core.ClearSelection(ctx)
	assert.Nil(t, f.core.Selected())
}

func TestRetryStock(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	require.NoError(t, f.core.AddStock(ctx, "AAPL"))
	require.Eventually(t, func() bool {
		s, ok := f.stock(t, "AAPL")
		return ok && s.Status == models.StatusLoaded && len(s.PriceHistory) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	t.Run("unknown symbol", func(t *testing.T) {
		assert.ErrorIs(t, f.core.RetryStock(ctx, "TSLA"), ErrSymbolNotFound)
	})

	f.quotes.setErr("AAPL", models.NewQuoteError(models.ErrNetwork, "connection refused"))
	require.NoError(t, f.core.RetryStock(ctx, "AAPL"))
	require.Eventually(t, func() bool {
		s, ok := f.stock(t, "AAPL")
		return ok && s.IsFailed()
	}, 2*time.Second, 5*time.Millisecond)

	failed, _ := f.stock(t, "AAPL")
	historyLen := len(failed.PriceHistory)
	assert.GreaterOrEqual(t, historyLen, 2, "failure must not drop price history")

	f.quotes.setErr("AAPL", nil)
	require.NoError(t, f.core.RetryStock(ctx, "AAPL"))
	require.Eventually(t, func() bool {
		s, ok := f.stock(t, "AAPL")
		return ok && s.Status == models.StatusLoaded
	}, 2*time.Second, 5*time.Millisecond)

	recovered, _ := f.stock(t, "AAPL")
	assert.Nil(t, recovered.Error)
	assert.Equal(t, historyLen+1, len(recovered.PriceHistory), "history survives the failed interval")
}

func TestStaleFetchCompletionIsDropped(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	gate := make(chan struct{})
	f.quotes.gate = gate

	require.NoError(t, f.core.AddStock(ctx, "AAPL"))
	require.NoError(t, f.core.RemoveStock(ctx, "AAPL"))

	// Let the in-flight add complete; its generation is stale so the result
	// must not resurrect the removed entry.
	close(gate)
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, f.core.Stocks())

	saved, err := f.store.LoadWatchlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)
}
