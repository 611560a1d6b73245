// Package watchlist owns the watchlist state machine: entry lifecycle
// (loading/loaded/failed), the refresh scheduler, debounced search, and
// persistence of the current snapshot.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
	"github.com/watchdeck/watchdeck/internal/ratelimit"
	"github.com/watchdeck/watchdeck/internal/store"
)

// Rejections surfaced to API callers.
var (
	ErrEmptySymbol     = errors.New("symbol is required")
	ErrDuplicateSymbol = errors.New("symbol is already in the watchlist")
	ErrWatchlistFull   = errors.New("watchlist is at capacity")
	ErrSymbolNotFound  = errors.New("symbol is not in the watchlist")
)

// Config fixes the core's scheduling and capacity constants
type Config struct {
	Capacity           int
	MaxHistoryPoints   int
	RefreshInterval    time.Duration // automatic refresh cadence
	Stagger            time.Duration // per-symbol delay within a refresh pass
	QuoteTimeout       time.Duration // budget for add/refresh fetches
	RetryTimeout       time.Duration // tighter budget for retry and recovery fetches
	StuckThreshold     time.Duration // loading entries older than this are force-failed
	SupplementaryDelay time.Duration // single-symbol refresh after a successful add
	RecoverySpread     time.Duration // max random delay before retrying failed leftovers at startup
	SearchDebounce     time.Duration
	ManualCoalesce     time.Duration // window coalescing duplicate manual triggers
}

// DefaultConfig returns the production constants
func DefaultConfig() Config {
	return Config{
		Capacity:           25,
		MaxHistoryPoints:   288,
		RefreshInterval:    60 * time.Second,
		Stagger:            200 * time.Millisecond,
		QuoteTimeout:       10 * time.Second,
		RetryTimeout:       5 * time.Second,
		StuckThreshold:     2 * time.Minute,
		SupplementaryDelay: time.Second,
		RecoverySpread:     5 * time.Second,
		SearchDebounce:     300 * time.Millisecond,
		ManualCoalesce:     100 * time.Millisecond,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.MaxHistoryPoints <= 0 {
		c.MaxHistoryPoints = d.MaxHistoryPoints
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = d.RefreshInterval
	}
	if c.Stagger < 0 {
		c.Stagger = d.Stagger
	}
	if c.QuoteTimeout <= 0 {
		c.QuoteTimeout = d.QuoteTimeout
	}
	if c.RetryTimeout <= 0 {
		c.RetryTimeout = d.RetryTimeout
	}
	if c.StuckThreshold <= 0 {
		c.StuckThreshold = d.StuckThreshold
	}
	if c.SupplementaryDelay <= 0 {
		c.SupplementaryDelay = d.SupplementaryDelay
	}
	if c.RecoverySpread <= 0 {
		c.RecoverySpread = d.RecoverySpread
	}
	if c.SearchDebounce <= 0 {
		c.SearchDebounce = d.SearchDebounce
	}
	if c.ManualCoalesce <= 0 {
		c.ManualCoalesce = d.ManualCoalesce
	}
}

// QuoteGetter is the quote service dependency
type QuoteGetter interface {
	GetQuoteWithTimeout(ctx context.Context, symbol string, timeout time.Duration) (models.Stock, error)
}

// SearchService is the symbol search dependency
type SearchService interface {
	Search(ctx context.Context, query string) []models.SearchResult
}

// RefreshLimiter gates manual refresh-all actions
type RefreshLimiter interface {
	Check(ctx context.Context) ratelimit.Result
	Record(ctx context.Context) error
}

// EventPublisher receives watchlist lifecycle events, best effort. May be nil.
type EventPublisher interface {
	PublishStockAdded(ctx context.Context, stock *models.Stock) error
	PublishStockRemoved(ctx context.Context, symbol string) error
	PublishQuoteUpdated(ctx context.Context, stock *models.Stock) error
	PublishRefreshCompleted(ctx context.Context, manual bool) error
}

// Notifier surfaces transient user-facing notices (the browser renders them
// as toasts). May be nil, in which case notices only reach the log.
type Notifier interface {
	Notify(level, message string)
}

// Core owns the watchlist array, the selected stock, and search state. All
// state transitions are pure reducer applications performed under a single
// mutex; async fetch completions carrying a stale per-symbol generation are
// discarded.
type Core struct {
	cfg      Config
	quotes   QuoteGetter
	searcher SearchService
	store    store.Store
	limiter  RefreshLimiter
	events   EventPublisher
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	stocks      []models.Stock
	selected    *models.Stock
	generations map[string]uint64
	timers      map[*time.Timer]struct{}
	closed      bool

	// search pipeline state
	searchSeq     uint64
	searchTimer   *time.Timer
	searchWaiter  chan []models.SearchResult
	searchResults []models.SearchResult

	// manual refresh coalescing; manualPending is closed once the leading
	// trigger's limiter verdict lands in lastManualResult
	lastManualTrigger time.Time
	lastManualResult  ratelimit.Result
	manualPending     chan struct{}
}

// New creates a watchlist core. quotes, searcher and st are required;
// limiter, events and notifier may be nil.
func New(cfg Config, quotes QuoteGetter, searcher SearchService, st store.Store, limiter RefreshLimiter, events EventPublisher, notifier Notifier, logger *slog.Logger) *Core {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Core{
		cfg:         cfg,
		quotes:      quotes,
		searcher:    searcher,
		store:       st,
		limiter:     limiter,
		events:      events,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
		generations: make(map[string]uint64),
		timers:      make(map[*time.Timer]struct{}),
	}
}

// Stocks returns a copy of the current watchlist
func (c *Core) Stocks() []models.Stock {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Stock, len(c.stocks))
	copy(out, c.stocks)
	return out
}

// Selected returns a copy of the selected stock, nil when none
func (c *Core) Selected() *models.Stock {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	s := *c.selected
	return &s
}

// AddStock inserts an optimistic loading placeholder for the symbol and
// fetches its quote in the background. Duplicate symbols and a full
// watchlist are rejected with a notification.
func (c *Core) AddStock(ctx context.Context, symbol string) error {
	sym := models.NormalizeSymbol(symbol)
	if sym == "" {
		return ErrEmptySymbol
	}

	c.mu.Lock()
	if indexOf(c.stocks, sym) >= 0 {
		c.mu.Unlock()
		c.notify("warning", fmt.Sprintf("%s is already in your watchlist", sym))
		return ErrDuplicateSymbol
	}
	if len(c.stocks) >= c.cfg.Capacity {
		c.mu.Unlock()
		c.notify("warning", fmt.Sprintf("Watchlist is full (max %d stocks)", c.cfg.Capacity))
		return ErrWatchlistFull
	}
	c.stocks = appendStock(c.stocks, models.NewPlaceholder(sym, c.now()))
	gen := c.bumpGenerationLocked(sym)
	c.mu.Unlock()

	c.persistWatchlist(ctx)

	go c.completeFetch(sym, gen, c.cfg.QuoteTimeout, fetchAdd)
	return nil
}

// RemoveStock deletes the entry and clears the selection if it was selected
func (c *Core) RemoveStock(ctx context.Context, symbol string) error {
	sym := models.NormalizeSymbol(symbol)

	c.mu.Lock()
	next, removed := removeSymbol(c.stocks, sym)
	if !removed {
		c.mu.Unlock()
		return ErrSymbolNotFound
	}
	c.stocks = next
	// Invalidate any in-flight fetch for the removed symbol.
	c.bumpGenerationLocked(sym)
	clearedSelection := false
	if c.selected != nil && c.selected.Symbol == sym {
		c.selected = nil
		clearedSelection = true
	}
	c.mu.Unlock()

	c.persistWatchlist(ctx)
	if clearedSelection {
		c.persistSelected(ctx)
	}
	if c.events != nil {
		if err := c.events.PublishStockRemoved(ctx, sym); err != nil {
			c.logger.Warn("failed to publish stock removed event", "symbol", sym, "error", err)
		}
	}
	return nil
}

// SelectStock sets the detail-view target. No fetch side effects.
func (c *Core) SelectStock(ctx context.Context, symbol string) error {
	sym := models.NormalizeSymbol(symbol)

	c.mu.Lock()
	idx := indexOf(c.stocks, sym)
	if idx < 0 {
		c.mu.Unlock()
		return ErrSymbolNotFound
	}
	s := c.stocks[idx]
	c.selected = &s
	c.mu.Unlock()

	c.persistSelected(ctx)
	return nil
}

// ClearSelection drops the detail-view target
func (c *Core) ClearSelection(ctx context.Context) {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
	c.persistSelected(ctx)
}

// RetryStock re-fetches a previously failed entry, preserving its price
// history across the Failed -> Loading transition.
func (c *Core) RetryStock(ctx context.Context, symbol string) error {
	sym := models.NormalizeSymbol(symbol)

	c.mu.Lock()
	if indexOf(c.stocks, sym) < 0 {
		c.mu.Unlock()
		return ErrSymbolNotFound
	}
	c.stocks = markLoading(c.stocks, sym, c.now())
	gen := c.bumpGenerationLocked(sym)
	c.mu.Unlock()

	c.persistWatchlist(ctx)

	go c.completeFetch(sym, gen, c.cfg.RetryTimeout, fetchRefresh)
	return nil
}

// Close stops all pending timers and releases any search waiter. The core
// must not be used afterwards.
func (c *Core) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for t := range c.timers {
		t.Stop()
	}
	c.timers = map[*time.Timer]struct{}{}
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	c.searchSeq++
	waiter := c.searchWaiter
	c.searchWaiter = nil
	c.mu.Unlock()

	if waiter != nil {
		waiter <- []models.SearchResult{}
		close(waiter)
	}
}

// afterFunc schedules fn on a tracked timer so Close can release it
func (c *Core) afterFunc(d time.Duration, fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, t)
		dead := c.closed
		c.mu.Unlock()
		if !dead {
			fn()
		}
	})
	c.timers[t] = struct{}{}
	c.mu.Unlock()
}

// bumpGenerationLocked advances the symbol's request generation. Callers
// must hold c.mu.
func (c *Core) bumpGenerationLocked(symbol string) uint64 {
	c.generations[symbol]++
	return c.generations[symbol]
}

func (c *Core) currentGenerationLocked(symbol string, gen uint64) bool {
	return c.generations[symbol] == gen
}

func (c *Core) notify(level, message string) {
	c.logger.Info("user notification", "level", level, "message", message)
	if c.notifier != nil {
		c.notifier.Notify(level, message)
	}
}

func (c *Core) persistWatchlist(ctx context.Context) {
	c.mu.Lock()
	snapshot := make([]models.Stock, len(c.stocks))
	copy(snapshot, c.stocks)
	c.mu.Unlock()

	if err := c.store.SaveWatchlist(ctx, snapshot); err != nil {
		c.logger.Warn("failed to persist watchlist", "error", err)
	}
}

func (c *Core) persistSelected(ctx context.Context) {
	c.mu.Lock()
	var snapshot *models.Stock
	if c.selected != nil {
		s := *c.selected
		snapshot = &s
	}
	c.mu.Unlock()

	if err := c.store.SaveSelected(ctx, snapshot); err != nil {
		c.logger.Warn("failed to persist selected stock", "error", err)
	}
}
