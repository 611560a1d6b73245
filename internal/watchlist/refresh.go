package watchlist

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
	"github.com/watchdeck/watchdeck/internal/ratelimit"
)

type fetchKind int

const (
	fetchAdd fetchKind = iota
	fetchRefresh
)

// completeFetch runs a quote fetch to completion and applies the result
// against the latest state. Completions whose generation has been superseded
// (a newer fetch started, or the entry was removed) are dropped: last writer
// wins by generation, not by arrival order.
func (c *Core) completeFetch(symbol string, gen uint64, timeout time.Duration, kind fetchKind) {
	ctx := context.Background()
	fresh, err := c.quotes.GetQuoteWithTimeout(ctx, symbol, timeout)

	c.mu.Lock()
	if !c.currentGenerationLocked(symbol, gen) {
		c.mu.Unlock()
		return
	}

	if err != nil {
		qerr := models.ClassifyError(err)
		if qerr.Kind == models.ErrInvalidSymbol {
			// Retrying an unknown symbol cannot help; drop the entry.
			c.stocks, _ = removeSymbol(c.stocks, symbol)
			cleared := false
			if c.selected != nil && c.selected.Symbol == symbol {
				c.selected = nil
				cleared = true
			}
			c.mu.Unlock()

			c.notify("error", fmt.Sprintf("%s is not a valid symbol", symbol))
			c.persistWatchlist(ctx)
			if cleared {
				c.persistSelected(ctx)
			}
			return
		}

		c.stocks = markFailed(c.stocks, symbol, qerr, c.now())
		c.mu.Unlock()

		c.notify("error", fmt.Sprintf("Failed to update %s: %s", symbol, qerr.Kind))
		c.persistWatchlist(ctx)
		return
	}

	c.stocks = applyQuote(c.stocks, fresh, c.cfg.MaxHistoryPoints)
	var updated *models.Stock
	if idx := indexOf(c.stocks, symbol); idx >= 0 {
		s := c.stocks[idx]
		updated = &s
	}
	selectionSynced := false
	if updated != nil && c.selected != nil && c.selected.Symbol == symbol {
		s := *updated
		c.selected = &s
		selectionSynced = true
	}
	c.mu.Unlock()

	c.persistWatchlist(ctx)
	if selectionSynced {
		c.persistSelected(ctx)
	}

	if c.events != nil && updated != nil {
		var perr error
		if kind == fetchAdd {
			perr = c.events.PublishStockAdded(ctx, updated)
		} else {
			perr = c.events.PublishQuoteUpdated(ctx, updated)
		}
		if perr != nil {
			c.logger.Warn("failed to publish stock event", "symbol", symbol, "error", perr)
		}
	}

	if kind == fetchAdd {
		// One extra sample shortly after the add gives the chart a second
		// point for immediate visual feedback.
		c.afterFunc(c.cfg.SupplementaryDelay, func() {
			c.refreshSymbol(symbol, c.cfg.QuoteTimeout)
		})
	}
}

// refreshSymbol transitions one entry to Loading and fetches its quote.
// Runs synchronously; callers schedule it on a goroutine or timer.
func (c *Core) refreshSymbol(symbol string, timeout time.Duration) {
	c.mu.Lock()
	if indexOf(c.stocks, symbol) < 0 {
		c.mu.Unlock()
		return
	}
	c.stocks = markLoading(c.stocks, symbol, c.now())
	gen := c.bumpGenerationLocked(symbol)
	c.mu.Unlock()

	c.completeFetch(symbol, gen, timeout, fetchRefresh)
}

// RefreshAll refreshes eligible entries, staggered to avoid a request
// burst. Automatic passes skip failed entries; manual passes include them as
// an auto-retry. Manual passes are rate limited and coalesced over a short
// window.
func (c *Core) RefreshAll(ctx context.Context, manual bool) ratelimit.Result {
	if manual {
		c.mu.Lock()
		if !c.lastManualTrigger.IsZero() && c.now().Sub(c.lastManualTrigger) < c.cfg.ManualCoalesce {
			// Duplicate trigger; the earlier one already did the work. Wait
			// for its limiter verdict rather than assuming it was allowed.
			pending := c.manualPending
			c.mu.Unlock()
			if pending != nil {
				<-pending
			}
			c.mu.Lock()
			res := c.lastManualResult
			c.mu.Unlock()
			return res
		}
		c.lastManualTrigger = c.now()
		pending := make(chan struct{})
		c.manualPending = pending
		c.mu.Unlock()

		res := ratelimit.Result{Allowed: true}
		if c.limiter != nil {
			res = c.limiter.Check(ctx)
		}
		c.mu.Lock()
		c.lastManualResult = res
		c.manualPending = nil
		c.mu.Unlock()
		close(pending)

		if !res.Allowed {
			c.notify("warning", ratelimit.ErrorMessage(res))
			return res
		}
		if c.limiter != nil {
			if err := c.limiter.Record(ctx); err != nil {
				c.logger.Warn("failed to record manual refresh", "error", err)
			}
		}
	}

	// Self-healing: a Loading entry past the stuck threshold will never
	// complete (no cancellation exists), so force it to Failed first.
	c.mu.Lock()
	now := c.now()
	next, stuck := failStuck(c.stocks, now.Add(-c.cfg.StuckThreshold), now)
	c.stocks = next

	targets := make([]string, 0, len(c.stocks))
	for _, s := range c.stocks {
		if s.IsLoading() {
			continue
		}
		if s.IsFailed() && !manual {
			continue
		}
		targets = append(targets, s.Symbol)
	}
	c.mu.Unlock()

	if len(stuck) > 0 {
		c.logger.Warn("force-failed stuck entries", "symbols", stuck)
		c.persistWatchlist(ctx)
	}

	for i, symbol := range targets {
		sym := symbol
		c.afterFunc(time.Duration(i)*c.cfg.Stagger, func() {
			c.refreshSymbol(sym, c.cfg.QuoteTimeout)
		})
	}

	if c.events != nil {
		if err := c.events.PublishRefreshCompleted(ctx, manual); err != nil {
			c.logger.Warn("failed to publish refresh event", "error", err)
		}
	}

	return ratelimit.Result{Allowed: true}
}

// Restore hydrates state from the store and recovers entries left mid-flight
// by a previous session: Loading leftovers are re-fetched with the tight
// timeout, Failed leftovers with retryable errors retried after a small
// randomized delay. Failures that retrying cannot fix, a bad key or a
// delisted symbol, stay failed until the user acts.
func (c *Core) Restore(ctx context.Context) error {
	stocks, err := c.store.LoadWatchlist(ctx)
	if err != nil {
		return fmt.Errorf("failed to load watchlist snapshot: %w", err)
	}
	selected, err := c.store.LoadSelected(ctx)
	if err != nil {
		return fmt.Errorf("failed to load selected stock: %w", err)
	}

	c.mu.Lock()
	c.stocks = stocks
	if selected != nil && indexOf(stocks, selected.Symbol) >= 0 {
		c.selected = selected
	}
	var loading, failed []string
	for _, s := range stocks {
		switch {
		case s.IsLoading():
			loading = append(loading, s.Symbol)
		case s.IsFailed():
			if s.Error == nil || s.Error.Retryable() {
				failed = append(failed, s.Symbol)
			}
		}
	}
	c.mu.Unlock()

	for _, sym := range loading {
		s := sym
		go c.refreshSymbol(s, c.cfg.RetryTimeout)
	}
	for _, sym := range failed {
		s := sym
		delay := time.Duration(rand.Int63n(int64(c.cfg.RecoverySpread)))
		c.afterFunc(delay, func() {
			c.refreshSymbol(s, c.cfg.RetryTimeout)
		})
	}

	if len(loading)+len(failed) > 0 {
		c.logger.Info("recovered entries from previous session",
			"loading", len(loading), "failed", len(failed))
	}
	return nil
}

// Run drives the automatic refresh loop until the context is cancelled
func (c *Core) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Close()
			return
		case <-ticker.C:
			c.RefreshAll(context.Background(), false)
		}
	}
}
