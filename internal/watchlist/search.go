package watchlist

import (
	"context"
	"strings"
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
)

// SearchStocks runs the debounced search pipeline. The returned channel
// yields exactly one result set and is then closed. A newer query cancels
// the pending debounce timer, so only the last query within the window is
// issued; superseded callers receive an empty set. Blank queries clear the
// results synchronously without a network call.
func (c *Core) SearchStocks(query string) <-chan []models.SearchResult {
	ch := make(chan []models.SearchResult, 1)
	q := strings.TrimSpace(query)

	c.mu.Lock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	superseded := c.searchWaiter
	c.searchWaiter = nil
	c.searchSeq++

	if q == "" {
		c.searchResults = nil
		c.mu.Unlock()
		release(superseded)
		ch <- []models.SearchResult{}
		close(ch)
		return ch
	}

	seq := c.searchSeq
	c.searchWaiter = ch
	c.searchTimer = time.AfterFunc(c.cfg.SearchDebounce, func() {
		c.executeSearch(q, seq)
	})
	c.mu.Unlock()

	release(superseded)
	return ch
}

// ClearSearch cancels any pending query and empties the results
func (c *Core) ClearSearch() {
	c.mu.Lock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	waiter := c.searchWaiter
	c.searchWaiter = nil
	c.searchSeq++
	c.searchResults = nil
	c.mu.Unlock()

	release(waiter)
}

// SearchResults returns the most recent delivered result set
func (c *Core) SearchResults() []models.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.SearchResult, len(c.searchResults))
	copy(out, c.searchResults)
	return out
}

// executeSearch performs the remote lookup after the debounce window. Stale
// sequence numbers mean a newer query arrived mid-flight; their results are
// discarded.
func (c *Core) executeSearch(query string, seq uint64) {
	results := c.searcher.Search(context.Background(), query)

	c.mu.Lock()
	if seq != c.searchSeq {
		c.mu.Unlock()
		return
	}

	// Symbols already on the watchlist are excluded from the dropdown.
	watched := make(map[string]struct{}, len(c.stocks))
	for _, s := range c.stocks {
		watched[s.Symbol] = struct{}{}
	}
	filtered := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		if _, ok := watched[models.NormalizeSymbol(r.Symbol)]; ok {
			continue
		}
		filtered = append(filtered, r)
	}

	c.searchResults = filtered
	c.searchTimer = nil
	waiter := c.searchWaiter
	c.searchWaiter = nil
	c.mu.Unlock()

	if waiter != nil {
		waiter <- filtered
		close(waiter)
	}
}

func release(waiter chan []models.SearchResult) {
	if waiter != nil {
		waiter <- []models.SearchResult{}
		close(waiter)
	}
}
