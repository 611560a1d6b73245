// Package names resolves ticker symbols to company display names without
// spending quote API calls where possible.
package names

import (
	"context"
	"log/slog"
	"sync"

	"github.com/watchdeck/watchdeck/internal/models"
)

// Searcher is the symbol search dependency used as a last resort
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// CacheStore persists resolved names across sessions
type CacheStore interface {
	SaveCompanyNames(ctx context.Context, names map[string]string) error
	LoadCompanyNames(ctx context.Context) (map[string]string, error)
}

// Resolver maps symbols to company names, consulting in priority order: the
// static compile-time table, the persisted cache, then a live search call.
// Symbols that remain unresolved display as their own ticker.
type Resolver struct {
	mu       sync.Mutex
	cache    map[string]string
	store    CacheStore
	searcher Searcher
	logger   *slog.Logger
}

// NewResolver creates a resolver and hydrates its cache from the store.
// Both store and searcher may be nil; each disables its tier.
func NewResolver(ctx context.Context, store CacheStore, searcher Searcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	cache := make(map[string]string)
	if store != nil {
		persisted, err := store.LoadCompanyNames(ctx)
		if err != nil {
			logger.Warn("failed to load company name cache", "error", err)
		} else {
			cache = persisted
		}
	}
	return &Resolver{
		cache:    cache,
		store:    store,
		searcher: searcher,
		logger:   logger,
	}
}

// Resolve returns the display name for a symbol. Never fails: the symbol
// itself is the terminal fallback.
func (r *Resolver) Resolve(ctx context.Context, symbol string) string {
	symbol = models.NormalizeSymbol(symbol)

	if name, ok := wellKnown[symbol]; ok {
		return name
	}

	r.mu.Lock()
	name, ok := r.cache[symbol]
	r.mu.Unlock()
	if ok {
		return name
	}

	if name := r.resolveViaSearch(ctx, symbol); name != "" {
		r.remember(ctx, symbol, name)
		return name
	}

	return symbol
}

// resolveViaSearch looks the symbol up through the search endpoint and
// returns the description of the exact match, or "".
func (r *Resolver) resolveViaSearch(ctx context.Context, symbol string) string {
	if r.searcher == nil {
		return ""
	}
	results, err := r.searcher.Search(ctx, symbol)
	if err != nil {
		r.logger.Debug("name lookup via search failed", "symbol", symbol, "error", err)
		return ""
	}
	for _, res := range results {
		if models.NormalizeSymbol(res.Symbol) == symbol && res.Description != "" {
			return res.Description
		}
	}
	return ""
}

// remember caches a resolution and persists the cache, best effort
func (r *Resolver) remember(ctx context.Context, symbol, name string) {
	r.mu.Lock()
	r.cache[symbol] = name
	snapshot := make(map[string]string, len(r.cache))
	for k, v := range r.cache {
		snapshot[k] = v
	}
	r.mu.Unlock()

	if r.store == nil {
		return
	}
	if err := r.store.SaveCompanyNames(ctx, snapshot); err != nil {
		r.logger.Warn("failed to persist company name cache", "error", err)
	}
}
