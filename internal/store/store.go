// Package store persists watchlist snapshots and related state as JSON
// key-value pairs. Implementations exist for Redis, PostgreSQL, and an
// in-memory map used in tests.
package store

import (
	"context"
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
)

// Snapshot keys. All values are JSON documents; timestamps serialize as
// RFC 3339 strings.
const (
	keyWatchlist         = "watchdeck:watchlist"
	keySelected          = "watchdeck:selected"
	keyRefreshHistory    = "watchdeck:refresh_history"
	keyLastManualRefresh = "watchdeck:last_manual_refresh"
	keyCompanyNames      = "watchdeck:company_names"
)

// Store is the narrow persistence interface consumed by the watchlist core,
// rate limiter, and name resolver. Load methods return zero values, not
// errors, when nothing has been stored yet.
type Store interface {
	SaveWatchlist(ctx context.Context, stocks []models.Stock) error
	LoadWatchlist(ctx context.Context) ([]models.Stock, error)

	// SaveSelected with a nil stock clears the selection.
	SaveSelected(ctx context.Context, stock *models.Stock) error
	LoadSelected(ctx context.Context) (*models.Stock, error)

	SaveRefreshHistory(ctx context.Context, history []time.Time) error
	LoadRefreshHistory(ctx context.Context) ([]time.Time, error)

	SaveLastManualRefresh(ctx context.Context, t time.Time) error
	LoadLastManualRefresh(ctx context.Context) (time.Time, error)

	SaveCompanyNames(ctx context.Context, names map[string]string) error
	LoadCompanyNames(ctx context.Context) (map[string]string, error)
}
