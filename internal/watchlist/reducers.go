package watchlist

import (
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
	"github.com/watchdeck/watchdeck/internal/quote"
)

// Reducers are pure transformations of the watchlist slice. They never
// mutate their input: every transition produces a fresh slice, so a
// completion applying against the latest state can never lose a concurrent
// update.

func indexOf(list []models.Stock, symbol string) int {
	for i := range list {
		if list[i].Symbol == symbol {
			return i
		}
	}
	return -1
}

func appendStock(list []models.Stock, s models.Stock) []models.Stock {
	out := make([]models.Stock, len(list), len(list)+1)
	copy(out, list)
	return append(out, s)
}

func removeSymbol(list []models.Stock, symbol string) ([]models.Stock, bool) {
	idx := indexOf(list, symbol)
	if idx < 0 {
		return list, false
	}
	out := make([]models.Stock, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out, true
}

// markLoading transitions an entry to Loading, clearing any previous error
func markLoading(list []models.Stock, symbol string, now time.Time) []models.Stock {
	return transform(list, symbol, func(s models.Stock) models.Stock {
		s.Status = models.StatusLoading
		s.Error = nil
		s.LastUpdated = now
		return s
	})
}

// markFailed transitions an entry to Failed with the classified error
func markFailed(list []models.Stock, symbol string, qerr *models.QuoteError, now time.Time) []models.Stock {
	return transform(list, symbol, func(s models.Stock) models.Stock {
		s.Status = models.StatusFailed
		s.Error = qerr
		s.LastUpdated = now
		return s
	})
}

// applyQuote merges a freshly fetched stock into the entry, preserving the
// existing price history, appending one new sample, and pruning to the
// current day and the configured cap.
func applyQuote(list []models.Stock, fresh models.Stock, maxPoints int) []models.Stock {
	return transform(list, fresh.Symbol, func(prev models.Stock) models.Stock {
		fresh.PriceHistory = quote.SameDay(prev.PriceHistory, fresh.LastUpdated)
		fresh.PriceHistory = quote.AddPriceToHistory(fresh, maxPoints)
		fresh.Status = models.StatusLoaded
		fresh.Error = nil
		return fresh
	})
}

// failStuck force-fails Loading entries whose last update is older than the
// cutoff. There is no per-request cancellation, so this is the recovery path
// for fetches that never came back. Returns the affected symbols.
func failStuck(list []models.Stock, cutoff, now time.Time) ([]models.Stock, []string) {
	var stuck []string
	out := make([]models.Stock, len(list))
	copy(out, list)
	for i := range out {
		if out[i].Status == models.StatusLoading && out[i].LastUpdated.Before(cutoff) {
			out[i].Status = models.StatusFailed
			out[i].Error = models.NewQuoteError(models.ErrTimeout, "fetch never completed")
			out[i].LastUpdated = now
			stuck = append(stuck, out[i].Symbol)
		}
	}
	if len(stuck) == 0 {
		return list, nil
	}
	return out, stuck
}

// transform replaces the entry matching symbol with fn(entry), copying the
// slice. Unknown symbols return the input unchanged.
func transform(list []models.Stock, symbol string, fn func(models.Stock) models.Stock) []models.Stock {
	idx := indexOf(list, symbol)
	if idx < 0 {
		return list
	}
	out := make([]models.Stock, len(list))
	copy(out, list)
	out[idx] = fn(out[idx])
	return out
}
