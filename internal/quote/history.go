package quote

import (
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
)

// DefaultMaxHistoryPoints bounds the per-symbol price history ring. 288
// points is 5-minute granularity over 24 hours.
const DefaultMaxHistoryPoints = 288

// AddPriceToHistory appends one sample derived from the stock's current
// fields and returns the history truncated to the most recent maxPoints.
// Pure function; the caller applies same-day filtering separately.
func AddPriceToHistory(stock models.Stock, maxPoints int) []models.PricePoint {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxHistoryPoints
	}

	point := models.PricePoint{
		Timestamp:     stock.LastUpdated,
		Price:         stock.CurrentPrice,
		Change:        stock.Change,
		ChangePercent: stock.ChangePercent,
	}

	history := make([]models.PricePoint, 0, len(stock.PriceHistory)+1)
	history = append(history, stock.PriceHistory...)
	history = append(history, point)

	if len(history) > maxPoints {
		history = history[len(history)-maxPoints:]
	}
	return history
}

// SameDay keeps only the samples sharing a calendar date with now. The
// charts show today's movement only.
func SameDay(history []models.PricePoint, now time.Time) []models.PricePoint {
	y, m, d := now.Date()
	out := make([]models.PricePoint, 0, len(history))
	for _, p := range history {
		py, pm, pd := p.Timestamp.Date()
		if py == y && pm == m && pd == d {
			out = append(out, p)
		}
	}
	return out
}
