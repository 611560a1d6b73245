package watchlist

import (
	"github.com/shopspring/decimal"

	"github.com/watchdeck/watchdeck/internal/models"
)

// Summary aggregates the loaded entries for the dashboard header. Decimal
// arithmetic keeps the sums exact across many small price changes.
type Summary struct {
	Total                int             `json:"total"`
	Loaded               int             `json:"loaded"`
	Loading              int             `json:"loading"`
	Failed               int             `json:"failed"`
	TotalChange          decimal.Decimal `json:"total_change"`
	AverageChangePercent decimal.Decimal `json:"average_change_percent"`
	Gainers              int             `json:"gainers"`
	Losers               int             `json:"losers"`
	TopGainer            string          `json:"top_gainer,omitempty"`
	TopLoser             string          `json:"top_loser,omitempty"`
}

// Summarize computes aggregate stats over the current watchlist
func (c *Core) Summarize() Summary {
	stocks := c.Stocks()

	sum := Summary{
		Total:                len(stocks),
		TotalChange:          decimal.Zero,
		AverageChangePercent: decimal.Zero,
	}

	totalPct := decimal.Zero
	var bestPct, worstPct decimal.Decimal
	for _, s := range stocks {
		switch s.Status {
		case models.StatusLoading:
			sum.Loading++
			continue
		case models.StatusFailed:
			sum.Failed++
			continue
		}
		sum.Loaded++

		change := decimal.NewFromFloat(s.Change)
		pct := decimal.NewFromFloat(s.ChangePercent)
		sum.TotalChange = sum.TotalChange.Add(change)
		totalPct = totalPct.Add(pct)

		if change.IsPositive() {
			sum.Gainers++
		} else if change.IsNegative() {
			sum.Losers++
		}
		if sum.TopGainer == "" || pct.GreaterThan(bestPct) {
			sum.TopGainer, bestPct = s.Symbol, pct
		}
		if sum.TopLoser == "" || pct.LessThan(worstPct) {
			sum.TopLoser, worstPct = s.Symbol, pct
		}
	}

	if sum.Loaded > 0 {
		sum.AverageChangePercent = totalPct.
			Div(decimal.NewFromInt(int64(sum.Loaded))).
			Round(4)
	}
	return sum
}
