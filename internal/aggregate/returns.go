// Package aggregate derives presentation-ready series from loaded backtest
// artifacts. Every function is a pure transform: no I/O, no shared state.
// Non-finite values never escape; any undefined ratio is dropped or
// reported as nil.
package aggregate

import (
	"math"

	"github.com/bobmcallan/vire-research/internal/models"
)

// DailyReturn is the day-over-day portfolio return for one date.
type DailyReturn struct {
	Date      string  `json:"date"`
	ReturnPct float64 `json:"returnPct"`
}

// DailyReturns computes (curr/prev - 1) * 100 between consecutive portfolio
// history entries. Fewer than two points yields an empty series. A zero or
// missing previous value makes the ratio undefined, so that day is dropped
// rather than emitted as Inf or NaN.
func DailyReturns(history []models.PortfolioHistoryEntry) []DailyReturn {
	if len(history) < 2 {
		return nil
	}

	returns := make([]DailyReturn, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Value
		curr := history[i].Value
		if prev == nil || curr == nil {
			continue
		}

		pct := (*curr - *prev) / *prev * 100
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			continue
		}

		returns = append(returns, DailyReturn{
			Date:      history[i].Date,
			ReturnPct: pct,
		})
	}
	return returns
}
