package aggregate

import (
	"math"
	"strings"
	"time"

	"github.com/bobmcallan/vire-research/internal/models"
)

// DailySnapshot joins one date's portfolio value, return, trade count, and
// news count. It backs the daily summary table and chart click-through.
type DailySnapshot struct {
	Date           string   `json:"date"`
	PortfolioValue float64  `json:"portfolioValue"`
	DailyReturnPct *float64 `json:"dailyReturnPct"`
	TradesCount    int      `json:"tradesCount"`
	NewsCount      int      `json:"newsCount"`
}

// JoinByDate looks up the portfolio entry whose Date equals date, counts
// trades and news items whose dates truncate to the same day, and attaches
// the daily return when defined. A date with no portfolio entry yields
// PortfolioValue 0: the degraded default, not an error.
func JoinByDate(history []models.PortfolioHistoryEntry, trades []Trade, news map[string]models.TickerNews, date string) DailySnapshot {
	snap := DailySnapshot{Date: date}

	for _, entry := range history {
		if entry.Date == date {
			if entry.Value != nil {
				snap.PortfolioValue = *entry.Value
			}
			break
		}
	}

	for _, r := range DailyReturns(history) {
		if r.Date == date {
			pct := r.ReturnPct
			snap.DailyReturnPct = &pct
			break
		}
	}

	day := truncateToDay(date)
	for _, t := range trades {
		if truncateToDay(t.Date) == day {
			snap.TradesCount++
		}
	}
	for _, tn := range news {
		for _, item := range tn.Items {
			if item.Date != "" && truncateToDay(item.Date) == day {
				snap.NewsCount++
			}
		}
	}

	return snap
}

// truncateToDay reduces an ISO-like date string to its YYYY-MM-DD prefix.
func truncateToDay(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

// SummaryStat aggregates one backtest for the cross-backtest comparison
// table. Performance metrics pass through with non-finite values replaced
// by nil.
type SummaryStat struct {
	Filename         string   `json:"filename"`
	Tickers          string   `json:"tickers"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	DurationDays     int      `json:"durationDays"`
	InitialCapital   float64  `json:"initialCapital"`
	FinalValue       float64  `json:"finalValue"`
	TotalReturnPct   *float64 `json:"totalReturnPct"`
	SharpeRatio      *float64 `json:"sharpeRatio"`
	SortinoRatio     *float64 `json:"sortinoRatio"`
	MaxDrawdown      *float64 `json:"maxDrawdown"`
	TotalTrades      int      `json:"totalTrades"`
	BuyTrades        int      `json:"buyTrades"`
	SellTrades       int      `json:"sellTrades"`
	TotalVolume      float64  `json:"totalVolume"`
	WinRate          float64  `json:"winRate"`
	ModelName        string   `json:"modelName"`
	ModelProvider    string   `json:"modelProvider"`
	Analysts         string   `json:"analysts"`
	IsNewsIntegrated bool     `json:"isNewsIntegrated"`
	NewsCount        int      `json:"newsCount"`
}

// Summarize reduces one backtest to its comparison-table row. Win rate is
// the fraction of days with a strictly positive return over all return
// days, rounded to two decimals; fewer than two history points gives 0.
func Summarize(bt *models.BacktestData) SummaryStat {
	stat := SummaryStat{
		Tickers:          strings.Join(bt.Tickers, ", "),
		StartDate:        bt.StartDate,
		EndDate:          bt.EndDate,
		DurationDays:     durationDays(bt.StartDate, bt.EndDate),
		InitialCapital:   bt.InitialCapital,
		FinalValue:       bt.FinalValue,
		TotalReturnPct:   finiteOrNil(bt.TotalReturnPct),
		SharpeRatio:      finiteOrNil(bt.PerformanceMetrics.SharpeRatio),
		SortinoRatio:     finiteOrNil(bt.PerformanceMetrics.SortinoRatio),
		MaxDrawdown:      finiteOrNil(bt.PerformanceMetrics.MaxDrawdown),
		ModelName:        bt.ModelName,
		ModelProvider:    bt.ModelProvider,
		Analysts:         strings.Join(bt.SelectedAnalysts, ", "),
		IsNewsIntegrated: bt.IsNewsIntegrated(),
		NewsCount:        bt.NewsCount(),
	}

	for _, t := range Trades(bt.DailyDecisions) {
		stat.TotalTrades++
		stat.TotalVolume += math.Abs(t.Quantity)
		switch t.Action {
		case models.ActionBuy:
			stat.BuyTrades++
		case models.ActionSell:
			stat.SellTrades++
		}
	}

	returns := DailyReturns(bt.PortfolioHistory)
	if len(returns) > 0 {
		positive := 0
		for _, r := range returns {
			if r.ReturnPct > 0 {
				positive++
			}
		}
		rate := float64(positive) / float64(len(returns)) * 100
		stat.WinRate = math.Round(rate*100) / 100
	}

	return stat
}

// finiteOrNil passes a metric through, substituting nil for any non-finite
// value so it can never reach serialized output.
func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// durationDays computes the inclusive-start day span between two ISO dates,
// 0 when either is missing or malformed.
func durationDays(start, end string) int {
	s, err := time.Parse("2006-01-02", truncateToDay(start))
	if err != nil {
		return 0
	}
	e, err := time.Parse("2006-01-02", truncateToDay(end))
	if err != nil {
		return 0
	}
	days := int(e.Sub(s).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
