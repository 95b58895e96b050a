package models

import (
	"encoding/json"
	"sort"
)

// portfolioDateKey and portfolioValueKey are the column names the external
// engine writes for portfolio history rows.
const (
	portfolioDateKey  = "Date"
	portfolioValueKey = "Portfolio Value"
)

// PortfolioHistoryEntry is one row of the portfolio value time series.
// Beyond Date and Portfolio Value the engine emits a varying set of numeric
// exposure columns; those are kept in Extra. A nil value means the column
// was null or absent in the source file.
type PortfolioHistoryEntry struct {
	Date  string
	Value *float64
	Extra map[string]*float64
}

// UnmarshalJSON decodes a history row, tolerating unknown columns and
// null numeric leaves.
func (e *PortfolioHistoryEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Extra = make(map[string]*float64)
	for k, v := range raw {
		if k == portfolioDateKey {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				e.Date = s
			}
			continue
		}

		var f *float64
		if err := json.Unmarshal(v, &f); err != nil {
			// Non-numeric column: skipped, forward-compatible.
			continue
		}
		if k == portfolioValueKey {
			e.Value = f
		} else {
			e.Extra[k] = f
		}
	}
	return nil
}

// MarshalJSON re-emits the row with the engine's original column names.
// Extra columns are sorted for stable output.
func (e PortfolioHistoryEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Extra)+2)
	out[portfolioDateKey] = e.Date
	out[portfolioValueKey] = e.Value
	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = e.Extra[k]
	}
	return json.Marshal(out)
}

// TickerDecision is the per-ticker decision inside one daily_decisions entry.
type TickerDecision struct {
	Action                   string                   `json:"action"`
	Quantity                 float64                  `json:"quantity"`
	Price                    float64                  `json:"price"`
	PortfolioManagerDecision *PortfolioManagerOpinion `json:"portfolio_manager_decision,omitempty"`
	RiskManagementAgent      *RiskOpinion             `json:"risk_management_agent,omitempty"`
	AnalystSignals           map[string]AnalystSignal `json:"analyst_signals,omitempty"`
}

// PortfolioManagerOpinion carries the manager's free-text reasoning.
type PortfolioManagerOpinion struct {
	Reasoning string `json:"reasoning,omitempty"`
}

// RiskOpinion carries the risk agent's reasoning, which may be a string or
// a structured object.
type RiskOpinion struct {
	Reasoning json.RawMessage `json:"reasoning,omitempty"`
}

// DailyDecisions groups the ticker decisions made on a single date.
type DailyDecisions struct {
	Date            string                    `json:"date"`
	TickerDecisions map[string]TickerDecision `json:"ticker_decisions"`
}

// NewsItem is one correlated news article in a news-integrated backtest.
type NewsItem struct {
	Ticker    string `json:"ticker"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Source    string `json:"source"`
	Date      string `json:"date"`
	URL       string `json:"url"`
	Sentiment string `json:"sentiment"`
}

// TickerNews groups the news items collected for one ticker.
type TickerNews struct {
	Count int        `json:"count"`
	Items []NewsItem `json:"items"`
}

// PerformanceMetrics holds the engine's summary ratios. Every field is
// nullable: the engine emits null (or, pre-cleanup, a non-finite token)
// when a metric is undefined for the run.
type PerformanceMetrics struct {
	SharpeRatio     *float64 `json:"sharpe_ratio"`
	SortinoRatio    *float64 `json:"sortino_ratio"`
	MaxDrawdown     *float64 `json:"max_drawdown"`
	MaxDrawdownDate *string  `json:"max_drawdown_date"`
	LongShortRatio  *float64 `json:"long_short_ratio"`
	GrossExposure   *float64 `json:"gross_exposure"`
	NetExposure     *float64 `json:"net_exposure"`
}

// BacktestData is a full historical simulation record. portfolio_history is
// chronologically ascending by Date as written by the engine.
type BacktestData struct {
	Tickers            []string                `json:"tickers"`
	StartDate          string                  `json:"start_date"`
	EndDate            string                  `json:"end_date"`
	InitialCapital     float64                 `json:"initial_capital"`
	FinalValue         float64                 `json:"final_value"`
	TotalReturnPct     *float64                `json:"total_return_pct"`
	ModelName          string                  `json:"model_name"`
	ModelProvider      string                  `json:"model_provider"`
	SelectedAnalysts   []string                `json:"selected_analysts"`
	MarginRequirement  float64                 `json:"margin_requirement"`
	StopLossPct        *float64                `json:"stop_loss_pct"`
	TakeProfitPct      *float64                `json:"take_profit_pct"`
	PerformanceMetrics PerformanceMetrics      `json:"performance_metrics"`
	PortfolioHistory   []PortfolioHistoryEntry `json:"portfolio_history"`
	DailyDecisions     []DailyDecisions        `json:"daily_decisions"`
	NewsData           map[string]TickerNews   `json:"news_data,omitempty"`
}

// IsNewsIntegrated reports whether the backtest carries news correlation
// data. Presence of a non-empty news_data key is the one deterministic
// signal; filename conventions are not consulted.
func (b *BacktestData) IsNewsIntegrated() bool {
	return b != nil && len(b.NewsData) > 0
}

// NewsCount returns the total number of news items across all tickers.
func (b *BacktestData) NewsCount() int {
	if b == nil {
		return 0
	}
	total := 0
	for _, tn := range b.NewsData {
		total += len(tn.Items)
	}
	return total
}
