package aggregate

import (
	"encoding/json"
	"sort"

	"github.com/bobmcallan/vire-research/internal/models"
)

// emptyObject is the degraded default for an absent risk opinion.
var emptyObject = json.RawMessage(`{}`)

// Trade is one executed decision flattened out of daily_decisions.
type Trade struct {
	Date           string                          `json:"date"`
	Ticker         string                          `json:"ticker"`
	Action         string                          `json:"action"`
	Quantity       float64                         `json:"quantity"`
	Price          float64                         `json:"price"`
	Reasoning      string                          `json:"reasoning"`
	Risk           json.RawMessage                 `json:"risk"`
	AnalystSignals map[string]models.AnalystSignal `json:"analyst_signals"`
}

// Trades flattens per-date per-ticker decision maps into a flat list.
// Decisions with quantity zero are "no trade" markers and are excluded.
// Missing optional nested fields collapse to documented defaults: empty
// reasoning, empty risk object, empty signal map.
func Trades(decisions []models.DailyDecisions) []Trade {
	var trades []Trade
	for _, day := range decisions {
		for _, ticker := range sortedTickers(day.TickerDecisions) {
			info := day.TickerDecisions[ticker]
			if info.Quantity == 0 {
				continue
			}

			t := Trade{
				Date:           day.Date,
				Ticker:         ticker,
				Action:         info.Action,
				Quantity:       info.Quantity,
				Price:          info.Price,
				Risk:           emptyObject,
				AnalystSignals: map[string]models.AnalystSignal{},
			}
			if info.PortfolioManagerDecision != nil {
				t.Reasoning = info.PortfolioManagerDecision.Reasoning
			}
			if info.RiskManagementAgent != nil && len(info.RiskManagementAgent.Reasoning) > 0 {
				t.Risk = info.RiskManagementAgent.Reasoning
			}
			if info.AnalystSignals != nil {
				t.AnalystSignals = info.AnalystSignals
			}
			trades = append(trades, t)
		}
	}
	return trades
}

// sortedTickers gives map iteration a stable order so flattened output is
// deterministic across runs.
func sortedTickers(m map[string]models.TickerDecision) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
