// Package models defines the artifact and content data structures served
// by vire-research. Artifact types mirror the JSON written by the external
// trading engine; optional nested fields stay pointers so absence is
// distinguishable from zero.
package models

import "encoding/json"

// Decision actions emitted by the portfolio manager.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// AnalystSignal is a single analyst's view on one ticker.
// Reasoning may be a string or a structured object depending on the agent,
// so it is kept raw.
type AnalystSignal struct {
	Signal     string          `json:"signal,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
	Reasoning  json.RawMessage `json:"reasoning,omitempty"`
}

// Decision is the portfolio manager's final call for one analysis snapshot.
type Decision struct {
	Action     string  `json:"action"`
	Quantity   float64 `json:"quantity"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// AnalysisData is a single-point-in-time per-ticker signal/decision record.
type AnalysisData struct {
	Ticker         string                              `json:"ticker"`
	AnalystSignals map[string]map[string]AnalystSignal `json:"analyst_signals"`
	Decision       *Decision                           `json:"decision"`
	Timestamp      string                              `json:"timestamp,omitempty"`
}

// IsValid reports whether the record carries the fields required for
// rendering. Invalid records are excluded at consume time, not at index time.
func (a *AnalysisData) IsValid() bool {
	return a != nil && a.Ticker != "" && a.AnalystSignals != nil && a.Decision != nil
}
