package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-research/internal/models"
)

func fv(v float64) *float64 { return &v }

func historyOf(values ...interface{}) []models.PortfolioHistoryEntry {
	history := make([]models.PortfolioHistoryEntry, 0, len(values))
	for i, v := range values {
		entry := models.PortfolioHistoryEntry{
			Date: dateFor(i),
		}
		if f, ok := v.(float64); ok {
			entry.Value = fv(f)
		}
		history = append(history, entry)
	}
	return history
}

func dateFor(i int) string {
	return "2025-01-0" + string(rune('1'+i)) + " 00:00:00"
}

func TestDailyReturns(t *testing.T) {
	returns := DailyReturns(historyOf(100.0, 110.0, 99.0))

	require.Len(t, returns, 2)
	assert.Equal(t, "2025-01-02 00:00:00", returns[0].Date)
	assert.Equal(t, 10.0, returns[0].ReturnPct)
	assert.InDelta(t, -10.0, returns[1].ReturnPct, 1e-9)
}

func TestDailyReturns_FewerThanTwoPoints(t *testing.T) {
	assert.Empty(t, DailyReturns(nil))
	assert.Empty(t, DailyReturns(historyOf()))
	assert.Empty(t, DailyReturns(historyOf(100.0)))
}

func TestDailyReturns_SkipsMissingValues(t *testing.T) {
	returns := DailyReturns(historyOf(100.0, nil, 120.0))

	// Both transitions touch the nil entry, so no defined return exists.
	assert.Empty(t, returns)
}

func TestDailyReturns_ZeroPreviousDropped(t *testing.T) {
	returns := DailyReturns(historyOf(0.0, 120.0, 126.0))

	require.Len(t, returns, 1, "division by zero day is dropped")
	assert.InDelta(t, 5.0, returns[0].ReturnPct, 1e-9)
	assert.Equal(t, "2025-01-03 00:00:00", returns[0].Date)
}
