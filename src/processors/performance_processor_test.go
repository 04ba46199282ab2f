package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finboard/src/models"
)

func series(pairs ...any) []models.HistoricalPrice {
	var out []models.HistoricalPrice
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.HistoricalPrice{Date: pairs[i].(string), Close: pairs[i+1].(float64)})
	}
	return out
}

func dated(tx models.Transaction, date string) models.Transaction {
	tx.Date = date
	return tx
}

func TestBuildPerformanceSeries_NormalizesBothSeries(t *testing.T) {
	txs := []models.Transaction{dated(buy("AAPL", 10, 100), "2024-01-02")}
	bench := series("2024-01-02", 400.0, "2024-01-03", 404.0, "2024-01-04", 396.0)
	prices := map[string][]models.HistoricalPrice{
		"AAPL": series("2024-01-02", 100.0, "2024-01-03", 110.0, "2024-01-04", 95.0),
	}

	points := BuildPerformanceSeries(txs, bench, prices)
	require.Len(t, points, 3)
	assert.Equal(t, "2024-01-02", points[0].Date)
	assert.InDelta(t, 0, points[0].Portfolio, tolerance)
	assert.InDelta(t, 0, points[0].Benchmark, tolerance)
	assert.InDelta(t, 10, points[1].Portfolio, 1e-9)
	assert.InDelta(t, 1, points[1].Benchmark, 1e-9)
	assert.InDelta(t, -5, points[2].Portfolio, 1e-9)
	assert.InDelta(t, -1, points[2].Benchmark, 1e-9)
}

func TestBuildPerformanceSeries_DropsLeadingDaysWithoutValue(t *testing.T) {
	txs := []models.Transaction{dated(buy("MSFT", 1, 300), "2024-01-03")}
	bench := series("2024-01-03", 100.0, "2024-01-04", 102.0)
	prices := map[string][]models.HistoricalPrice{
		// no close on the 3rd, so the first valued day is the 4th
		"MSFT": series("2024-01-02", 290.0, "2024-01-04", 310.0),
	}

	points := BuildPerformanceSeries(txs, bench, prices)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-01-04", points[0].Date)
	assert.InDelta(t, 0, points[0].Portfolio, tolerance)
	assert.InDelta(t, 2, points[0].Benchmark, tolerance)
}

func TestBuildPerformanceSeries_BenchmarkRebasedOnFirstClose(t *testing.T) {
	txs := []models.Transaction{dated(buy("AAPL", 1, 100), "2024-01-01")}
	bench := series("2024-01-01", 100.0, "2024-01-02", 110.0, "2024-01-03", 121.0)
	prices := map[string][]models.HistoricalPrice{
		"AAPL": series("2024-01-02", 50.0, "2024-01-03", 55.0),
	}

	points := BuildPerformanceSeries(txs, bench, prices)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-02", points[0].Date)
	assert.InDelta(t, 0, points[0].Portfolio, tolerance)
	assert.InDelta(t, 10, points[0].Benchmark, tolerance)
	assert.InDelta(t, 10, points[1].Portfolio, tolerance)
	assert.InDelta(t, 21, points[1].Benchmark, tolerance)
}

func TestBuildPerformanceSeries_ReplaysOnlyTradesUpToEachDay(t *testing.T) {
	txs := []models.Transaction{
		// insertion order differs from date order
		dated(buy("A", 1, 10), "2024-01-03"),
		dated(buy("A", 1, 10), "2024-01-02"),
		dated(sell("A", 2, 10), "2024-01-04"),
	}
	bench := series("2024-01-02", 1.0, "2024-01-03", 1.0, "2024-01-04", 1.0)
	prices := map[string][]models.HistoricalPrice{
		"A": series("2024-01-02", 10.0, "2024-01-03", 10.0, "2024-01-04", 10.0),
	}

	points := BuildPerformanceSeries(txs, bench, prices)
	require.Len(t, points, 3)
	assert.InDelta(t, 0, points[0].Portfolio, tolerance)
	assert.InDelta(t, 100, points[1].Portfolio, tolerance)
	assert.InDelta(t, -100, points[2].Portfolio, tolerance)
}

func TestBuildPerformanceSeries_EmptyInputs(t *testing.T) {
	bench := series("2024-01-02", 1.0)
	assert.Empty(t, BuildPerformanceSeries(nil, bench, nil))
	assert.Empty(t, BuildPerformanceSeries([]models.Transaction{buy("A", 1, 1)}, nil, nil))
}

func TestBuildPerformanceSeries_NoPricesGivesNoPoints(t *testing.T) {
	txs := []models.Transaction{dated(buy("A", 1, 10), "2024-01-02")}
	points := BuildPerformanceSeries(txs, series("2024-01-02", 1.0, "2024-01-03", 2.0), nil)
	assert.Empty(t, points)
}

func TestEarliestTransactionDate(t *testing.T) {
	_, ok := EarliestTransactionDate(nil)
	assert.False(t, ok)

	date, ok := EarliestTransactionDate([]models.Transaction{
		dated(buy("A", 1, 1), "2024-03-01"),
		dated(buy("B", 1, 1), "2023-12-31"),
	})
	require.True(t, ok)
	assert.Equal(t, "2023-12-31", date)
}

func TestDistinctTickers(t *testing.T) {
	txs := []models.Transaction{buy("B", 1, 1), buy("A", 1, 1), sell("B", 1, 1)}
	assert.Equal(t, []string{"B", "A"}, DistinctTickers(txs))
}
