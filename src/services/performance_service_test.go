package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finboard/src/models"
)

type stubHistory struct {
	benchmark    []models.HistoricalPrice
	benchmarkErr error
	series       map[string][]models.HistoricalPrice
	froms        map[string]string
}

func (s *stubHistory) History(_ context.Context, ticker, from string) []models.HistoricalPrice {
	return s.series[ticker]
}

func (s *stubHistory) BenchmarkHistory(_ context.Context, ticker, from string) ([]models.HistoricalPrice, error) {
	if s.froms == nil {
		s.froms = map[string]string{}
	}
	s.froms[ticker] = from
	return s.benchmark, s.benchmarkErr
}

func TestBuildHistoryEmptyLedger(t *testing.T) {
	svc := NewPerformanceService(&stubHistory{})
	points, err := svc.BuildHistory(context.Background(), nil, "SPY")
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestBuildHistoryStartsAtFirstTrade(t *testing.T) {
	src := &stubHistory{
		benchmark: []models.HistoricalPrice{
			{Date: "2024-06-03", Close: 500},
			{Date: "2024-06-04", Close: 510},
		},
		series: map[string][]models.HistoricalPrice{
			"AAPL": {{Date: "2024-06-03", Close: 100}, {Date: "2024-06-04", Close: 110}},
		},
	}
	txs := []models.Transaction{
		{ID: "1", Date: "2024-06-03", Type: models.TransactionBuy, Ticker: "AAPL", Shares: 2, Price: 100, TotalValue: 200},
	}

	points, err := NewPerformanceService(src).BuildHistory(context.Background(), txs, "SPY")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", src.froms["SPY"])
	require.Len(t, points, 2)
	assert.InDelta(t, 0, points[0].Portfolio, 1e-9)
	assert.InDelta(t, 10, points[1].Portfolio, 1e-9)
	assert.InDelta(t, 2, points[1].Benchmark, 1e-9)
}

func TestBuildHistoryBenchmarkFailureIsHard(t *testing.T) {
	src := &stubHistory{benchmarkErr: ErrBenchmarkUnavailable}
	txs := []models.Transaction{{ID: "1", Date: "2024-06-03", Type: models.TransactionBuy, Ticker: "AAPL", Shares: 1, Price: 1, TotalValue: 1}}

	_, err := NewPerformanceService(src).BuildHistory(context.Background(), txs, "SPY")
	assert.ErrorIs(t, err, ErrBenchmarkUnavailable)
}

func TestBuildHistoryWithoutValidPointIsNotEnoughData(t *testing.T) {
	src := &stubHistory{
		benchmark: []models.HistoricalPrice{{Date: "2024-06-03", Close: 500}},
		series:    map[string][]models.HistoricalPrice{},
	}
	txs := []models.Transaction{{ID: "1", Date: "2024-06-03", Type: models.TransactionBuy, Ticker: "AAPL", Shares: 1, Price: 1, TotalValue: 1}}

	_, err := NewPerformanceService(src).BuildHistory(context.Background(), txs, "SPY")
	assert.ErrorIs(t, err, ErrNotEnoughData)
}
