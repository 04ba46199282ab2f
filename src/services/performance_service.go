package services

import (
	"context"
	"sync"

	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/processors"
	"golang.org/x/sync/errgroup"
)

// HistorySource is the slice of MarketGateway the performance builder needs.
type HistorySource interface {
	History(ctx context.Context, ticker, from string) []models.HistoricalPrice
	BenchmarkHistory(ctx context.Context, ticker, from string) ([]models.HistoricalPrice, error)
}

// PerformanceService builds the portfolio-versus-benchmark series.
type PerformanceService struct {
	source HistorySource
}

func NewPerformanceService(source HistorySource) *PerformanceService {
	return &PerformanceService{source: source}
}

// BuildHistory fetches the benchmark and every traded ticker from the first
// transaction date, then replays the ledger over them. An empty ledger gives
// an empty series. A benchmark that cannot be loaded fails the whole build.
func (s *PerformanceService) BuildHistory(ctx context.Context, txs []models.Transaction, benchmark string) ([]models.PerformancePoint, error) {
	start, ok := processors.EarliestTransactionDate(txs)
	if !ok {
		return []models.PerformancePoint{}, nil
	}

	var (
		benchmarkSeries []models.HistoricalPrice
		mu              sync.Mutex
		tickerSeries    = make(map[string][]models.HistoricalPrice)
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		series, err := s.source.BenchmarkHistory(egCtx, benchmark, start)
		if err != nil {
			return err
		}
		benchmarkSeries = series
		return nil
	})
	for _, ticker := range processors.DistinctTickers(txs) {
		eg.Go(func() error {
			series := s.source.History(egCtx, ticker, start)
			mu.Lock()
			tickerSeries[ticker] = series
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logger.FromContext(ctx).Error("Benchmark history unavailable", "benchmark", benchmark, "error", err)
		return nil, err
	}

	points := processors.BuildPerformanceSeries(txs, benchmarkSeries, tickerSeries)
	if len(points) == 0 {
		return nil, ErrNotEnoughData
	}
	return points, nil
}
