package processors

import (
	"sort"

	"github.com/username/finboard/src/models"
)

// BuildPerformanceSeries replays the ledger over each benchmark day and
// returns portfolio and benchmark percent changes. The portfolio is rebased
// on its first positive value and the benchmark on its first positive close,
// so the benchmark keeps moves made before the portfolio could be valued.
// Days before the portfolio has a value are dropped. Only share counts are
// replayed; cost basis plays no part. A ticker with no close on a given day
// contributes nothing that day.
func BuildPerformanceSeries(txs []models.Transaction, benchmark []models.HistoricalPrice, tickerSeries map[string][]models.HistoricalPrice) []models.PerformancePoint {
	points := []models.PerformancePoint{}
	if len(txs) == 0 || len(benchmark) == 0 {
		return points
	}

	closes := make(map[string]map[string]float64, len(tickerSeries))
	for ticker, series := range tickerSeries {
		byDate := make(map[string]float64, len(series))
		for _, p := range series {
			byDate[p.Date] = p.Close
		}
		closes[ticker] = byDate
	}

	ordered := make([]models.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date < ordered[j].Date })

	days := make([]models.HistoricalPrice, len(benchmark))
	copy(days, benchmark)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	shares := make(map[string]float64)
	next := 0
	var portfolioBase, benchmarkBase float64

	for _, day := range days {
		for next < len(ordered) && ordered[next].Date <= day.Date {
			tx := ordered[next]
			switch tx.Type {
			case models.TransactionBuy:
				shares[tx.Ticker] += tx.Shares
			case models.TransactionSell:
				shares[tx.Ticker] -= tx.Shares
			}
			next++
		}

		value := 0.0
		for ticker, n := range shares {
			if n <= SharesEpsilon {
				continue
			}
			if price, ok := closes[ticker][day.Date]; ok {
				value += n * price
			}
		}

		if benchmarkBase == 0 && day.Close > 0 {
			benchmarkBase = day.Close
		}
		if portfolioBase == 0 {
			if value <= 0 || benchmarkBase == 0 {
				continue
			}
			portfolioBase = value
		}

		points = append(points, models.PerformancePoint{
			Date:      day.Date,
			Portfolio: (value/portfolioBase - 1) * 100,
			Benchmark: (day.Close/benchmarkBase - 1) * 100,
		})
	}
	return points
}

// EarliestTransactionDate returns the first trade date in the ledger.
func EarliestTransactionDate(txs []models.Transaction) (string, bool) {
	if len(txs) == 0 {
		return "", false
	}
	earliest := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date < earliest {
			earliest = tx.Date
		}
	}
	return earliest, true
}

// DistinctTickers lists each traded ticker once, in first-seen order.
func DistinctTickers(txs []models.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range txs {
		if !seen[tx.Ticker] {
			seen[tx.Ticker] = true
			out = append(out, tx.Ticker)
		}
	}
	return out
}
