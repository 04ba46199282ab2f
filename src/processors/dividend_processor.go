package processors

import (
	"sort"

	"github.com/username/finboard/src/models"
)

// dividendProcessorImpl implements the DividendProcessor interface.
type dividendProcessorImpl struct{}

// NewDividendProcessor creates a new instance of DividendProcessor.
func NewDividendProcessor() DividendProcessor {
	return &dividendProcessorImpl{}
}

// Project estimates a year of dividend income, assuming each holding's next
// per-share payment repeats quarterly.
func (p *dividendProcessorImpl) Project(holdings []models.Holding, dividends map[string]models.Dividend) models.DividendProjection {
	result := models.DividendProjection{Upcoming: []models.UpcomingDividend{}}

	var marketValue, costBasis float64
	for _, h := range holdings {
		marketValue += h.TotalValue
		costBasis += h.CostBasis

		d, ok := dividends[h.Ticker]
		if !ok || d.Amount <= 0 {
			continue
		}
		payment := h.Shares * d.Amount
		result.AnnualIncome += payment * 4
		result.Upcoming = append(result.Upcoming, models.UpcomingDividend{
			Ticker:  h.Ticker,
			ExDate:  d.ExDate,
			PayDate: d.PayDate,
			Amount:  payment,
		})
	}

	if marketValue > 0 {
		result.Yield = result.AnnualIncome / marketValue * 100
	}
	if costBasis > 0 {
		result.YieldOnCost = result.AnnualIncome / costBasis * 100
	}
	result.HasData = len(result.Upcoming) > 0

	sort.Slice(result.Upcoming, func(i, j int) bool {
		if result.Upcoming[i].PayDate != result.Upcoming[j].PayDate {
			return result.Upcoming[i].PayDate < result.Upcoming[j].PayDate
		}
		return result.Upcoming[i].Ticker < result.Upcoming[j].Ticker
	})
	return result
}
