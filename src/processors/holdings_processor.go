package processors

import (
	"sort"

	"github.com/username/finboard/src/models"
)

// SharesEpsilon is the smallest net share count that still counts as a position.
const SharesEpsilon = 0.0001

// OtherSector is the allocation bucket for holdings with no sector.
const OtherSector = "Other"

type position struct {
	shares      float64
	totalCost   float64
	companyName string
	sector      string
}

// RecomputeHoldings folds the ledger, in the order given, into open positions
// valued with quotes. Tickers missing from quotes are valued with a quote
// from fallback. The result is sorted by ticker.
//
// Sells reduce cost basis at the average cost per share before the sale.
// Selling more than is owned is not rejected here; the position goes negative
// and drops out of the result.
func RecomputeHoldings(txs []models.Transaction, quotes map[string]models.Quote, fallback QuoteSynthesizer) []models.Holding {
	positions := make(map[string]*position)

	for _, tx := range txs {
		p, ok := positions[tx.Ticker]
		if !ok {
			p = &position{}
			positions[tx.Ticker] = p
		}

		switch tx.Type {
		case models.TransactionBuy:
			p.shares += tx.Shares
			p.totalCost += tx.TotalValue
		case models.TransactionSell:
			avgCost := 0.0
			if p.shares != 0 {
				avgCost = p.totalCost / p.shares
			}
			p.shares -= tx.Shares
			p.totalCost -= tx.Shares * avgCost
		}

		// Last transaction touching the ticker wins.
		p.companyName = tx.CompanyName
		p.sector = tx.Sector
	}

	holdings := make([]models.Holding, 0, len(positions))
	for ticker, p := range positions {
		if p.shares <= SharesEpsilon {
			continue
		}

		quote, ok := quotes[ticker]
		if !ok && fallback != nil {
			quote = fallback.SynthesizeQuote(ticker)
		}

		totalValue := p.shares * quote.CurrentPrice
		gain := totalValue - p.totalCost
		gainPct := 0.0
		if p.totalCost > 0 {
			gainPct = gain / p.totalCost * 100
		}

		holdings = append(holdings, models.Holding{
			Ticker:                ticker,
			CompanyName:           p.companyName,
			Sector:                p.sector,
			Shares:                p.shares,
			TotalCost:             p.totalCost,
			CurrentPrice:          quote.CurrentPrice,
			TotalValue:            totalValue,
			CostBasis:             p.totalCost,
			UnrealizedGain:        gain,
			UnrealizedGainPercent: gainPct,
		})
	}

	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Ticker < holdings[j].Ticker })
	return holdings
}

// NetWorth sums the market value of holdings.
func NetWorth(holdings []models.Holding) float64 {
	total := 0.0
	for _, h := range holdings {
		total += h.TotalValue
	}
	return total
}

// ComputeAllocation returns each sector's percent of net worth, largest
// first. It is empty when net worth is zero.
func ComputeAllocation(holdings []models.Holding) []models.AllocationEntry {
	netWorth := NetWorth(holdings)
	if netWorth == 0 {
		return []models.AllocationEntry{}
	}

	bySector := make(map[string]float64)
	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = OtherSector
		}
		bySector[sector] += h.TotalValue
	}

	allocation := make([]models.AllocationEntry, 0, len(bySector))
	for name, value := range bySector {
		allocation = append(allocation, models.AllocationEntry{Name: name, Value: 100 * value / netWorth})
	}
	sort.Slice(allocation, func(i, j int) bool {
		if allocation[i].Value != allocation[j].Value {
			return allocation[i].Value > allocation[j].Value
		}
		return allocation[i].Name < allocation[j].Name
	})
	return allocation
}

// SharesOwned folds the ledger for one ticker and returns the net share count.
func SharesOwned(txs []models.Transaction, ticker string) float64 {
	shares := 0.0
	for _, tx := range txs {
		if tx.Ticker != ticker {
			continue
		}
		switch tx.Type {
		case models.TransactionBuy:
			shares += tx.Shares
		case models.TransactionSell:
			shares -= tx.Shares
		}
	}
	return shares
}
