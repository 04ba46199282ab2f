package processors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finboard/src/models"
)

const tolerance = 1e-9

type stubSynthesizer struct {
	price float64
	calls []string
}

func (s *stubSynthesizer) SynthesizeQuote(ticker string) models.Quote {
	s.calls = append(s.calls, ticker)
	return models.Quote{Ticker: ticker, CurrentPrice: s.price, PreviousClose: s.price, Simulated: true}
}

func buy(ticker string, shares, price float64) models.Transaction {
	return models.Transaction{
		Date: "2024-01-02", Type: models.TransactionBuy, Ticker: ticker,
		CompanyName: ticker + " Inc.", Shares: shares, Price: price, TotalValue: shares * price,
	}
}

func sell(ticker string, shares, price float64) models.Transaction {
	tx := buy(ticker, shares, price)
	tx.Type = models.TransactionSell
	return tx
}

func quotes(prices map[string]float64) map[string]models.Quote {
	out := make(map[string]models.Quote, len(prices))
	for t, p := range prices {
		out[t] = models.Quote{Ticker: t, CurrentPrice: p}
	}
	return out
}

func TestRecomputeHoldings_SingleBuyIsValuedAtQuote(t *testing.T) {
	holdings := RecomputeHoldings(
		[]models.Transaction{buy("AAPL", 10, 100)},
		quotes(map[string]float64{"AAPL": 120}),
		nil,
	)

	require.Len(t, holdings, 1)
	h := holdings[0]
	assert.Equal(t, "AAPL", h.Ticker)
	assert.InDelta(t, 10, h.Shares, tolerance)
	assert.InDelta(t, 1000, h.CostBasis, tolerance)
	assert.InDelta(t, 1200, h.TotalValue, tolerance)
	assert.InDelta(t, 200, h.UnrealizedGain, tolerance)
	assert.InDelta(t, 20, h.UnrealizedGainPercent, tolerance)
}

func TestRecomputeHoldings_SellUsesAverageCostRegardlessOfSellPrice(t *testing.T) {
	for _, sellPrice := range []float64{1, 110, 5000} {
		holdings := RecomputeHoldings(
			[]models.Transaction{buy("AAPL", 10, 100), sell("AAPL", 5, sellPrice)},
			quotes(map[string]float64{"AAPL": 120}),
			nil,
		)
		require.Len(t, holdings, 1)
		assert.InDelta(t, 5, holdings[0].Shares, tolerance)
		assert.InDelta(t, 500, holdings[0].CostBasis, tolerance, "sell price %v", sellPrice)
	}
}

func TestRecomputeHoldings_FullyClosedPositionDisappears(t *testing.T) {
	holdings := RecomputeHoldings(
		[]models.Transaction{buy("XYZ", 10, 50), sell("XYZ", 10, 60)},
		quotes(map[string]float64{"XYZ": 55}),
		nil,
	)
	assert.Empty(t, holdings)
}

func TestRecomputeHoldings_ResidueBelowEpsilonDisappears(t *testing.T) {
	holdings := RecomputeHoldings(
		[]models.Transaction{buy("XYZ", 1, 50), sell("XYZ", 0.99995, 50), buy("ABC", 1, 10)},
		nil,
		&stubSynthesizer{price: 1},
	)
	require.Len(t, holdings, 1)
	assert.Equal(t, "ABC", holdings[0].Ticker)
}

func TestRecomputeHoldings_OversellDropsPosition(t *testing.T) {
	holdings := RecomputeHoldings(
		[]models.Transaction{buy("XYZ", 5, 50), sell("XYZ", 8, 50)},
		quotes(map[string]float64{"XYZ": 50}),
		nil,
	)
	assert.Empty(t, holdings)
}

func TestRecomputeHoldings_MissingQuoteUsesSynthesizedQuote(t *testing.T) {
	synth := &stubSynthesizer{price: 42}
	holdings := RecomputeHoldings(
		[]models.Transaction{buy("AAPL", 2, 100), buy("MSFT", 3, 10)},
		quotes(map[string]float64{"AAPL": 120}),
		synth,
	)

	require.Len(t, holdings, 2)
	assert.Equal(t, []string{"MSFT"}, synth.calls)
	msft := holdings[1]
	assert.Equal(t, "MSFT", msft.Ticker)
	assert.InDelta(t, 42, msft.CurrentPrice, tolerance)
	assert.InDelta(t, 126, msft.TotalValue, tolerance)
	assert.False(t, math.IsNaN(msft.TotalValue))
}

func TestRecomputeHoldings_BuysOnlySumSharesAndCost(t *testing.T) {
	buys := []models.Transaction{
		buy("VTI", 1.5, 200.25),
		buy("VTI", 0.333, 210.1),
		buy("VTI", 7, 190),
		buy("VTI", 12.25, 205.75),
	}
	wantShares, wantCost := 0.0, 0.0
	for _, tx := range buys {
		wantShares += tx.Shares
		wantCost += tx.Shares * tx.Price
	}

	holdings := RecomputeHoldings(buys, quotes(map[string]float64{"VTI": 220}), nil)
	require.Len(t, holdings, 1)
	assert.InDelta(t, wantShares, holdings[0].Shares, 1e-6)
	assert.InDelta(t, wantCost, holdings[0].CostBasis, 1e-6)
}

func TestRecomputeHoldings_GainAfterPartialSellMatchesAverageCost(t *testing.T) {
	cases := []struct {
		bought, boughtAt, sold, soldAt, price float64
	}{
		{10, 100, 5, 110, 120},
		{3, 33.33, 1, 1, 40},
		{100, 12.5, 99.5, 20, 8},
		{7, 200, 7 - 2*SharesEpsilon, 10, 150},
	}
	for _, c := range cases {
		txs := []models.Transaction{buy("T", c.bought, c.boughtAt), sell("T", c.sold, c.soldAt)}
		holdings := RecomputeHoldings(txs, quotes(map[string]float64{"T": c.price}), nil)
		require.Len(t, holdings, 1)

		remaining := c.bought - c.sold
		want := remaining*c.price - remaining*c.boughtAt
		assert.InDelta(t, want, holdings[0].UnrealizedGain, 1e-6)
	}
}

func TestRecomputeHoldings_IsIdempotent(t *testing.T) {
	txs := []models.Transaction{
		buy("AAPL", 10, 100), buy("MSFT", 4, 300), sell("AAPL", 2, 130), buy("GOOG", 1, 140),
	}
	q := quotes(map[string]float64{"AAPL": 120, "MSFT": 310})
	synth := &stubSynthesizer{price: 150}

	first := RecomputeHoldings(txs, q, synth)
	second := RecomputeHoldings(txs, q, synth)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, []string{first[0].Ticker, first[1].Ticker, first[2].Ticker})
}

func TestRecomputeHoldings_CompanyAndSectorAreLastWriteWins(t *testing.T) {
	first := buy("META", 1, 100)
	first.CompanyName, first.Sector = "Facebook", "Communication"
	second := buy("META", 1, 100)
	second.CompanyName, second.Sector = "Meta Platforms", "Technology"

	holdings := RecomputeHoldings([]models.Transaction{first, second}, quotes(map[string]float64{"META": 100}), nil)
	require.Len(t, holdings, 1)
	assert.Equal(t, "Meta Platforms", holdings[0].CompanyName)
	assert.Equal(t, "Technology", holdings[0].Sector)
}

func TestRecomputeHoldings_ZeroCostGivesZeroPercent(t *testing.T) {
	tx := buy("FREE", 5, 0)
	holdings := RecomputeHoldings([]models.Transaction{tx}, quotes(map[string]float64{"FREE": 10}), nil)
	require.Len(t, holdings, 1)
	assert.Equal(t, 0.0, holdings[0].UnrealizedGainPercent)
}

func TestComputeAllocation_SumsToHundred(t *testing.T) {
	holdings := []models.Holding{
		{Ticker: "AAPL", Sector: "Technology", TotalValue: 1234.56},
		{Ticker: "MSFT", Sector: "Technology", TotalValue: 789.01},
		{Ticker: "JNJ", Sector: "Healthcare", TotalValue: 333.33},
		{Ticker: "XYZ", TotalValue: 17},
	}

	allocation := ComputeAllocation(holdings)
	require.Len(t, allocation, 3)

	sum := 0.0
	for _, a := range allocation {
		sum += a.Value
	}
	assert.InDelta(t, 100, sum, 1e-9)
	assert.Equal(t, "Technology", allocation[0].Name)
	assert.Equal(t, OtherSector, allocation[2].Name)
}

func TestComputeAllocation_EmptyAtZeroNetWorth(t *testing.T) {
	assert.Empty(t, ComputeAllocation(nil))
	assert.Empty(t, ComputeAllocation([]models.Holding{{Ticker: "A", Sector: "X", TotalValue: 0}}))
	assert.NotNil(t, ComputeAllocation(nil))
}

func TestComputeAllocation_TiesSortByName(t *testing.T) {
	allocation := ComputeAllocation([]models.Holding{
		{Sector: "Utilities", TotalValue: 50},
		{Sector: "Energy", TotalValue: 50},
	})
	require.Len(t, allocation, 2)
	assert.Equal(t, "Energy", allocation[0].Name)
}

func TestNetWorth(t *testing.T) {
	assert.Equal(t, 0.0, NetWorth(nil))
	assert.InDelta(t, 350, NetWorth([]models.Holding{{TotalValue: 100}, {TotalValue: 250}}), tolerance)
}

func TestSharesOwned(t *testing.T) {
	txs := []models.Transaction{buy("A", 10, 1), sell("A", 4, 1), buy("B", 3, 1)}
	assert.InDelta(t, 6, SharesOwned(txs, "A"), tolerance)
	assert.InDelta(t, 3, SharesOwned(txs, "B"), tolerance)
	assert.Equal(t, 0.0, SharesOwned(txs, "C"))
}
