package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/services"
)

func TestRenderSummaryEmptyDashboard(t *testing.T) {
	md := renderSummary(services.NewDashboard())

	assert.Contains(t, md, "# Portfolio")
	assert.Contains(t, md, "**Net worth:** $0.00")
	assert.Contains(t, md, "No holdings yet.")
	assert.NotContains(t, md, "## Goal")
}

func TestRenderSummaryWithHoldings(t *testing.T) {
	d := services.NewDashboard()
	d.Profile.DisplayName = "Alice"
	d.Holdings = []models.Holding{{
		Ticker: "AAPL", Shares: 10, CurrentPrice: 200, TotalValue: 2000,
		UnrealizedGain: 500, UnrealizedGainPercent: 33.33,
	}}
	d.NetWorth = 2000
	d.Allocation = []models.AllocationEntry{{Name: "Technology", Value: 100}}
	d.Goal = models.Goal{Target: 4000, TargetDate: "2030-01-01"}
	d.Score = &models.PortfolioScore{Score: 62, Explanation: "Concentrated in one sector."}

	md := renderSummary(d)

	assert.Contains(t, md, "# Alice's portfolio")
	assert.Contains(t, md, "**Net worth:** $2,000.00")
	assert.Contains(t, md, "| AAPL | 10 | $200.00 | $2,000.00 | $500.00 (33.33%) |")
	assert.Contains(t, md, "- Technology: 100.0%")
	assert.Contains(t, md, "$2,000.00 of $4,000.00 (50.0%) by 2030-01-01")
	assert.Contains(t, md, "## Score: 62/100")
}

func TestDisplayAmountFallsBackToUSD(t *testing.T) {
	assert.Equal(t, "$12.50", displayAmount(12.5, "???"))
}
