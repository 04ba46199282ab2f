package models

import "time"

// Holding is a derived position per ticker. It is recomputed from the
// ledger and the quote snapshot, never edited directly.
type Holding struct {
	Ticker                string  `json:"ticker"`
	CompanyName           string  `json:"companyName"`
	Sector                string  `json:"sector,omitempty"`
	Shares                float64 `json:"shares"`
	TotalCost             float64 `json:"totalCost"`
	CurrentPrice          float64 `json:"currentPrice"`
	TotalValue            float64 `json:"totalValue"`
	CostBasis             float64 `json:"costBasis"`
	UnrealizedGain        float64 `json:"unrealizedGain"`
	UnrealizedGainPercent float64 `json:"unrealizedGainPercent"`
}

// Quote is a snapshot of a ticker's market state.
type Quote struct {
	Ticker           string  `json:"ticker"`
	CurrentPrice     float64 `json:"currentPrice"`
	DayChange        float64 `json:"dayChange"`
	DayChangePercent float64 `json:"dayChangePercent"`
	PreviousClose    float64 `json:"previousClose"`
	IsUpdating       bool    `json:"isUpdating"`
	Simulated        bool    `json:"simulated"`
}

// AllocationEntry is a sector's share of net worth, in percent.
type AllocationEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PerformancePoint holds percent changes since the first valid day.
type PerformancePoint struct {
	Date      string  `json:"date"`
	Portfolio float64 `json:"portfolio"`
	Benchmark float64 `json:"benchmark"`
}

// HistoricalPrice is a daily close.
type HistoricalPrice struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// Achievement is a milestone flag. UnlockedAt is set once.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

// SellSimulation is the outcome of a what-if sale.
type SellSimulation struct {
	Ticker         string            `json:"ticker"`
	SharesSold     float64           `json:"sharesSold"`
	Proceeds       float64           `json:"proceeds"`
	RealizedGain   float64           `json:"realizedGain"`
	Holdings       []Holding         `json:"holdings"`
	NetWorth       float64           `json:"netWorth"`
	NetWorthBefore float64           `json:"netWorthBefore"`
	Allocation     []AllocationEntry `json:"allocation"`
}
