package models

// Dividend is the next announced distribution for a ticker.
type Dividend struct {
	Ticker  string  `json:"ticker"`
	ExDate  string  `json:"exDate"`
	PayDate string  `json:"payDate"`
	Amount  float64 `json:"amount"` // per share
}

// DividendProjection summarizes expected dividend income for current holdings.
type DividendProjection struct {
	AnnualIncome float64            `json:"annualIncome"`
	Yield        float64            `json:"yield"`       // percent of market value
	YieldOnCost  float64            `json:"yieldOnCost"` // percent of cost basis
	Upcoming     []UpcomingDividend `json:"upcoming"`
	HasData      bool               `json:"hasData"`
}

// UpcomingDividend is one holding's next payment.
type UpcomingDividend struct {
	Ticker  string  `json:"ticker"`
	ExDate  string  `json:"exDate"`
	PayDate string  `json:"payDate"`
	Amount  float64 `json:"amount"` // shares * per-share amount
}
