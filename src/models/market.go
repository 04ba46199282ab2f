package models

import "time"

// CompanyProfile is static company metadata.
type CompanyProfile struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Exchange    string `json:"exchange"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Simulated   bool   `json:"simulated"`
}

// Financials is the latest annual income statement.
type Financials struct {
	Ticker          string  `json:"ticker"`
	FiscalYear      string  `json:"fiscalYear"`
	Revenue         float64 `json:"revenue"`
	GrossProfit     float64 `json:"grossProfit"`
	OperatingIncome float64 `json:"operatingIncome"`
	NetIncome       float64 `json:"netIncome"`
	EPS             float64 `json:"eps"`
	Simulated       bool    `json:"simulated"`
}

// Filing is regulatory filing metadata.
type Filing struct {
	Ticker  string `json:"ticker"`
	Form    string `json:"form"`
	FiledAt string `json:"filedAt"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// NewsItem is a headline about a ticker or the market.
type NewsItem struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker,omitempty"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Sentiment   string    `json:"sentiment"` // "positive", "neutral" or "negative"
}
