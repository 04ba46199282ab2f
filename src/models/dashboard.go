package models

import "time"

// Profile is the user's display settings.
type Profile struct {
	DisplayName string `json:"displayName"`
	Currency    string `json:"currency"`
	Theme       string `json:"theme"` // "light" or "dark"
	RiskProfile string `json:"riskProfile"`
}

// Insight is a piece of AI commentary. Body is sanitized HTML.
type Insight struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// PortfolioScore rates the portfolio from 0 to 100.
type PortfolioScore struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// Alert flags something that needs the user's attention.
type Alert struct {
	ID       string `json:"id"`
	Ticker   string `json:"ticker,omitempty"`
	Severity string `json:"severity"` // "info", "warning" or "critical"
	Message  string `json:"message"`
}

// Watchlist is a named set of tickers.
type Watchlist struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
}

// Goal is a net worth target.
type Goal struct {
	Target     float64 `json:"target"`
	TargetDate string  `json:"targetDate,omitempty"`
}

// BrokerageStatus describes the (simulated) brokerage link.
type BrokerageStatus struct {
	Connected    bool       `json:"connected"`
	Institution  string     `json:"institution,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
	Imported     int        `json:"imported"`
	// ImportedRecords holds the hashes of statement rows already in the
	// ledger, so a repeated sync does not import them twice.
	ImportedRecords []string `json:"importedRecords,omitempty"`
}

// DashboardData is the per-user aggregate. Transactions are the source of
// truth; holdings, net worth and allocation are derived from them.
type DashboardData struct {
	Profile       Profile            `json:"profile"`
	Holdings      []Holding          `json:"holdings"`
	Transactions  []Transaction      `json:"transactions"`
	NetWorth      float64            `json:"netWorth"`
	Allocation    []AllocationEntry  `json:"allocation"`
	Performance   []PerformancePoint `json:"performance"`
	Quotes        map[string]Quote   `json:"quotes,omitempty"`
	News          []NewsItem         `json:"news"`
	Insights      []Insight          `json:"insights"`
	Score         *PortfolioScore    `json:"score,omitempty"`
	Alerts        []Alert            `json:"alerts"`
	Achievements  []Achievement      `json:"achievements"`
	Watchlists    []Watchlist        `json:"watchlists"`
	Goal          Goal               `json:"goal"`
	Notes         map[string]string  `json:"notes"`
	DismissedNews map[string]bool    `json:"dismissedNews"`
	Brokerage     BrokerageStatus    `json:"brokerage"`
	Revision      int64              `json:"revision"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// HeldTickers returns the tickers with an open position.
func (d *DashboardData) HeldTickers() []string {
	out := make([]string, 0, len(d.Holdings))
	for _, h := range d.Holdings {
		out = append(out, h.Ticker)
	}
	return out
}

// WatchOnlyTickers returns watchlist tickers that are not held, deduplicated.
func (d *DashboardData) WatchOnlyTickers() []string {
	held := make(map[string]bool, len(d.Holdings))
	for _, h := range d.Holdings {
		held[h.Ticker] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, wl := range d.Watchlists {
		for _, t := range wl.Tickers {
			if held[t] || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// WatchedTickerCount counts distinct tickers across all watchlists.
func (d *DashboardData) WatchedTickerCount() int {
	seen := make(map[string]bool)
	for _, wl := range d.Watchlists {
		for _, t := range wl.Tickers {
			seen[t] = true
		}
	}
	return len(seen)
}
