package models

// Transaction types.
const (
	TransactionBuy  = "Buy"
	TransactionSell = "Sell"
)

// DateLayout is the calendar-date format used for trade dates and price series.
const DateLayout = "2006-01-02"

// Transaction is an immutable trade in a user's ledger.
type Transaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Type        string  `json:"type"` // "Buy" or "Sell"
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"companyName"`
	Sector      string  `json:"sector,omitempty"`
	Shares      float64 `json:"shares"`
	Price       float64 `json:"price"`
	TotalValue  float64 `json:"totalValue"` // shares * price at trade time, never recomputed
}

// TransactionInput is what a client submits to add a trade.
type TransactionInput struct {
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"companyName"`
	Sector      string  `json:"sector,omitempty"`
	Shares      float64 `json:"shares"`
	Price       float64 `json:"price"`
}

// BrokerageRecord is a single row of a brokerage statement.
type BrokerageRecord struct {
	Date    string  `yaml:"date" json:"date"`
	Side    string  `yaml:"side" json:"side"` // "BUY" or "SELL"
	Symbol  string  `yaml:"symbol" json:"symbol"`
	Name    string  `yaml:"name" json:"name"`
	Sector  string  `yaml:"sector" json:"sector"`
	Shares  float64 `yaml:"shares" json:"shares"`
	Price   float64 `yaml:"price" json:"price"`
	OrderID string  `yaml:"order_id" json:"orderId"`
}
