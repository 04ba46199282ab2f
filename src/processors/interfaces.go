package processors

import "github.com/username/finboard/src/models"

// QuoteSynthesizer produces a deterministic stand-in quote for a ticker that
// has no live quote.
type QuoteSynthesizer interface {
	SynthesizeQuote(ticker string) models.Quote
}

// TransactionProcessor turns brokerage statement rows into ledger transactions.
type TransactionProcessor interface {
	Process(records []models.BrokerageRecord) ([]models.Transaction, error)
}

// DividendProcessor projects dividend income for current holdings.
type DividendProcessor interface {
	Project(holdings []models.Holding, dividends map[string]models.Dividend) models.DividendProjection
}
