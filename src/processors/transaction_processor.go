package processors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/security/validation"
)

// brokerageTransactionProcessor converts brokerage statement rows into
// ledger transactions.
type brokerageTransactionProcessor struct {
	newID func() string
}

// NewTransactionProcessor creates a processor that assigns random ids.
func NewTransactionProcessor() TransactionProcessor {
	return &brokerageTransactionProcessor{newID: func() string { return uuid.New().String() }}
}

// Process maps each record to a Transaction, skipping rows that fail
// validation. Order is preserved. It fails only if no record is usable.
func (p *brokerageTransactionProcessor) Process(records []models.BrokerageRecord) ([]models.Transaction, error) {
	txs := make([]models.Transaction, 0, len(records))
	for i, rec := range records {
		tx, err := p.toTransaction(rec)
		if err != nil {
			logger.L.Warn("Skipping brokerage record", "index", i, "orderID", rec.OrderID, "error", err)
			continue
		}
		txs = append(txs, tx)
	}
	if len(records) > 0 && len(txs) == 0 {
		return nil, fmt.Errorf("no usable brokerage records out of %d", len(records))
	}
	return txs, nil
}

func (p *brokerageTransactionProcessor) toTransaction(rec models.BrokerageRecord) (models.Transaction, error) {
	ticker := validation.NormalizeTicker(rec.Symbol)
	if err := validation.ValidateTicker(ticker); err != nil {
		return models.Transaction{}, err
	}
	txType, err := validation.ValidateTransactionType(strings.ToLower(rec.Side))
	if err != nil {
		return models.Transaction{}, err
	}
	if err := validation.ValidatePositive(rec.Shares, validation.MaxShares, "shares"); err != nil {
		return models.Transaction{}, err
	}
	if err := validation.ValidatePositive(rec.Price, validation.MaxPrice, "price"); err != nil {
		return models.Transaction{}, err
	}
	if err := validation.ValidateStringNotEmpty(rec.Date, "date"); err != nil {
		return models.Transaction{}, err
	}

	name := strings.TrimSpace(validation.SanitizeText(validation.StripUnprintable(rec.Name)))
	if name == "" {
		name = ticker
	}

	return models.Transaction{
		ID:          p.newID(),
		Date:        strings.TrimSpace(rec.Date),
		Type:        txType,
		Ticker:      ticker,
		CompanyName: name,
		Sector:      strings.TrimSpace(validation.SanitizeText(rec.Sector)),
		Shares:      rec.Shares,
		Price:       rec.Price,
		TotalValue:  rec.Shares * rec.Price,
	}, nil
}

// RecordHash identifies a brokerage row so repeated syncs can skip rows
// already imported.
func RecordHash(rec models.BrokerageRecord) string {
	input := fmt.Sprintf("%s|%s|%s|%g|%g|%s", rec.Date, strings.ToUpper(rec.Side), strings.ToUpper(rec.Symbol), rec.Shares, rec.Price, rec.OrderID)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
