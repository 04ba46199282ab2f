package services

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/processors"
	"github.com/username/finboard/src/security/validation"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/brokerage.yaml
var defaultBrokerageFixture []byte

type brokerageFixture struct {
	Institution string                   `yaml:"institution"`
	Records     []models.BrokerageRecord `yaml:"records"`
}

// BrokerageService imports a brokerage statement into a ledger. The statement
// is a static fixture standing in for a real brokerage connection.
type BrokerageService struct {
	institution string
	records     []models.BrokerageRecord
	processor   processors.TransactionProcessor
}

// NewBrokerageService loads the statement from path, or the embedded fixture
// when path is empty.
func NewBrokerageService(path string, processor processors.TransactionProcessor) (*BrokerageService, error) {
	data := defaultBrokerageFixture
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read brokerage fixture %s: %w", path, err)
		}
	}
	var fixture brokerageFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse brokerage fixture: %w", err)
	}
	if fixture.Institution == "" {
		fixture.Institution = "Brokerage"
	}
	logger.L.Info("Brokerage fixture loaded", "institution", fixture.Institution, "records", len(fixture.Records))
	return &BrokerageService{institution: fixture.Institution, records: fixture.Records, processor: processor}, nil
}

// Sync appends the statement rows not yet imported to txs and returns the
// new ledger with the updated brokerage status.
func (s *BrokerageService) Sync(txs []models.Transaction, status models.BrokerageStatus, now time.Time) ([]models.Transaction, models.BrokerageStatus, error) {
	seen := make(map[string]bool, len(status.ImportedRecords))
	for _, h := range status.ImportedRecords {
		seen[h] = true
	}

	var fresh []models.BrokerageRecord
	var hashes []string
	for _, rec := range s.records {
		h := processors.RecordHash(rec)
		if seen[h] {
			continue
		}
		seen[h] = true
		fresh = append(fresh, rec)
		hashes = append(hashes, h)
	}

	imported, err := s.processor.Process(fresh)
	if err != nil {
		return nil, status, fmt.Errorf("import brokerage statement: %w", err)
	}

	out := make([]models.Transaction, 0, len(txs)+len(imported))
	out = append(out, txs...)
	out = append(out, imported...)

	synced := now
	status.Connected = true
	status.Institution = s.institution
	status.LastSyncedAt = &synced
	status.Imported += len(imported)
	status.ImportedRecords = append(append([]string(nil), status.ImportedRecords...), hashes...)
	return out, status, nil
}

// Tickers lists the symbols in the statement, in order of first appearance.
func (s *BrokerageService) Tickers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range s.records {
		t := validation.NormalizeTicker(rec.Symbol)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
