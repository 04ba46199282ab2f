package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/processors"
)

func TestEmbeddedFixtureSyncsOnce(t *testing.T) {
	svc, err := NewBrokerageService("", processors.NewTransactionProcessor())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "JNJ", "XOM", "JPM"}, svc.Tickers())

	existing := []models.Transaction{{ID: "own", Date: "2024-01-02", Type: models.TransactionBuy, Ticker: "NVDA", Shares: 1, Price: 480, TotalValue: 480}}
	txs, status, err := svc.Sync(existing, models.BrokerageStatus{}, testNow)
	require.NoError(t, err)
	require.Len(t, txs, 7)
	assert.Equal(t, "own", txs[0].ID)
	assert.True(t, status.Connected)
	assert.Equal(t, "Simulated Brokerage", status.Institution)
	assert.Equal(t, 6, status.Imported)
	require.NotNil(t, status.LastSyncedAt)

	again, status2, err := svc.Sync(txs, status, testNow)
	require.NoError(t, err)
	assert.Len(t, again, 7, "rows already imported are skipped")
	assert.Equal(t, 6, status2.Imported)
}

func TestFixtureOverrideFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
institution: Test Bank
records:
  - {date: "2024-03-01", side: buy, symbol: vti, name: Vanguard Total, shares: 3, price: 250, order_id: T-1}
  - {date: "2024-03-02", side: hold, symbol: VTI, shares: 1, price: 1, order_id: T-2}
`), 0o600))

	svc, err := NewBrokerageService(path, processors.NewTransactionProcessor())
	require.NoError(t, err)
	txs, status, err := svc.Sync(nil, models.BrokerageStatus{}, testNow)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "VTI", txs[0].Ticker)
	assert.Equal(t, models.TransactionBuy, txs[0].Type)
	assert.Equal(t, 750.0, txs[0].TotalValue)
	assert.Equal(t, "Test Bank", status.Institution)
}

func TestFixtureMissingFile(t *testing.T) {
	_, err := NewBrokerageService(filepath.Join(t.TempDir(), "missing.yaml"), processors.NewTransactionProcessor())
	assert.Error(t, err)
}
