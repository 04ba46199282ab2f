package model

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
)

// DailyPrice represents a stored close for a ticker on a specific day.
type DailyPrice struct {
	TickerSymbol string
	Date         string // YYYY-MM-DD
	Price        float64
	Currency     string
	UpdatedAt    time.Time
}

// PriceStore keeps daily closes fetched from live providers so history
// survives restarts and outages of the live source.
type PriceStore struct {
	db *sql.DB
}

func NewPriceStore(db *sql.DB) *PriceStore {
	return &PriceStore{db: db}
}

// PricesSince returns the stored closes for ticker from the given date, oldest first.
func (s *PriceStore) PricesSince(ctx context.Context, ticker, from string) ([]models.HistoricalPrice, error) {
	query := `SELECT date, price FROM daily_prices WHERE ticker_symbol = ? AND date >= ? ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, query, ticker, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []models.HistoricalPrice
	for rows.Next() {
		var p models.HistoricalPrice
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			logger.L.Error("Error scanning price row", "ticker", ticker, "error", err)
			continue
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// PricesOnDate retrieves stored prices for a list of tickers on a specific date.
func (s *PriceStore) PricesOnDate(ctx context.Context, tickers []string, date string) (map[string]DailyPrice, error) {
	prices := make(map[string]DailyPrice)
	if len(tickers) == 0 {
		return prices, nil
	}
	query := `SELECT ticker_symbol, date, price, currency, updated_at FROM daily_prices WHERE date = ? AND ticker_symbol IN (?` + strings.Repeat(",?", len(tickers)-1) + `)`
	args := make([]any, len(tickers)+1)
	args[0] = date
	for i, ticker := range tickers {
		args[i+1] = ticker
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p DailyPrice
		if err := rows.Scan(&p.TickerSymbol, &p.Date, &p.Price, &p.Currency, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prices[p.TickerSymbol] = p
	}
	return prices, rows.Err()
}

// SaveHistory upserts a series of closes for ticker in one transaction.
func (s *PriceStore) SaveHistory(ctx context.Context, ticker, currency string, series []models.HistoricalPrice) error {
	if len(series) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO daily_prices (ticker_symbol, date, price, currency, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(ticker_symbol, date) DO UPDATE SET
            price = excluded.price,
            currency = excluded.currency,
            updated_at = excluded.updated_at;
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range series {
		if _, err := stmt.ExecContext(ctx, ticker, p.Date, p.Close, currency, now); err != nil {
			logger.L.Error("Failed to insert or update daily price", "ticker", ticker, "date", p.Date, "error", err)
			return err
		}
	}
	return tx.Commit()
}
