package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/finboard/src/models"
)

// MarketDataProvider is a source of market data. Any call may fail.
type MarketDataProvider interface {
	Name() string
	Quote(ctx context.Context, ticker string) (models.Quote, error)
	// History returns daily closes from the given YYYY-MM-DD date, oldest first.
	History(ctx context.Context, ticker, from string) ([]models.HistoricalPrice, error)
	Profile(ctx context.Context, ticker string) (models.CompanyProfile, error)
	Financials(ctx context.Context, ticker string) (models.Financials, error)
	Dividend(ctx context.Context, ticker string) (models.Dividend, error)
	Filings(ctx context.Context, ticker string) ([]models.Filing, error)
	News(ctx context.Context, ticker string) ([]models.NewsItem, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// jwget GETs addr and decodes the JSON body into data.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("cannot http GET %v%v: %w", resp.Request.URL.Host, resp.Request.URL.Path, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// parseAmount reads a numeric string as sent by market data APIs ("189.8400",
// "1.25%", "None"). Values are rounded to 6 places to shed float noise.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" || s == "None" || s == "-" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Round(6).InexactFloat64(), nil
}

// amountOrZero is parseAmount for optional fields.
func amountOrZero(s string) float64 {
	v, err := parseAmount(s)
	if err != nil {
		return 0
	}
	return v
}

// dayChange derives change and percent change from a price and previous close.
func dayChange(price, previousClose float64) (float64, float64) {
	if previousClose <= 0 {
		return 0, 0
	}
	p := decimal.NewFromFloat(price)
	prev := decimal.NewFromFloat(previousClose)
	change := p.Sub(prev)
	pct := change.Div(prev).Mul(decimal.NewFromInt(100))
	return change.Round(4).InexactFloat64(), pct.Round(4).InexactFloat64()
}
