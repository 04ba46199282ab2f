package services

import (
	"context"
	"errors"
	"sync"

	"github.com/username/finboard/src/models"
)

var errUpstream = errors.New("upstream unavailable")

// fakeProvider serves configured values and fails everything else.
type fakeProvider struct {
	mu      sync.Mutex
	calls   map[string]int
	prices  map[string]float64
	history map[string][]models.HistoricalPrice
	onQuote func(ticker string)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		calls:   make(map[string]int),
		prices:  make(map[string]float64),
		history: make(map[string][]models.HistoricalPrice),
	}
}

func (f *fakeProvider) record(kind, ticker string) {
	f.mu.Lock()
	f.calls[kind+":"+ticker]++
	f.mu.Unlock()
}

func (f *fakeProvider) callCount(kind, ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind+":"+ticker]
}

func (f *fakeProvider) setPrice(ticker string, price float64) {
	f.mu.Lock()
	f.prices[ticker] = price
	f.mu.Unlock()
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Quote(_ context.Context, ticker string) (models.Quote, error) {
	f.record("quote", ticker)
	f.mu.Lock()
	price, ok := f.prices[ticker]
	hook := f.onQuote
	f.mu.Unlock()
	if hook != nil {
		hook(ticker)
	}
	if !ok {
		return models.Quote{}, errUpstream
	}
	return models.Quote{Ticker: ticker, CurrentPrice: price, PreviousClose: price}, nil
}

func (f *fakeProvider) History(_ context.Context, ticker, from string) ([]models.HistoricalPrice, error) {
	f.record("history", ticker)
	f.mu.Lock()
	series, ok := f.history[ticker]
	f.mu.Unlock()
	if !ok {
		return nil, errUpstream
	}
	var out []models.HistoricalPrice
	for _, p := range series {
		if p.Date >= from {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProvider) Profile(_ context.Context, ticker string) (models.CompanyProfile, error) {
	f.record("profile", ticker)
	return models.CompanyProfile{}, errUpstream
}

func (f *fakeProvider) Financials(_ context.Context, ticker string) (models.Financials, error) {
	f.record("financials", ticker)
	return models.Financials{}, errUpstream
}

func (f *fakeProvider) Dividend(_ context.Context, ticker string) (models.Dividend, error) {
	f.record("dividend", ticker)
	return models.Dividend{}, errUpstream
}

func (f *fakeProvider) Filings(_ context.Context, ticker string) ([]models.Filing, error) {
	f.record("filings", ticker)
	return nil, ErrUnsupported
}

func (f *fakeProvider) News(_ context.Context, ticker string) ([]models.NewsItem, error) {
	f.record("news", ticker)
	return nil, errUpstream
}
