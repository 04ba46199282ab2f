package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYahooTestProvider(t *testing.T, mux *http.ServeMux) (*YahooProvider, *atomic.Int32) {
	t.Helper()
	var crumbs atomic.Int32
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		crumbs.Add(1)
		w.Write([]byte("crumb-123"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewYahooProvider()
	p.host = srv.URL
	p.cookieURLs = nil
	return p, &crumbs
}

const yahooChartBody = `{"chart": {"result": [{
	"meta": {"currency": "USD", "symbol": "AAPL", "regularMarketPrice": 194.03, "chartPreviousClose": 190.0, "previousClose": 192.25},
	"timestamp": [1717421400, 1717507800, 1717594200],
	"indicators": {"quote": [{"close": [194.03, null, 195.87]}]},
	"events": {"dividends": {
		"1715347800": {"amount": 0.25, "date": 1715347800},
		"1707489000": {"amount": 0.24, "date": 1707489000}}}
}], "error": null}}`

func TestYahooQuoteUsesCrumbSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "crumb-123", r.URL.Query().Get("crumb"))
		w.Write([]byte(yahooChartBody))
	})
	p, crumbs := newYahooTestProvider(t, mux)
	ctx := context.Background()

	q, err := p.Quote(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 194.03, q.CurrentPrice)
	assert.Equal(t, 192.25, q.PreviousClose)
	assert.InDelta(t, 1.78, q.DayChange, 1e-9)

	_, err = p.Quote(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(1), crumbs.Load(), "crumb is fetched once per session")
}

func TestYahooHistorySkipsNullCloses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(yahooChartBody))
	})
	p, _ := newYahooTestProvider(t, mux)

	series, err := p.History(context.Background(), "AAPL", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-06-03", series[0].Date)
	assert.Equal(t, 194.03, series[0].Close)
	assert.Equal(t, "2024-06-05", series[1].Date)
}

func TestYahooDividendProjectsNextQuarter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "div", r.URL.Query().Get("events"))
		w.Write([]byte(yahooChartBody))
	})
	p, _ := newYahooTestProvider(t, mux)

	d, err := p.Dividend(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 0.25, d.Amount)
	assert.Equal(t, "2024-08-10", d.ExDate)
}

func TestYahooUnauthorizedResetsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	p, crumbs := newYahooTestProvider(t, mux)
	ctx := context.Background()

	_, err := p.Quote(ctx, "AAPL")
	require.Error(t, err)
	_, err = p.Quote(ctx, "AAPL")
	require.Error(t, err)
	assert.Equal(t, int32(2), crumbs.Load(), "a 401 forces a new crumb")
}

func TestYahooRateLimitAndNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/BUSY", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/v8/finance/chart/NONE", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": [], "error": null}}`))
	})
	p, _ := newYahooTestProvider(t, mux)
	ctx := context.Background()

	_, err := p.Quote(ctx, "BUSY")
	assert.ErrorIs(t, err, ErrRateLimited)
	_, err = p.Quote(ctx, "NONE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestYahooProfileAndFilings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v10/finance/quoteSummary/SPY", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary": {"result": [{
			"assetProfile": {},
			"fundProfile": {"categoryName": "Large Blend"},
			"price": {"longName": "SPDR S&P 500 ETF Trust", "exchangeName": "NYSEArca", "currency": "USD"},
			"secFilings": {"filings": [{"date": "2024-05-01", "type": "N-CSR", "title": "Annual report", "edgarUrl": "https://example.com/f"}]}
		}], "error": null}}`))
	})
	p, _ := newYahooTestProvider(t, mux)
	ctx := context.Background()

	prof, err := p.Profile(ctx, "SPY")
	require.NoError(t, err)
	assert.Equal(t, "SPDR S&P 500 ETF Trust", prof.Name)
	assert.Equal(t, "Large Blend", prof.Sector)
	assert.Equal(t, "ETF", prof.Industry)

	filings, err := p.Filings(ctx, "SPY")
	require.NoError(t, err)
	require.Len(t, filings, 1)
	assert.Equal(t, "N-CSR", filings[0].Form)
}
