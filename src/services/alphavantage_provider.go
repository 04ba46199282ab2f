package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/username/finboard/src/models"
)

const alphaVantageURL = "https://www.alphavantage.co/query"

// compactDays is how far back TIME_SERIES_DAILY's compact output (100 trading
// days) reliably reaches.
const compactDays = 140

// AlphaVantageProvider reads market data from Alpha Vantage. It has no
// filings endpoint.
type AlphaVantageProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAlphaVantageProvider returns a provider for apiKey. A nil client gets a
// default with a short timeout.
func NewAlphaVantageProvider(apiKey string, client *http.Client) *AlphaVantageProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &AlphaVantageProvider{apiKey: apiKey, baseURL: alphaVantageURL, client: client}
}

func (p *AlphaVantageProvider) Name() string { return "alphavantage" }

// query calls one Alpha Vantage function. Throttling notes come back with
// status 200, so the body is checked for them.
func (p *AlphaVantageProvider) query(ctx context.Context, function string, params url.Values) (map[string]any, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", p.apiKey)

	var jobj map[string]any
	if err := jwget(ctx, p.client, p.baseURL+"?"+params.Encode(), &jobj); err != nil {
		return nil, fmt.Errorf("alphavantage %s: %w", function, err)
	}
	if _, ok := jobj["Note"]; ok {
		return nil, fmt.Errorf("alphavantage %s: %w", function, ErrRateLimited)
	}
	if _, ok := jobj["Information"]; ok {
		return nil, fmt.Errorf("alphavantage %s: %w", function, ErrRateLimited)
	}
	if msg, ok := jobj["Error Message"]; ok {
		return nil, fmt.Errorf("alphavantage %s: %v: %w", function, msg, ErrNotFound)
	}
	if len(jobj) == 0 {
		return nil, fmt.Errorf("alphavantage %s: empty response: %w", function, ErrNotFound)
	}
	return jobj, nil
}

// jstring extracts a string at path, or "" when absent.
func jstring(jobj any, path string) string {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return ""
	}
	// jsonpath may wrap a single answer in a list
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return ""
		}
		jval = jlist[0]
	}
	s, _ := jval.(string)
	return s
}

func (p *AlphaVantageProvider) Quote(ctx context.Context, ticker string) (models.Quote, error) {
	jobj, err := p.query(ctx, "GLOBAL_QUOTE", url.Values{"symbol": {ticker}})
	if err != nil {
		return models.Quote{}, err
	}
	price, err := parseAmount(jstring(jobj, `$["Global Quote"]["05. price"]`))
	if err != nil || price <= 0 {
		return models.Quote{}, fmt.Errorf("alphavantage quote for %s: %w", ticker, ErrNotFound)
	}
	prev := amountOrZero(jstring(jobj, `$["Global Quote"]["08. previous close"]`))
	change, pct := dayChange(price, prev)
	if s := jstring(jobj, `$["Global Quote"]["09. change"]`); s != "" {
		change = amountOrZero(s)
	}
	if s := jstring(jobj, `$["Global Quote"]["10. change percent"]`); s != "" {
		pct = amountOrZero(s)
	}
	return models.Quote{
		Ticker:           ticker,
		CurrentPrice:     price,
		DayChange:        change,
		DayChangePercent: pct,
		PreviousClose:    prev,
	}, nil
}

func (p *AlphaVantageProvider) History(ctx context.Context, ticker, from string) ([]models.HistoricalPrice, error) {
	start, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", from, err)
	}
	outputSize := "compact"
	if time.Since(start) > compactDays*24*time.Hour {
		outputSize = "full"
	}

	jobj, err := p.query(ctx, "TIME_SERIES_DAILY", url.Values{"symbol": {ticker}, "outputsize": {outputSize}})
	if err != nil {
		return nil, err
	}
	jval, err := jsonpath.Get(`$["Time Series (Daily)"]`, jobj)
	if err != nil {
		return nil, fmt.Errorf("alphavantage history for %s: %w", ticker, ErrNotFound)
	}
	days, ok := jval.(map[string]any)
	if !ok || len(days) == 0 {
		return nil, fmt.Errorf("alphavantage history for %s: %w", ticker, ErrNotFound)
	}

	out := make([]models.HistoricalPrice, 0, len(days))
	for date, bar := range days {
		if date < from {
			continue
		}
		closeStr := jstring(bar, `$["4. close"]`)
		price, err := parseAmount(closeStr)
		if err != nil || price <= 0 {
			continue
		}
		out = append(out, models.HistoricalPrice{Date: date, Close: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (p *AlphaVantageProvider) Profile(ctx context.Context, ticker string) (models.CompanyProfile, error) {
	jobj, err := p.query(ctx, "OVERVIEW", url.Values{"symbol": {ticker}})
	if err != nil {
		return models.CompanyProfile{}, err
	}
	name := jstring(jobj, "$.Name")
	if name == "" {
		return models.CompanyProfile{}, fmt.Errorf("alphavantage profile for %s: %w", ticker, ErrNotFound)
	}
	return models.CompanyProfile{
		Ticker:      ticker,
		Name:        name,
		Sector:      titleCase(jstring(jobj, "$.Sector")),
		Industry:    titleCase(jstring(jobj, "$.Industry")),
		Exchange:    jstring(jobj, "$.Exchange"),
		Currency:    jstring(jobj, "$.Currency"),
		Description: jstring(jobj, "$.Description"),
	}, nil
}

func (p *AlphaVantageProvider) Financials(ctx context.Context, ticker string) (models.Financials, error) {
	jobj, err := p.query(ctx, "INCOME_STATEMENT", url.Values{"symbol": {ticker}})
	if err != nil {
		return models.Financials{}, err
	}
	fiscal := jstring(jobj, "$.annualReports[0].fiscalDateEnding")
	if fiscal == "" {
		return models.Financials{}, fmt.Errorf("alphavantage financials for %s: %w", ticker, ErrNotFound)
	}
	return models.Financials{
		Ticker:          ticker,
		FiscalYear:      fiscal[:min(4, len(fiscal))],
		Revenue:         amountOrZero(jstring(jobj, "$.annualReports[0].totalRevenue")),
		GrossProfit:     amountOrZero(jstring(jobj, "$.annualReports[0].grossProfit")),
		OperatingIncome: amountOrZero(jstring(jobj, "$.annualReports[0].operatingIncome")),
		NetIncome:       amountOrZero(jstring(jobj, "$.annualReports[0].netIncome")),
	}, nil
}

// Dividend returns the most recent declared dividend.
func (p *AlphaVantageProvider) Dividend(ctx context.Context, ticker string) (models.Dividend, error) {
	jobj, err := p.query(ctx, "DIVIDENDS", url.Values{"symbol": {ticker}})
	if err != nil {
		return models.Dividend{}, err
	}
	amount := amountOrZero(jstring(jobj, "$.data[0].amount"))
	return models.Dividend{
		Ticker:  ticker,
		ExDate:  jstring(jobj, "$.data[0].ex_dividend_date"),
		PayDate: jstring(jobj, "$.data[0].payment_date"),
		Amount:  amount,
	}, nil
}

func (p *AlphaVantageProvider) Filings(context.Context, string) ([]models.Filing, error) {
	return nil, fmt.Errorf("alphavantage filings: %w", ErrUnsupported)
}

func (p *AlphaVantageProvider) News(ctx context.Context, ticker string) ([]models.NewsItem, error) {
	jobj, err := p.query(ctx, "NEWS_SENTIMENT", url.Values{"tickers": {ticker}, "limit": {"20"}})
	if err != nil {
		return nil, err
	}
	feed, _ := jobj["feed"].([]any)
	out := make([]models.NewsItem, 0, len(feed))
	for _, entry := range feed {
		link := jstring(entry, "$.url")
		headline := jstring(entry, "$.title")
		if headline == "" {
			continue
		}
		published, _ := time.Parse("20060102T150405", jstring(entry, "$.time_published"))
		out = append(out, models.NewsItem{
			ID:          "av-" + fmt.Sprintf("%x", seed(link, headline)),
			Ticker:      ticker,
			Headline:    headline,
			Summary:     jstring(entry, "$.summary"),
			Source:      jstring(entry, "$.source"),
			URL:         link,
			PublishedAt: published.UTC(),
			Sentiment:   sentimentFromLabel(jstring(entry, "$.overall_sentiment_label")),
		})
	}
	return out, nil
}

func sentimentFromLabel(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "bullish"):
		return "positive"
	case strings.Contains(l, "bearish"):
		return "negative"
	}
	return "neutral"
}

// titleCase turns Alpha Vantage's "LIFE SCIENCES" into "Life Sciences".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
