package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
	"golang.org/x/net/publicsuffix"
)

const yahooQueryHost = "https://query1.finance.yahoo.com"

// --- API Response Structs ---

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

type yahooRaw struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector              string `json:"sector"`
				Industry            string `json:"industry"`
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
			FundProfile struct {
				CategoryName string `json:"categoryName"`
			} `json:"fundProfile"`
			Price struct {
				LongName     string `json:"longName"`
				ShortName    string `json:"shortName"`
				ExchangeName string `json:"exchangeName"`
				Currency     string `json:"currency"`
			} `json:"price"`
			IncomeStatementHistory struct {
				IncomeStatementHistory []struct {
					EndDate         yahooRaw `json:"endDate"`
					TotalRevenue    yahooRaw `json:"totalRevenue"`
					GrossProfit     yahooRaw `json:"grossProfit"`
					OperatingIncome yahooRaw `json:"operatingIncome"`
					NetIncome       yahooRaw `json:"netIncome"`
				} `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			DefaultKeyStatistics struct {
				TrailingEps yahooRaw `json:"trailingEps"`
			} `json:"defaultKeyStatistics"`
			SecFilings struct {
				Filings []struct {
					Date     string `json:"date"`
					Type     string `json:"type"`
					Title    string `json:"title"`
					EdgarURL string `json:"edgarUrl"`
				} `json:"filings"`
			} `json:"secFilings"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteSummary"`
}

type yahooSearchResponse struct {
	News []struct {
		UUID                string `json:"uuid"`
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// --- Provider Implementation ---

// YahooProvider reads market data from Yahoo Finance's public endpoints,
// which need a session cookie and a crumb.
type YahooProvider struct {
	httpClient *http.Client
	host       string
	cookieURLs []string

	mu            sync.Mutex
	isInitialized bool
	crumb         string
}

// NewYahooProvider creates a provider with its own cookie jar.
func NewYahooProvider() *YahooProvider {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}
	return &YahooProvider{
		httpClient: &http.Client{Jar: jar, Timeout: 20 * time.Second},
		host:       yahooQueryHost,
		cookieURLs: []string{"https://fc.yahoo.com", "https://finance.yahoo.com"},
	}
}

func (s *YahooProvider) Name() string { return "yahoo" }

func (s *YahooProvider) initializeSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isInitialized && s.crumb != "" {
		return
	}

	logger.L.Info("Initializing Yahoo Finance session and fetching crumb...")
	for _, addr := range s.cookieURLs {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", userAgent)
		resp, err := s.httpClient.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.host+"/v1/test/getcrumb", nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.L.Error("Failed to fetch crumb", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		s.crumb = strings.TrimSpace(string(bodyBytes))
		s.isInitialized = s.crumb != ""
		logger.L.Info("Yahoo session initialized", "ok", s.isInitialized)
	} else {
		logger.L.Warn("Failed to fetch crumb", "status", resp.Status)
	}
}

func (s *YahooProvider) ensureSession(ctx context.Context) string {
	s.mu.Lock()
	needsInit := !s.isInitialized || s.crumb == ""
	s.mu.Unlock()

	if needsInit {
		s.initializeSession(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crumb
}

func (s *YahooProvider) invalidateSession() {
	s.mu.Lock()
	s.isInitialized = false
	s.mu.Unlock()
}

// get calls a query endpoint with the session crumb and decodes the body.
func (s *YahooProvider) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("crumb", s.ensureSession(ctx))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.host+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Yahoo %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		s.invalidateSession()
		return fmt.Errorf("yahoo %s: status 401 (Unauthorized) - crumb invalid", path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("yahoo %s: %w", path, ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("yahoo %s: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("yahoo %s returned non-OK status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Yahoo %s response: %w", path, err)
	}
	return nil
}

func (s *YahooProvider) chart(ctx context.Context, ticker string, params url.Values) (*yahooChartResponse, error) {
	var data yahooChartResponse
	if err := s.get(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), params, &data); err != nil {
		return nil, err
	}
	if data.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart API returned an error: %v", data.Chart.Error)
	}
	if len(data.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart for %s: %w", ticker, ErrNotFound)
	}
	return &data, nil
}

func (s *YahooProvider) Quote(ctx context.Context, ticker string) (models.Quote, error) {
	data, err := s.chart(ctx, ticker, url.Values{"interval": {"1d"}, "range": {"5d"}})
	if err != nil {
		return models.Quote{}, err
	}
	meta := data.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return models.Quote{}, fmt.Errorf("no price data found for %s: %w", ticker, ErrNotFound)
	}
	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}
	change, pct := dayChange(meta.RegularMarketPrice, prev)
	return models.Quote{
		Ticker:           ticker,
		CurrentPrice:     meta.RegularMarketPrice,
		DayChange:        change,
		DayChangePercent: pct,
		PreviousClose:    prev,
	}, nil
}

func (s *YahooProvider) History(ctx context.Context, ticker, from string) ([]models.HistoricalPrice, error) {
	start, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", from, err)
	}
	data, err := s.chart(ctx, ticker, url.Values{
		"interval": {"1d"},
		"period1":  {fmt.Sprint(start.Unix())},
		"period2":  {fmt.Sprint(time.Now().Unix())},
	})
	if err != nil {
		return nil, err
	}
	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data found for %s: %w", ticker, ErrNotFound)
	}
	closes := result.Indicators.Quote[0].Close
	if len(result.Timestamp) != len(closes) {
		return nil, fmt.Errorf("yahoo history for %s: data mismatch", ticker)
	}

	byDate := make(map[string]float64, len(closes))
	for i, ts := range result.Timestamp {
		if closes[i] == nil || *closes[i] == 0 {
			continue
		}
		byDate[time.Unix(ts, 0).UTC().Format(models.DateLayout)] = *closes[i]
	}
	out := make([]models.HistoricalPrice, 0, len(byDate))
	for date, price := range byDate {
		if date >= from {
			out = append(out, models.HistoricalPrice{Date: date, Close: price})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *YahooProvider) quoteSummary(ctx context.Context, ticker, modules string) (*yahooQuoteSummaryResponse, error) {
	var data yahooQuoteSummaryResponse
	if err := s.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(ticker), url.Values{"modules": {modules}}, &data); err != nil {
		return nil, err
	}
	if len(data.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo quoteSummary for %s: %w", ticker, ErrNotFound)
	}
	return &data, nil
}

func (s *YahooProvider) Profile(ctx context.Context, ticker string) (models.CompanyProfile, error) {
	data, err := s.quoteSummary(ctx, ticker, "assetProfile,fundProfile,price")
	if err != nil {
		return models.CompanyProfile{}, err
	}
	res := data.QuoteSummary.Result[0]
	name := res.Price.LongName
	if name == "" {
		name = res.Price.ShortName
	}
	sector, industry := res.AssetProfile.Sector, res.AssetProfile.Industry
	if sector == "" && res.FundProfile.CategoryName != "" {
		sector = res.FundProfile.CategoryName
		industry = "ETF"
	}
	return models.CompanyProfile{
		Ticker:      ticker,
		Name:        name,
		Sector:      sector,
		Industry:    industry,
		Exchange:    res.Price.ExchangeName,
		Currency:    res.Price.Currency,
		Description: res.AssetProfile.LongBusinessSummary,
	}, nil
}

func (s *YahooProvider) Financials(ctx context.Context, ticker string) (models.Financials, error) {
	data, err := s.quoteSummary(ctx, ticker, "incomeStatementHistory,defaultKeyStatistics")
	if err != nil {
		return models.Financials{}, err
	}
	res := data.QuoteSummary.Result[0]
	history := res.IncomeStatementHistory.IncomeStatementHistory
	if len(history) == 0 {
		return models.Financials{}, fmt.Errorf("yahoo financials for %s: %w", ticker, ErrNotFound)
	}
	latest := history[0]
	return models.Financials{
		Ticker:          ticker,
		FiscalYear:      fmt.Sprint(time.Unix(int64(latest.EndDate.Raw), 0).UTC().Year()),
		Revenue:         latest.TotalRevenue.Raw,
		GrossProfit:     latest.GrossProfit.Raw,
		OperatingIncome: latest.OperatingIncome.Raw,
		NetIncome:       latest.NetIncome.Raw,
		EPS:             res.DefaultKeyStatistics.TrailingEps.Raw,
	}, nil
}

// Dividend projects the next payment from the most recent one in the last
// year, assuming a quarterly schedule.
func (s *YahooProvider) Dividend(ctx context.Context, ticker string) (models.Dividend, error) {
	now := time.Now()
	data, err := s.chart(ctx, ticker, url.Values{
		"interval": {"1d"},
		"events":   {"div"},
		"period1":  {fmt.Sprint(now.AddDate(-1, 0, 0).Unix())},
		"period2":  {fmt.Sprint(now.Unix())},
	})
	if err != nil {
		return models.Dividend{}, err
	}

	var lastDate int64
	var lastAmount float64
	for _, div := range data.Chart.Result[0].Events.Dividends {
		if div.Amount > 0 && div.Date > lastDate {
			lastDate, lastAmount = div.Date, div.Amount
		}
	}
	if lastDate == 0 {
		return models.Dividend{Ticker: ticker}, nil
	}
	next := time.Unix(lastDate, 0).UTC().AddDate(0, 3, 0)
	return models.Dividend{
		Ticker:  ticker,
		ExDate:  next.Format(models.DateLayout),
		PayDate: next.AddDate(0, 0, 14).Format(models.DateLayout),
		Amount:  lastAmount,
	}, nil
}

func (s *YahooProvider) Filings(ctx context.Context, ticker string) ([]models.Filing, error) {
	data, err := s.quoteSummary(ctx, ticker, "secFilings")
	if err != nil {
		return nil, err
	}
	raw := data.QuoteSummary.Result[0].SecFilings.Filings
	out := make([]models.Filing, 0, len(raw))
	for _, f := range raw {
		out = append(out, models.Filing{Ticker: ticker, Form: f.Type, FiledAt: f.Date, Title: f.Title, URL: f.EdgarURL})
	}
	return out, nil
}

func (s *YahooProvider) News(ctx context.Context, ticker string) ([]models.NewsItem, error) {
	var data yahooSearchResponse
	if err := s.get(ctx, "/v1/finance/search", url.Values{"q": {ticker}, "quotesCount": {"0"}, "newsCount": {"10"}}, &data); err != nil {
		return nil, err
	}
	out := make([]models.NewsItem, 0, len(data.News))
	for _, n := range data.News {
		out = append(out, models.NewsItem{
			ID:          "yf-" + n.UUID,
			Ticker:      ticker,
			Headline:    n.Title,
			Source:      n.Publisher,
			URL:         n.Link,
			PublishedAt: time.Unix(n.ProviderPublishTime, 0).UTC(),
			Sentiment:   "neutral",
		})
	}
	return out, nil
}
