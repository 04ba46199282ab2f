package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/username/finboard/src/models"
)

var simulatedSectors = []string{
	"Technology", "Healthcare", "Financials", "Consumer Discretionary", "Industrials",
	"Energy", "Consumer Staples", "Utilities", "Real Estate", "Communication Services",
}

var simulatedHeadlines = []string{
	"%s shares move as analysts revisit price targets",
	"What %s's latest guidance means for investors",
	"%s draws attention ahead of quarterly results",
	"Institutional investors adjust %s positions",
	"%s announces update to capital return program",
}

var simulatedSentiments = []string{"positive", "neutral", "negative"}

// FallbackProvider synthesizes deterministic market data and commentary.
// The same ticker on the same day always yields the same values, so
// recomputations stay stable while live data is unavailable.
type FallbackProvider struct {
	now func() time.Time
}

// NewFallbackProvider returns a provider using the given clock; nil means time.Now.
func NewFallbackProvider(now func() time.Time) *FallbackProvider {
	if now == nil {
		now = time.Now
	}
	return &FallbackProvider{now: now}
}

func seed(parts ...string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(parts, "|")))
	return h.Sum64()
}

func rngFor(parts ...string) *rand.Rand {
	s := seed(parts...)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (p *FallbackProvider) today() string {
	return p.now().UTC().Format(models.DateLayout)
}

// basePrice is the ticker's simulated price level, between 20 and 500.
func basePrice(ticker string) float64 {
	r := rngFor("price", ticker)
	return round2(20 + r.Float64()*480)
}

// dailyReturn is the simulated move into the given day, in [-2%, +2.2%].
func dailyReturn(ticker, date string) float64 {
	r := rngFor("return", ticker, date)
	return -0.02 + r.Float64()*0.042
}

// SynthesizeQuote returns today's simulated quote for ticker.
func (p *FallbackProvider) SynthesizeQuote(ticker string) models.Quote {
	today := p.today()
	price := basePrice(ticker)
	prev := round2(price / (1 + dailyReturn(ticker, today)))
	change, pct := dayChange(price, prev)
	return models.Quote{
		Ticker:           ticker,
		CurrentPrice:     price,
		DayChange:        change,
		DayChangePercent: pct,
		PreviousClose:    prev,
		Simulated:        true,
	}
}

func (p *FallbackProvider) Name() string { return "simulated" }

func (p *FallbackProvider) Quote(_ context.Context, ticker string) (models.Quote, error) {
	return p.SynthesizeQuote(ticker), nil
}

// maxSimulatedDays caps generated history at about ten years of weekdays.
const maxSimulatedDays = 2600

// History walks back from today's simulated price, one weekday at a time.
// A day's close does not depend on from, so overlapping ranges agree.
func (p *FallbackProvider) History(_ context.Context, ticker, from string) ([]models.HistoricalPrice, error) {
	start, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", from, err)
	}
	end, _ := time.Parse(models.DateLayout, p.today())

	var dates []string
	for d := end; !d.Before(start) && len(dates) < maxSimulatedDays; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, d.Format(models.DateLayout))
	}
	if len(dates) == 0 {
		return []models.HistoricalPrice{}, nil
	}

	out := make([]models.HistoricalPrice, len(dates))
	price := basePrice(ticker)
	for i, date := range dates {
		out[len(dates)-1-i] = models.HistoricalPrice{Date: date, Close: round2(price)}
		price = price / (1 + dailyReturn(ticker, date))
	}
	return out, nil
}

func (p *FallbackProvider) Profile(_ context.Context, ticker string) (models.CompanyProfile, error) {
	r := rngFor("profile", ticker)
	sector := simulatedSectors[r.IntN(len(simulatedSectors))]
	return models.CompanyProfile{
		Ticker:      ticker,
		Name:        ticker + " Holdings",
		Sector:      sector,
		Industry:    sector,
		Exchange:    "NASDAQ",
		Currency:    "USD",
		Description: fmt.Sprintf("Simulated profile for %s while live market data is unavailable.", ticker),
		Simulated:   true,
	}, nil
}

func (p *FallbackProvider) Financials(_ context.Context, ticker string) (models.Financials, error) {
	r := rngFor("financials", ticker)
	revenue := math.Round(1e8 + r.Float64()*5e10)
	gross := math.Round(revenue * (0.25 + r.Float64()*0.45))
	operating := math.Round(gross * (0.3 + r.Float64()*0.4))
	net := math.Round(operating * (0.6 + r.Float64()*0.25))
	shares := 1e7 + r.Float64()*5e9
	return models.Financials{
		Ticker:          ticker,
		FiscalYear:      fmt.Sprint(p.now().UTC().Year() - 1),
		Revenue:         revenue,
		GrossProfit:     gross,
		OperatingIncome: operating,
		NetIncome:       net,
		EPS:             round2(net / shares),
		Simulated:       true,
	}, nil
}

// Dividend gives about 60% of tickers a quarterly dividend paid next month.
func (p *FallbackProvider) Dividend(_ context.Context, ticker string) (models.Dividend, error) {
	r := rngFor("dividend", ticker)
	if r.Float64() >= 0.6 {
		return models.Dividend{Ticker: ticker}, nil
	}
	yield := 0.005 + r.Float64()*0.045
	now := p.now().UTC()
	exDate := time.Date(now.Year(), now.Month()+1, 10, 0, 0, 0, 0, time.UTC)
	return models.Dividend{
		Ticker:  ticker,
		ExDate:  exDate.Format(models.DateLayout),
		PayDate: exDate.AddDate(0, 0, 14).Format(models.DateLayout),
		Amount:  round2(basePrice(ticker) * yield / 4),
	}, nil
}

func (p *FallbackProvider) Filings(_ context.Context, ticker string) ([]models.Filing, error) {
	now := p.now().UTC()
	forms := []struct {
		form, title string
		ago         int
	}{
		{"10-Q", "Quarterly report", 35},
		{"8-K", "Current report", 60},
		{"10-K", "Annual report", 120},
	}
	out := make([]models.Filing, 0, len(forms))
	for _, f := range forms {
		out = append(out, models.Filing{
			Ticker:  ticker,
			Form:    f.form,
			FiledAt: now.AddDate(0, 0, -f.ago).Format(models.DateLayout),
			Title:   fmt.Sprintf("%s %s", ticker, f.title),
		})
	}
	return out, nil
}

func (p *FallbackProvider) News(_ context.Context, ticker string) ([]models.NewsItem, error) {
	today := p.today()
	r := rngFor("news", ticker, today)
	day, _ := time.Parse(models.DateLayout, today)

	out := make([]models.NewsItem, 0, 3)
	for i := 0; i < 3; i++ {
		headline := simulatedHeadlines[r.IntN(len(simulatedHeadlines))]
		out = append(out, models.NewsItem{
			ID:          fmt.Sprintf("sim-%s-%s-%d", ticker, today, i),
			Ticker:      ticker,
			Headline:    fmt.Sprintf(headline, ticker),
			Summary:     "Simulated headline shown while live news is unavailable.",
			Source:      "Finboard (simulated)",
			PublishedAt: day.Add(time.Duration(8+i*3) * time.Hour),
			Sentiment:   simulatedSentiments[r.IntN(len(simulatedSentiments))],
		})
	}
	return out, nil
}

// Content produces commentary, a score and alerts from the holdings alone.
func (p *FallbackProvider) Content(holdings []models.Holding, currency string) AIContent {
	if money.GetCurrency(currency) == nil {
		currency = money.USD
	}

	total := 0.0
	for _, h := range holdings {
		total += h.TotalValue
	}

	if len(holdings) == 0 || total <= 0 {
		return AIContent{
			Summary: "Add your first holding to get portfolio insights.",
			Insights: []models.Insight{{
				ID: "sim-getting-started", Title: "Get started", Category: "summary",
				Body: "<p>Add a transaction or sync your brokerage to see insights here.</p>",
			}},
			Score:     models.PortfolioScore{Score: 0, Explanation: "No holdings to score yet."},
			Alerts:    []models.Alert{},
			Simulated: true,
		}
	}

	sectors := make(map[string]float64)
	var largest models.Holding
	for _, h := range holdings {
		name := h.Sector
		if name == "" {
			name = "Other"
		}
		sectors[name] += h.TotalValue
		if h.TotalValue > largest.TotalValue {
			largest = h
		}
	}
	largestWeight := largest.TotalValue / total * 100

	score := 50.0 + math.Min(float64(len(sectors)), 5)*6 + math.Min(float64(len(holdings)), 10)*1.5
	if largestWeight > 40 {
		score -= (largestWeight - 40) * 0.8
	}
	score = math.Max(0, math.Min(100, math.Round(score)))

	worth := money.NewFromFloat(total, currency).Display()
	summary := fmt.Sprintf("Your portfolio is worth %s across %d holdings in %d sectors.", worth, len(holdings), len(sectors))

	var insights []models.Insight
	insights = append(insights, models.Insight{
		ID: "sim-summary", Title: "Portfolio overview", Category: "summary",
		Body: "<p>" + summary + "</p>",
	})
	insights = append(insights, models.Insight{
		ID: "sim-concentration", Title: "Largest position", Category: "risk",
		Body: fmt.Sprintf("<p>%s is %.1f%% of your portfolio (%s).</p>",
			largest.Ticker, largestWeight, money.NewFromFloat(largest.TotalValue, currency).Display()),
	})
	if len(sectors) < 3 {
		insights = append(insights, models.Insight{
			ID: "sim-diversify", Title: "Diversification", Category: "suggestion",
			Body: "<p>Holdings span fewer than three sectors. Spreading across more sectors reduces single-sector risk.</p>",
		})
	}

	alerts := []models.Alert{}
	ordered := make([]models.Holding, len(holdings))
	copy(ordered, holdings)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Ticker < ordered[j].Ticker })
	for _, h := range ordered {
		if h.UnrealizedGainPercent <= -10 {
			alerts = append(alerts, models.Alert{
				ID: "sim-loss-" + h.Ticker, Ticker: h.Ticker, Severity: "warning",
				Message: fmt.Sprintf("%s is down %.1f%% from your cost basis.", h.Ticker, -h.UnrealizedGainPercent),
			})
		}
		if w := h.TotalValue / total * 100; w > 40 && len(holdings) > 1 {
			alerts = append(alerts, models.Alert{
				ID: "sim-weight-" + h.Ticker, Ticker: h.Ticker, Severity: "info",
				Message: fmt.Sprintf("%s makes up %.1f%% of your portfolio.", h.Ticker, w),
			})
		}
	}

	return AIContent{
		Summary:  summary,
		Insights: insights,
		Score: models.PortfolioScore{
			Score:       int(score),
			Explanation: fmt.Sprintf("Based on %d holdings across %d sectors; the largest position is %.1f%% of the portfolio.", len(holdings), len(sectors), largestWeight),
		},
		Alerts:    alerts,
		Simulated: true,
	}
}
