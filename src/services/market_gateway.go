package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/username/finboard/src/cache"
	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// PriceHistoryStore persists daily closes fetched from the live provider.
type PriceHistoryStore interface {
	PricesSince(ctx context.Context, ticker, from string) ([]models.HistoricalPrice, error)
	SaveHistory(ctx context.Context, ticker, currency string, series []models.HistoricalPrice) error
}

// GatewayConfig holds cache lifetimes and the live quote pacing.
type GatewayConfig struct {
	QuoteTTL      time.Duration
	HistoryTTL    time.Duration
	MetadataTTL   time.Duration
	NewsTTL       time.Duration
	QuoteInterval time.Duration
	Clock         cache.Clock
}

// MarketGateway is the one entry point for market data. It serves cached
// live results, calls the live provider on a miss, and substitutes simulated
// data per item when the live call fails or the mode is offline. Only
// successful live results are cached.
type MarketGateway struct {
	live     MarketDataProvider
	fallback *FallbackProvider
	mode     *ModeCoordinator
	store    PriceHistoryStore
	limiter  *rate.Limiter
	cfg      GatewayConfig

	quotes     *cache.Cache[string, models.Quote]
	history    *cache.Cache[string, []models.HistoricalPrice]
	profiles   *cache.Cache[string, models.CompanyProfile]
	financials *cache.Cache[string, models.Financials]
	dividends  *cache.Cache[string, models.Dividend]
	filings    *cache.Cache[string, []models.Filing]
	news       *cache.Cache[string, []models.NewsItem]
}

// NewMarketGateway wires a gateway. live may be nil when no provider is
// configured, in which case all data is simulated. store may be nil. A nil
// mode gets a coordinator of its own that starts live.
func NewMarketGateway(live MarketDataProvider, fallback *FallbackProvider, mode *ModeCoordinator, store PriceHistoryStore, cfg GatewayConfig) *MarketGateway {
	if mode == nil {
		mode = NewModeCoordinator()
	}
	if cfg.QuoteTTL <= 0 {
		cfg.QuoteTTL = 5 * time.Minute
	}
	if cfg.HistoryTTL <= 0 {
		cfg.HistoryTTL = time.Hour
	}
	if cfg.MetadataTTL <= 0 {
		cfg.MetadataTTL = 24 * time.Hour
	}
	if cfg.NewsTTL <= 0 {
		cfg.NewsTTL = 30 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	limit := rate.Inf
	if cfg.QuoteInterval > 0 {
		limit = rate.Every(cfg.QuoteInterval)
	}
	clock := cache.WithClock(cfg.Clock)

	return &MarketGateway{
		live:       live,
		fallback:   fallback,
		mode:       mode,
		store:      store,
		limiter:    rate.NewLimiter(limit, 1),
		cfg:        cfg,
		quotes:     cache.New[string, models.Quote](clock, cache.WithTTL(cfg.QuoteTTL)),
		history:    cache.New[string, []models.HistoricalPrice](clock, cache.WithTTL(cfg.HistoryTTL)),
		profiles:   cache.New[string, models.CompanyProfile](clock, cache.WithTTL(cfg.MetadataTTL)),
		financials: cache.New[string, models.Financials](clock, cache.WithTTL(cfg.MetadataTTL)),
		dividends:  cache.New[string, models.Dividend](clock, cache.WithTTL(cfg.MetadataTTL)),
		filings:    cache.New[string, []models.Filing](clock, cache.WithTTL(cfg.MetadataTTL)),
		news:       cache.New[string, []models.NewsItem](clock, cache.WithTTL(cfg.NewsTTL)),
	}
}

// Fallback exposes the simulated provider, e.g. as the engine's quote synthesizer.
func (g *MarketGateway) Fallback() *FallbackProvider { return g.fallback }

// Live reports whether a live provider is configured and the mode allows calls.
func (g *MarketGateway) Live() bool {
	return g.live != nil && !g.mode.IsOffline()
}

// fetch is the read-through path shared by every data kind.
func fetch[V any](ctx context.Context, g *MarketGateway, kind, ticker string, c *cache.Cache[string, V],
	live func(context.Context, MarketDataProvider) (V, error), simulated func() V) V {
	if v, ok := c.Get(ticker); ok {
		return v
	}
	if !g.Live() {
		return simulated()
	}
	v, err := live(ctx, g.live)
	if err != nil {
		logLiveFailure(ctx, g.live.Name(), kind, ticker, err)
		return simulated()
	}
	c.Set(ticker, v)
	return v
}

func logLiveFailure(ctx context.Context, source, kind, ticker string, err error) {
	log := logger.FromContext(ctx)
	switch {
	case errors.Is(err, ErrUnsupported):
		log.Debug("Live source does not provide data kind, using simulated data", "source", source, "kind", kind, "ticker", ticker)
	case errors.Is(err, ErrRateLimited):
		log.Warn("Live source rate limited, using simulated data", "source", source, "kind", kind, "ticker", ticker)
	default:
		log.Warn("Live fetch failed, using simulated data", "source", source, "kind", kind, "ticker", ticker, "error", err)
	}
}

// Quote returns the quote for ticker. Live calls are paced by the limiter.
func (g *MarketGateway) Quote(ctx context.Context, ticker string) models.Quote {
	return fetch(ctx, g, "quote", ticker, g.quotes,
		func(ctx context.Context, p MarketDataProvider) (models.Quote, error) {
			if err := g.limiter.Wait(ctx); err != nil {
				return models.Quote{}, err
			}
			return p.Quote(ctx, ticker)
		},
		func() models.Quote { return g.fallback.SynthesizeQuote(ticker) })
}

// Quotes fetches all tickers concurrently. Live calls still go out one at a
// time through the limiter.
func (g *MarketGateway) Quotes(ctx context.Context, tickers []string) map[string]models.Quote {
	var (
		mu  sync.Mutex
		out = make(map[string]models.Quote, len(tickers))
		eg  errgroup.Group
	)
	for _, ticker := range tickers {
		eg.Go(func() error {
			q := g.Quote(ctx, ticker)
			mu.Lock()
			out[ticker] = q
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// History returns daily closes for ticker from the given date. When the live
// source fails, closes stored from earlier live fetches are preferred over
// simulated ones.
func (g *MarketGateway) History(ctx context.Context, ticker, from string) []models.HistoricalPrice {
	series, err := g.storedOrLiveHistory(ctx, ticker, from)
	if err == nil {
		return series
	}
	simulated, err := g.fallback.History(ctx, ticker, from)
	if err != nil {
		logger.FromContext(ctx).Error("Simulated history failed", "ticker", ticker, "from", from, "error", err)
		return []models.HistoricalPrice{}
	}
	return simulated
}

// BenchmarkHistory loads the benchmark series. While live, a failed or empty
// live fetch with nothing stored is an error rather than simulated data.
// Offline (or with no live source) it serves stored closes, then simulated
// ones, like every other call. An empty series is always an error.
func (g *MarketGateway) BenchmarkHistory(ctx context.Context, ticker, from string) ([]models.HistoricalPrice, error) {
	if !g.Live() {
		series := g.History(ctx, ticker, from)
		if len(series) == 0 {
			return nil, fmt.Errorf("%w: %s: empty history", ErrBenchmarkUnavailable, ticker)
		}
		return series, nil
	}
	series, err := g.storedOrLiveHistory(ctx, ticker, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBenchmarkUnavailable, ticker, err)
	}
	return series, nil
}

var errNoHistory = errors.New("no stored or live history")

func (g *MarketGateway) storedOrLiveHistory(ctx context.Context, ticker, from string) ([]models.HistoricalPrice, error) {
	key := ticker + "|" + from
	if v, ok := g.history.Get(key); ok {
		return v, nil
	}

	if g.Live() {
		series, err := g.live.History(ctx, ticker, from)
		if err == nil && len(series) > 0 {
			g.history.Set(key, series)
			if g.store != nil {
				if err := g.store.SaveHistory(ctx, ticker, "USD", series); err != nil {
					logger.FromContext(ctx).Warn("Failed to persist price history", "ticker", ticker, "error", err)
				}
			}
			return series, nil
		}
		if err == nil {
			err = ErrNotFound
		}
		logLiveFailure(ctx, g.live.Name(), "history", ticker, err)
	}

	if g.store != nil {
		stored, err := g.store.PricesSince(ctx, ticker, from)
		if err != nil {
			logger.FromContext(ctx).Warn("Failed to read stored price history", "ticker", ticker, "error", err)
		} else if len(stored) > 0 {
			return stored, nil
		}
	}
	return nil, errNoHistory
}

func (g *MarketGateway) Profile(ctx context.Context, ticker string) models.CompanyProfile {
	return fetch(ctx, g, "profile", ticker, g.profiles,
		func(ctx context.Context, p MarketDataProvider) (models.CompanyProfile, error) { return p.Profile(ctx, ticker) },
		func() models.CompanyProfile { v, _ := g.fallback.Profile(ctx, ticker); return v })
}

func (g *MarketGateway) Financials(ctx context.Context, ticker string) models.Financials {
	return fetch(ctx, g, "financials", ticker, g.financials,
		func(ctx context.Context, p MarketDataProvider) (models.Financials, error) { return p.Financials(ctx, ticker) },
		func() models.Financials { v, _ := g.fallback.Financials(ctx, ticker); return v })
}

func (g *MarketGateway) Dividend(ctx context.Context, ticker string) models.Dividend {
	return fetch(ctx, g, "dividend", ticker, g.dividends,
		func(ctx context.Context, p MarketDataProvider) (models.Dividend, error) { return p.Dividend(ctx, ticker) },
		func() models.Dividend { v, _ := g.fallback.Dividend(ctx, ticker); return v })
}

// Dividends fetches dividend data for each ticker concurrently.
func (g *MarketGateway) Dividends(ctx context.Context, tickers []string) map[string]models.Dividend {
	var (
		mu  sync.Mutex
		out = make(map[string]models.Dividend, len(tickers))
		eg  errgroup.Group
	)
	for _, ticker := range tickers {
		eg.Go(func() error {
			d := g.Dividend(ctx, ticker)
			mu.Lock()
			out[ticker] = d
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func (g *MarketGateway) Filings(ctx context.Context, ticker string) []models.Filing {
	return fetch(ctx, g, "filings", ticker, g.filings,
		func(ctx context.Context, p MarketDataProvider) ([]models.Filing, error) { return p.Filings(ctx, ticker) },
		func() []models.Filing { v, _ := g.fallback.Filings(ctx, ticker); return v })
}

func (g *MarketGateway) News(ctx context.Context, ticker string) []models.NewsItem {
	return fetch(ctx, g, "news", ticker, g.news,
		func(ctx context.Context, p MarketDataProvider) ([]models.NewsItem, error) { return p.News(ctx, ticker) },
		func() []models.NewsItem { v, _ := g.fallback.News(ctx, ticker); return v })
}

// Overview bundles the per-ticker detail shown on the ticker page.
type Overview struct {
	Quote      models.Quote          `json:"quote"`
	Profile    models.CompanyProfile `json:"profile"`
	Financials models.Financials     `json:"financials"`
	Dividend   models.Dividend       `json:"dividend"`
	Filings    []models.Filing       `json:"filings"`
	News       []models.NewsItem     `json:"news"`
}

// Overview fetches every data kind for ticker concurrently.
func (g *MarketGateway) Overview(ctx context.Context, ticker string) Overview {
	var (
		ov Overview
		eg errgroup.Group
	)
	eg.Go(func() error { ov.Quote = g.Quote(ctx, ticker); return nil })
	eg.Go(func() error { ov.Profile = g.Profile(ctx, ticker); return nil })
	eg.Go(func() error { ov.Financials = g.Financials(ctx, ticker); return nil })
	eg.Go(func() error { ov.Dividend = g.Dividend(ctx, ticker); return nil })
	eg.Go(func() error { ov.Filings = g.Filings(ctx, ticker); return nil })
	eg.Go(func() error { ov.News = g.News(ctx, ticker); return nil })
	_ = eg.Wait()
	return ov
}
