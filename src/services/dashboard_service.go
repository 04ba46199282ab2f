package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/model"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/processors"
	"github.com/username/finboard/src/security/validation"
	"golang.org/x/sync/errgroup"
)

const (
	// StorageKeyPrefix prefixes the user id to form the dashboard storage key.
	StorageKeyPrefix = "finboard_dashboard_"

	ckDashboard            = "agg_dashboard_user_%s"
	ckPerformance          = "res_performance_user_%s_bm_%s_rev_%d"
	ckDividendProjection   = "agg_dividend_projection_user_%s_rev_%d"
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute

	// DefaultWatchlistID names the watchlist every new dashboard starts with.
	DefaultWatchlistID = "default"

	maxNewsItems       = 20
	performanceRetries = 3
)

// StorageKey returns the key a user's dashboard is persisted under.
func StorageKey(userID string) string {
	return StorageKeyPrefix + userID
}

type dashboardServiceImpl struct {
	repo        DashboardRepository
	gateway     *MarketGateway
	ai          *AIService
	performance *PerformanceService
	brokerage   *BrokerageService
	dividends   processors.DividendProcessor
	benchmark   string
	reportCache *cache.Cache
	now         func() time.Time

	locksMu sync.Mutex
	locks   map[string]*userLock
}

// userLock serializes one user's operations. refs counts holders and waiters.
type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewDashboardService(
	repo DashboardRepository,
	gateway *MarketGateway,
	ai *AIService,
	performance *PerformanceService,
	brokerage *BrokerageService,
	dividends processors.DividendProcessor,
	benchmark string,
	reportCache *cache.Cache,
) DashboardService {
	return &dashboardServiceImpl{
		repo:        repo,
		gateway:     gateway,
		ai:          ai,
		performance: performance,
		brokerage:   brokerage,
		dividends:   dividends,
		benchmark:   benchmark,
		reportCache: reportCache,
		now:         time.Now,
		locks:       make(map[string]*userLock),
	}
}

// NewDashboard returns the state of a user with no saved data.
func NewDashboard() *models.DashboardData {
	d := &models.DashboardData{
		Profile: models.Profile{Currency: "USD", Theme: "light"},
		Watchlists: []models.Watchlist{
			{ID: DefaultWatchlistID, Name: "My Watchlist", Tickers: []string{}},
		},
	}
	normalize(d)
	return d
}

// normalize replaces nil collections with empty ones and adds catalog
// achievements the saved data predates.
func normalize(d *models.DashboardData) {
	if d.Holdings == nil {
		d.Holdings = []models.Holding{}
	}
	if d.Transactions == nil {
		d.Transactions = []models.Transaction{}
	}
	if d.Allocation == nil {
		d.Allocation = []models.AllocationEntry{}
	}
	if d.Performance == nil {
		d.Performance = []models.PerformancePoint{}
	}
	if d.News == nil {
		d.News = []models.NewsItem{}
	}
	if d.Insights == nil {
		d.Insights = []models.Insight{}
	}
	if d.Alerts == nil {
		d.Alerts = []models.Alert{}
	}
	if d.Watchlists == nil {
		d.Watchlists = []models.Watchlist{}
	}
	if d.Notes == nil {
		d.Notes = map[string]string{}
	}
	if d.DismissedNews == nil {
		d.DismissedNews = map[string]bool{}
	}
	if d.Quotes == nil {
		d.Quotes = map[string]models.Quote{}
	}
	d.Achievements = processors.UnlockAchievements(d.Achievements, nil, time.Time{})
}

// clone deep-copies an aggregate so callers never share maps or slices with
// the cached copy.
func clone(d *models.DashboardData) *models.DashboardData {
	data, err := json.Marshal(d)
	if err != nil {
		logger.L.Error("Failed to copy dashboard", "error", err)
		return d
	}
	var out models.DashboardData
	if err := json.Unmarshal(data, &out); err != nil {
		logger.L.Error("Failed to copy dashboard", "error", err)
		return d
	}
	normalize(&out)
	return &out
}

// lockUser takes the user's lock and returns its release. The entry is
// dropped when its last holder releases it, so idle users hold no memory.
func (s *dashboardServiceImpl) lockUser(userID string) (unlock func()) {
	s.locksMu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.locksMu.Unlock()
	}
}

// load returns the live aggregate. Callers must hold the user's lock and
// must not modify the result.
func (s *dashboardServiceImpl) load(ctx context.Context, userID string) (*models.DashboardData, error) {
	cacheKey := fmt.Sprintf(ckDashboard, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.DashboardData), nil
	}

	log := logger.FromContext(ctx)
	d := NewDashboard()
	blob, err := s.repo.Load(ctx, StorageKey(userID))
	switch {
	case errors.Is(err, model.ErrDashboardNotFound):
		log.Info("No saved dashboard, starting empty", "userID", userID)
	case err != nil:
		return nil, fmt.Errorf("load dashboard for user %s: %w", userID, err)
	default:
		var saved models.DashboardData
		if err := json.Unmarshal(blob, &saved); err != nil {
			log.Warn("Saved dashboard is corrupt, starting empty", "userID", userID, "error", err)
		} else {
			normalize(&saved)
			d = &saved
		}
	}

	s.reportCache.Set(cacheKey, d, DefaultCacheExpiration)
	return d, nil
}

func (s *dashboardServiceImpl) persist(ctx context.Context, userID string, d *models.DashboardData) error {
	stored := *d
	stored.Quotes = nil
	blob, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	return s.repo.Save(ctx, StorageKey(userID), userID, blob)
}

// mutate applies fn to a copy of the user's aggregate, persists the result
// and makes it current. userEdit advances the revision; market data and AI
// refreshes do not, so they never mark each other stale. When fn returns an
// error nothing is saved; the current aggregate is returned with the error.
func (s *dashboardServiceImpl) mutate(ctx context.Context, userID string, userEdit bool, fn func(d *models.DashboardData) error) (*models.DashboardData, error) {
	defer s.lockUser(userID)()

	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := clone(current)
	if err := fn(next); err != nil {
		return clone(current), err
	}
	if userEdit {
		next.Revision = current.Revision + 1
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.persist(ctx, userID, next); err != nil {
		return nil, err
	}
	s.reportCache.Set(fmt.Sprintf(ckDashboard, userID), next, DefaultCacheExpiration)
	return clone(next), nil
}

func (s *dashboardServiceImpl) Get(ctx context.Context, userID string) (*models.DashboardData, error) {
	defer s.lockUser(userID)()

	d, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return clone(d), nil
}

// InvalidateUserCache drops the in-memory aggregate, so the next read reloads
// the persisted one.
func (s *dashboardServiceImpl) InvalidateUserCache(userID string) {
	defer s.lockUser(userID)()
	s.reportCache.Delete(fmt.Sprintf(ckDashboard, userID))
	logger.L.Info("Invalidated dashboard cache", "userID", userID)
}

// knownQuotes is the quote snapshot for recomputation: fetched quotes first,
// then the last price each holding was valued at.
func knownQuotes(d *models.DashboardData) map[string]models.Quote {
	quotes := make(map[string]models.Quote, len(d.Quotes)+len(d.Holdings))
	for _, h := range d.Holdings {
		if h.CurrentPrice > 0 {
			quotes[h.Ticker] = models.Quote{Ticker: h.Ticker, CurrentPrice: h.CurrentPrice}
		}
	}
	for t, q := range d.Quotes {
		quotes[t] = q
	}
	return quotes
}

// recompute derives holdings, net worth and allocation from the ledger.
func (s *dashboardServiceImpl) recompute(d *models.DashboardData) {
	d.Holdings = processors.RecomputeHoldings(d.Transactions, knownQuotes(d), s.gateway.Fallback())
	d.NetWorth = processors.NetWorth(d.Holdings)
	d.Allocation = processors.ComputeAllocation(d.Holdings)
}

// unlock evaluates actions and logs any achievements they unlock.
func (s *dashboardServiceImpl) unlock(ctx context.Context, d *models.DashboardData, actions ...processors.Action) {
	var ids []string
	d.Achievements, ids = processors.ApplyActions(d.Achievements, s.now().UTC(), actions...)
	if len(ids) > 0 {
		logger.FromContext(ctx).Info("Achievements unlocked", "ids", ids)
	}
}

func (s *dashboardServiceImpl) netWorthChanged(d *models.DashboardData) processors.Action {
	return processors.NetWorthChanged{NetWorth: d.NetWorth, Target: d.Goal.Target}
}

// mergeQuotes stores fetched quotes, flagging those whose price moved.
func mergeQuotes(d *models.DashboardData, quotes map[string]models.Quote) {
	for ticker, q := range quotes {
		prev, ok := d.Quotes[ticker]
		q.IsUpdating = ok && prev.CurrentPrice != q.CurrentPrice
		d.Quotes[ticker] = q
	}
}

func (s *dashboardServiceImpl) AddTransaction(ctx context.Context, userID string, input models.TransactionInput) (*models.DashboardData, error) {
	in, err := validation.ValidateTransactionInput(input, s.now())
	if err != nil {
		return nil, err
	}

	snapshot, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Type == models.TransactionSell {
		if err := validation.ValidateSell(in.Ticker, in.Shares, processors.SharesOwned(snapshot.Transactions, in.Ticker)); err != nil {
			return nil, err
		}
	}
	quotes := s.gateway.Quotes(ctx, appendUnique(snapshot.HeldTickers(), in.Ticker))

	return s.mutate(ctx, userID, true, func(d *models.DashboardData) error {
		// The ledger may have changed since the snapshot.
		if in.Type == models.TransactionSell {
			if err := validation.ValidateSell(in.Ticker, in.Shares, processors.SharesOwned(d.Transactions, in.Ticker)); err != nil {
				return err
			}
		}
		d.Transactions = append(d.Transactions, models.Transaction{
			ID:          uuid.NewString(),
			Date:        in.Date,
			Type:        in.Type,
			Ticker:      in.Ticker,
			CompanyName: in.CompanyName,
			Sector:      in.Sector,
			Shares:      in.Shares,
			Price:       in.Price,
			TotalValue:  in.Shares * in.Price,
		})
		mergeQuotes(d, quotes)
		s.recompute(d)
		s.unlock(ctx, d, processors.HoldingAdded{HoldingsCount: len(d.Holdings)}, s.netWorthChanged(d))
		logger.FromContext(ctx).Info("Transaction added", "userID", userID, "ticker", in.Ticker, "type", in.Type, "shares", in.Shares)
		return nil
	})
}

func (s *dashboardServiceImpl) SyncBrokerage(ctx context.Context, userID string) (*models.DashboardData, error) {
	snapshot, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	tickers := snapshot.HeldTickers()
	for _, t := range s.brokerage.Tickers() {
		tickers = appendUnique(tickers, t)
	}
	quotes := s.gateway.Quotes(ctx, tickers)

	return s.mutate(ctx, userID, true, func(d *models.DashboardData) error {
		txs, status, err := s.brokerage.Sync(d.Transactions, d.Brokerage, s.now().UTC())
		if err != nil {
			return err
		}
		d.Transactions = txs
		d.Brokerage = status
		mergeQuotes(d, quotes)
		s.recompute(d)
		s.unlock(ctx, d,
			processors.BrokerageSynced{},
			processors.HoldingAdded{HoldingsCount: len(d.Holdings)},
			s.netWorthChanged(d))
		return nil
	})
}

// RefreshQuotes fetches quotes for tickers, or for every held and watched
// ticker when tickers is empty. A result fetched while the user edited the
// dashboard is discarded.
func (s *dashboardServiceImpl) RefreshQuotes(ctx context.Context, userID string, tickers []string) (*models.DashboardData, error) {
	snapshot, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		tickers = append(snapshot.HeldTickers(), snapshot.WatchOnlyTickers()...)
	}
	if len(tickers) == 0 {
		return snapshot, nil
	}
	quotes := s.gateway.Quotes(ctx, tickers)

	d, err := s.mutate(ctx, userID, false, func(d *models.DashboardData) error {
		if d.Revision != snapshot.Revision {
			return ErrStaleResult
		}
		mergeQuotes(d, quotes)
		s.recompute(d)
		s.unlock(ctx, d, s.netWorthChanged(d))
		return nil
	})
	if errors.Is(err, ErrStaleResult) {
		logger.FromContext(ctx).Debug("Discarding stale quote refresh", "userID", userID, "revision", snapshot.Revision)
		return d, nil
	}
	return d, err
}

// RefreshInsights regenerates news, commentary, score and alerts.
func (s *dashboardServiceImpl) RefreshInsights(ctx context.Context, userID string) (*models.DashboardData, error) {
	snapshot, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	news := s.collectNews(ctx, snapshot)
	content := s.ai.Generate(ctx, snapshot.Holdings, news, snapshot.Profile.Currency)
	for i := range news {
		if summary, ok := content.NewsSummaries[news[i].ID]; ok && summary != "" {
			news[i].Summary = summary
		}
	}

	d, err := s.mutate(ctx, userID, false, func(d *models.DashboardData) error {
		if d.Revision != snapshot.Revision {
			return ErrStaleResult
		}
		d.News = news
		d.Insights = content.Insights
		score := content.Score
		d.Score = &score
		d.Alerts = content.Alerts
		s.unlock(ctx, d, processors.PortfolioScored{Score: score.Score})
		return nil
	})
	if errors.Is(err, ErrStaleResult) {
		logger.FromContext(ctx).Debug("Discarding stale insights refresh", "userID", userID)
		return d, nil
	}
	return d, err
}

// collectNews gathers news for held tickers, drops dismissed items and keeps
// the newest.
func (s *dashboardServiceImpl) collectNews(ctx context.Context, d *models.DashboardData) []models.NewsItem {
	var (
		mu  sync.Mutex
		all []models.NewsItem
		eg  errgroup.Group
	)
	for _, ticker := range d.HeldTickers() {
		eg.Go(func() error {
			items := s.gateway.News(ctx, ticker)
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	seen := make(map[string]bool, len(all))
	out := make([]models.NewsItem, 0, len(all))
	for _, n := range all {
		if d.DismissedNews[n.ID] || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > maxNewsItems {
		out = out[:maxNewsItems]
	}
	return out
}

// SaveNote stores a note for ticker. An empty note deletes it.
func (s *dashboardServiceImpl) SaveNote(ctx context.Context, userID, ticker, note string) (*models.DashboardData, error) {
	ticker = validation.NormalizeTicker(ticker)
	if err := validation.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	if err := validation.ValidateNote(note, ticker); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, true, func(d *models.DashboardData) error {
		if note == "" {
			delete(d.Notes, ticker)
		} else {
			d.Notes[ticker] = note
		}
		s.unlock(ctx, d, processors.NoteSaved{NotesCount: len(d.Notes)})
		return nil
	})
}

func (s *dashboardServiceImpl) DismissNews(ctx context.Context, userID, newsID string) (*models.DashboardData, error) {
	if err := validation.ValidateStringNotEmpty(newsID, "news id"); err != nil {
		return nil, err
	}
	if err := validation.ValidateStringMaxLength(newsID, validation.DefaultMaxStringLength, "news id"); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, true, func(d *models.DashboardData) error {
		d.DismissedNews[newsID] = true
		kept := d.News[:0]
		for _, n := range d.News {
			if n.ID != newsID {
				kept = append(kept, n)
			}
		}
		d.News = kept
		s.unlock(ctx, d, processors.NewsDismissed{Count: len(d.DismissedNews)})
		return nil
	})
}

func (s *dashboardServiceImpl) SetGoal(ctx context.Context, userID string, goal models.Goal) (*models.DashboardData, error) {
	if err := validation.ValidateGoal(goal); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, true, func(d *models.DashboardData) error {
		d.Goal = goal
		s.unlock(ctx, d, processors.GoalSet{Target: goal.Target, NetWorth: d.NetWorth})
		return nil
	})
}

// UpsertWatchlist replaces the watchlist with the same id, or adds it. An
// empty id creates a new watchlist.
func (s *dashboardServiceImpl) UpsertWatchlist(ctx context.Context, userID string, watchlist models.Watchlist) (*models.DashboardData, error) {
	name := validation.SanitizeText(watchlist.Name)
	tickers, err := validation.ValidateWatchlist(name, watchlist.Tickers)
	if err != nil {
		return nil, err
	}
	if watchlist.ID == "" {
		watchlist.ID = uuid.NewString()
	}
	wl := models.Watchlist{ID: watchlist.ID, Name: name, Tickers: tickers}

	return s.mutate(ctx, userID, true, func(d *models.DashboardData) error {
		replaced := false
		for i := range d.Watchlists {
			if d.Watchlists[i].ID == wl.ID {
				d.Watchlists[i] = wl
				replaced = true
				break
			}
		}
		if !replaced {
			d.Watchlists = append(d.Watchlists, wl)
		}
		s.unlock(ctx, d, processors.WatchlistUpdated{Tickers: d.WatchedTickerCount()})
		return nil
	})
}

func (s *dashboardServiceImpl) AddToWatchlist(ctx context.Context, userID, watchlistID, ticker string) (*models.DashboardData, error) {
	ticker = validation.NormalizeTicker(ticker)
	if err := validation.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	return s.editWatchlist(ctx, userID, watchlistID, func(wl *models.Watchlist) error {
		for _, t := range wl.Tickers {
			if t == ticker {
				return nil
			}
		}
		if len(wl.Tickers) >= validation.MaxWatchlistTickers {
			return fmt.Errorf("%w: a watchlist holds at most %d tickers", validation.ErrValidationFailed, validation.MaxWatchlistTickers)
		}
		wl.Tickers = append(wl.Tickers, ticker)
		return nil
	})
}

func (s *dashboardServiceImpl) RemoveFromWatchlist(ctx context.Context, userID, watchlistID, ticker string) (*models.DashboardData, error) {
	ticker = validation.NormalizeTicker(ticker)
	return s.editWatchlist(ctx, userID, watchlistID, func(wl *models.Watchlist) error {
		kept := wl.Tickers[:0]
		for _, t := range wl.Tickers {
			if t != ticker {
				kept = append(kept, t)
			}
		}
		wl.Tickers = kept
		return nil
	})
}

func (s *dashboardServiceImpl) editWatchlist(ctx context.Context, userID, watchlistID string, edit func(wl *models.Watchlist) error) (*models.DashboardData, error) {
	if watchlistID == "" {
		watchlistID = DefaultWatchlistID
	}
	return s.mutate(ctx, userID, true, func(d *models.DashboardData) error {
		for i := range d.Watchlists {
			if d.Watchlists[i].ID != watchlistID {
				continue
			}
			if err := edit(&d.Watchlists[i]); err != nil {
				return err
			}
			s.unlock(ctx, d, processors.WatchlistUpdated{Tickers: d.WatchedTickerCount()})
			return nil
		}
		return fmt.Errorf("watchlist %s: %w", watchlistID, ErrNotFound)
	})
}

func (s *dashboardServiceImpl) UpdateProfile(ctx context.Context, userID string, profile models.Profile) (*models.DashboardData, error) {
	p, err := validation.ValidateProfile(profile)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, true, func(d *models.DashboardData) error {
		d.Profile = p
		return nil
	})
}

// SimulateSell values the portfolio as if shares of ticker were sold today
// at the current price. Nothing is saved.
func (s *dashboardServiceImpl) SimulateSell(ctx context.Context, userID, ticker string, shares float64) (*models.SellSimulation, error) {
	ticker = validation.NormalizeTicker(ticker)
	if err := validation.ValidateTicker(ticker); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositive(shares, validation.MaxShares, "shares"); err != nil {
		return nil, err
	}

	d, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateSell(ticker, shares, processors.SharesOwned(d.Transactions, ticker)); err != nil {
		return nil, err
	}

	quotes := knownQuotes(d)
	quote, ok := quotes[ticker]
	if !ok {
		quote = s.gateway.Quote(ctx, ticker)
		quotes[ticker] = quote
	}

	var before models.Holding
	for _, h := range d.Holdings {
		if h.Ticker == ticker {
			before = h
		}
	}
	avgCost := 0.0
	if before.Shares > 0 {
		avgCost = before.TotalCost / before.Shares
	}

	txs := append(append([]models.Transaction(nil), d.Transactions...), models.Transaction{
		Date:       s.now().Format(models.DateLayout),
		Type:       models.TransactionSell,
		Ticker:     ticker,
		Shares:     shares,
		Price:      quote.CurrentPrice,
		TotalValue: shares * quote.CurrentPrice,
	})
	holdings := processors.RecomputeHoldings(txs, quotes, s.gateway.Fallback())

	proceeds := shares * quote.CurrentPrice
	return &models.SellSimulation{
		Ticker:         ticker,
		SharesSold:     shares,
		Proceeds:       proceeds,
		RealizedGain:   proceeds - shares*avgCost,
		Holdings:       holdings,
		NetWorth:       processors.NetWorth(holdings),
		NetWorthBefore: d.NetWorth,
		Allocation:     processors.ComputeAllocation(holdings),
	}, nil
}

// Performance builds the portfolio-versus-benchmark series and stores it in
// the dashboard. A ledger edit during the build restarts it.
func (s *dashboardServiceImpl) Performance(ctx context.Context, userID, benchmark string) ([]models.PerformancePoint, error) {
	if benchmark == "" {
		benchmark = s.benchmark
	}
	benchmark = validation.NormalizeTicker(benchmark)
	if err := validation.ValidateTicker(benchmark); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < performanceRetries; attempt++ {
		snapshot, err := s.Get(ctx, userID)
		if err != nil {
			return nil, err
		}

		cacheKey := fmt.Sprintf(ckPerformance, userID, benchmark, snapshot.Revision)
		if cached, found := s.reportCache.Get(cacheKey); found {
			return cached.([]models.PerformancePoint), nil
		}

		points, err := s.performance.BuildHistory(ctx, snapshot.Transactions, benchmark)
		if err != nil {
			return nil, err
		}

		_, err = s.mutate(ctx, userID, false, func(d *models.DashboardData) error {
			if d.Revision != snapshot.Revision {
				return ErrStaleResult
			}
			d.Performance = points
			return nil
		})
		if errors.Is(err, ErrStaleResult) {
			logger.FromContext(ctx).Debug("Ledger changed during performance build, retrying", "userID", userID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		s.reportCache.Set(cacheKey, points, DefaultCacheExpiration)
		return points, nil
	}
	return nil, ErrStaleResult
}

// Dividends projects a year of dividend income from current holdings.
func (s *dashboardServiceImpl) Dividends(ctx context.Context, userID string) (models.DividendProjection, error) {
	d, err := s.Get(ctx, userID)
	if err != nil {
		return models.DividendProjection{}, err
	}
	cacheKey := fmt.Sprintf(ckDividendProjection, userID, d.Revision)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(models.DividendProjection), nil
	}
	projection := s.dividends.Project(d.Holdings, s.gateway.Dividends(ctx, d.HeldTickers()))
	projection.AnnualIncome = math.Round(projection.AnnualIncome*100) / 100
	s.reportCache.Set(cacheKey, projection, DefaultCacheExpiration)
	return projection, nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
