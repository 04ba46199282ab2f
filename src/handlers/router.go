package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Portfolio   *PortfolioHandler
	Transaction *TransactionHandler
	Dividend    *DividendHandler
	User        *UserHandler
	Market      *MarketHandler
	Stream      *StreamHandler
}

// RouterConfig holds the cross-cutting pieces of the router. A nil Limiter
// disables rate limiting.
type RouterConfig struct {
	Auth           TokenValidator
	AllowedOrigins []string
	Limiter        *rate.Limiter
}

func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	if cfg.Limiter != nil {
		r.Use(RateLimitMiddleware(cfg.Limiter))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, r, http.StatusOK, map[string]string{"message": "finboard backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/mode", h.Market.HandleGetMode)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Auth))

			r.Get("/dashboard", h.Portfolio.HandleGetDashboard)
			r.Get("/dashboard/stream", h.Stream.HandleStream)
			r.Post("/quotes/refresh", h.Portfolio.HandleRefreshQuotes)
			r.Post("/insights/refresh", h.Portfolio.HandleRefreshInsights)
			r.Post("/brokerage/sync", h.Portfolio.HandleSyncBrokerage)
			r.Get("/performance", h.Portfolio.HandleGetPerformance)

			r.Get("/transactions", h.Transaction.HandleGetTransactions)
			r.Post("/transactions", h.Transaction.HandleAddTransaction)
			r.Post("/transactions/simulate-sell", h.Transaction.HandleSimulateSell)

			r.Get("/dividends", h.Dividend.HandleGetDividendProjection)

			r.Put("/profile", h.User.HandleUpdateProfile)
			r.Put("/goal", h.User.HandleSetGoal)
			r.Put("/notes/{ticker}", h.User.HandleSaveNote)
			r.Post("/news/{newsID}/dismiss", h.User.HandleDismissNews)
			r.Post("/watchlists", h.User.HandleCreateWatchlist)
			r.Put("/watchlists/{watchlistID}", h.User.HandleUpsertWatchlist)
			r.Post("/watchlists/{watchlistID}/tickers", h.User.HandleAddToWatchlist)
			r.Delete("/watchlists/{watchlistID}/tickers/{ticker}", h.User.HandleRemoveFromWatchlist)

			r.Get("/market/{ticker}", h.Market.HandleGetOverview)
			r.Get("/chart/{ticker}", h.Market.HandleGetChart)
			r.Post("/mode/live", h.Market.HandleGoLive)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		sendJSONError(w, "Not found", http.StatusNotFound)
	})

	return r
}
