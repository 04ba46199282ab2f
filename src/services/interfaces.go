package services

import (
	"context"

	"github.com/username/finboard/src/models"
)

// DashboardRepository stores one serialized dashboard per storage key.
type DashboardRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key, userID string, blob []byte) error
}

// DashboardService owns each user's DashboardData. Every mutation reads the
// current aggregate, computes a new one, persists it and then replaces the
// in-memory copy, serialized per user.
type DashboardService interface {
	Get(ctx context.Context, userID string) (*models.DashboardData, error)
	AddTransaction(ctx context.Context, userID string, input models.TransactionInput) (*models.DashboardData, error)
	SyncBrokerage(ctx context.Context, userID string) (*models.DashboardData, error)
	RefreshQuotes(ctx context.Context, userID string, tickers []string) (*models.DashboardData, error)
	RefreshInsights(ctx context.Context, userID string) (*models.DashboardData, error)
	SaveNote(ctx context.Context, userID, ticker, note string) (*models.DashboardData, error)
	DismissNews(ctx context.Context, userID, newsID string) (*models.DashboardData, error)
	SetGoal(ctx context.Context, userID string, goal models.Goal) (*models.DashboardData, error)
	UpsertWatchlist(ctx context.Context, userID string, watchlist models.Watchlist) (*models.DashboardData, error)
	AddToWatchlist(ctx context.Context, userID, watchlistID, ticker string) (*models.DashboardData, error)
	RemoveFromWatchlist(ctx context.Context, userID, watchlistID, ticker string) (*models.DashboardData, error)
	UpdateProfile(ctx context.Context, userID string, profile models.Profile) (*models.DashboardData, error)
	SimulateSell(ctx context.Context, userID, ticker string, shares float64) (*models.SellSimulation, error)
	Performance(ctx context.Context, userID, benchmark string) ([]models.PerformancePoint, error)
	Dividends(ctx context.Context, userID string) (models.DividendProjection, error)
	InvalidateUserCache(userID string)
}
