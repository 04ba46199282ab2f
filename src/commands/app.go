package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/username/finboard/src/config"
	"github.com/username/finboard/src/database"
	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/model"
	"github.com/username/finboard/src/processors"
	"github.com/username/finboard/src/security"
	"github.com/username/finboard/src/services"
)

// app holds the wired services shared by the subcommands.
type app struct {
	mode      *services.ModeCoordinator
	gateway   *services.MarketGateway
	dashboard services.DashboardService
	auth      *security.AuthService
}

var initOnce sync.Once

// loadConfig reads the environment and starts the logger once per process.
func loadConfig() *config.AppConfig {
	initOnce.Do(func() {
		config.LoadConfig()
		logger.InitLogger(config.Cfg.LogLevel)
	})
	return config.Cfg
}

// liveProvider picks the configured market data source. Without an Alpha
// Vantage key there is no live source and every value is simulated.
func liveProvider(cfg *config.AppConfig) services.MarketDataProvider {
	switch cfg.MarketDataSource {
	case config.SourceYahoo:
		return services.NewYahooProvider()
	default:
		if cfg.AlphaVantageAPIKey == "" {
			logger.L.Warn("ALPHAVANTAGE_API_KEY not set, serving simulated market data")
			return nil
		}
		return services.NewAlphaVantageProvider(cfg.AlphaVantageAPIKey, nil)
	}
}

func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	logger.L.Info("Initializing database...", "path", cfg.DatabasePath)
	database.InitDB(cfg.DatabasePath)
	if err := database.RunMigrations(database.DB); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	auth, err := security.NewAuthService(cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	mode := services.NewModeCoordinator()
	fallback := services.NewFallbackProvider(nil)
	gateway := services.NewMarketGateway(liveProvider(cfg), fallback, mode, model.NewPriceStore(database.DB), services.GatewayConfig{
		QuoteTTL:      cfg.QuoteCacheTTL,
		HistoryTTL:    cfg.HistoryCacheTTL,
		MetadataTTL:   cfg.MetadataCacheTTL,
		NewsTTL:       cfg.NewsCacheTTL,
		QuoteInterval: cfg.QuoteRequestInterval,
	})

	ai, err := services.NewAIService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, mode, fallback)
	if err != nil {
		return nil, fmt.Errorf("create ai service: %w", err)
	}
	brokerage, err := services.NewBrokerageService(cfg.BrokerageFixturePath, processors.NewTransactionProcessor())
	if err != nil {
		return nil, fmt.Errorf("load brokerage fixture: %w", err)
	}

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	dashboard := services.NewDashboardService(
		model.NewDashboardStore(database.DB),
		gateway,
		ai,
		services.NewPerformanceService(gateway),
		brokerage,
		processors.NewDividendProcessor(),
		cfg.BenchmarkTicker,
		reportCache,
	)

	return &app{mode: mode, gateway: gateway, dashboard: dashboard, auth: auth}, nil
}

func (a *app) close() {
	if database.DB != nil {
		database.DB.Close()
	}
}
