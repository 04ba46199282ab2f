package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Identity settings
	JWTSecret         string
	AccessTokenExpiry time.Duration
	AllowedOrigins    []string
	RateLimitBurst    int

	// Market data settings
	MarketDataSource     string // "alphavantage" or "yahoo"
	AlphaVantageAPIKey   string
	BenchmarkTicker      string
	QuoteCacheTTL        time.Duration
	HistoryCacheTTL      time.Duration
	MetadataCacheTTL     time.Duration
	NewsCacheTTL         time.Duration
	QuoteRequestInterval time.Duration

	// Generative AI settings
	GeminiAPIKey string
	GeminiModel  string

	// Refresh schedules
	HeldRefreshInterval     time.Duration
	WatchRefreshInterval    time.Duration
	InsightsRefreshInterval time.Duration

	// Optional override of the embedded brokerage fixture
	BrokerageFixturePath string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

const (
	SourceAlphaVantage = "alphavantage"
	SourceYahoo        = "yahoo"
)

// LoadConfig loads configuration from environment variables or a .env file.
func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	Cfg = FromEnv()

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, MarketData=%s, AI=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.MarketDataSource, Cfg.GeminiAPIKey != "")
}

// FromEnv builds an AppConfig from the current process environment without
// touching .env files. JWT_SECRET is required.
func FromEnv() *AppConfig {
	source := strings.ToLower(getEnv("MARKET_DATA_SOURCE", SourceAlphaVantage))
	if source != SourceAlphaVantage && source != SourceYahoo {
		log.Printf("WARNING: Unknown MARKET_DATA_SOURCE '%s', using %s", source, SourceAlphaVantage)
		source = SourceAlphaVantage
	}

	// Alpha Vantage free tier allows 5 requests per minute.
	defaultInterval := 12 * time.Second
	if source == SourceYahoo {
		defaultInterval = 250 * time.Millisecond
	}

	return &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./finboard.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret:         getRequiredEnv("JWT_SECRET"),
		AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute),
		AllowedOrigins:    getList("ALLOWED_ORIGINS", "http://localhost:3000"),
		RateLimitBurst:    getEnvAsInt("HTTP_RATE_LIMIT_BURST", 30),

		MarketDataSource:     source,
		AlphaVantageAPIKey:   getEnv("ALPHAVANTAGE_API_KEY", ""),
		BenchmarkTicker:      strings.ToUpper(getEnv("BENCHMARK_TICKER", "SPY")),
		QuoteCacheTTL:        getEnvAsDuration("QUOTE_CACHE_TTL", 5*time.Minute),
		HistoryCacheTTL:      getEnvAsDuration("HISTORY_CACHE_TTL", time.Hour),
		MetadataCacheTTL:     getEnvAsDuration("METADATA_CACHE_TTL", 24*time.Hour),
		NewsCacheTTL:         getEnvAsDuration("NEWS_CACHE_TTL", 30*time.Minute),
		QuoteRequestInterval: getEnvAsDuration("QUOTE_REQUEST_INTERVAL", defaultInterval),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		HeldRefreshInterval:     getEnvAsDuration("HELD_REFRESH_INTERVAL", 60*time.Second),
		WatchRefreshInterval:    getEnvAsDuration("WATCH_REFRESH_INTERVAL", 5*time.Minute),
		InsightsRefreshInterval: getEnvAsDuration("INSIGHTS_REFRESH_INTERVAL", 6*time.Hour),

		BrokerageFixturePath: getEnv("BROKERAGE_FIXTURE_PATH", ""),
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getRequiredEnv retrieves an environment variable or terminates the application if not set.
func getRequiredEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set or is empty. Application cannot start securely.", key)
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getList parses a comma-separated variable, dropping empty entries.
func getList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
