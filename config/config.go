package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	// Provider credentials. An empty key disables that provider.
	TwelveDataAPIKey   string
	AlphaVantageAPIKey string
	NewsAPIKey         string
	FREDAPIKey         string

	LogLevel       string
	RequestTimeout time.Duration

	// Cache TTLs per data class.
	QuoteCacheTTL      time.Duration
	OverviewCacheTTL   time.Duration
	HistoricalCacheTTL time.Duration
	ProfileCacheTTL    time.Duration

	// News ranking knobs.
	MinRelevance     float64
	RelevanceTieBand float64

	// Volume baseline window in trading days.
	AvgVolumeDays int

	// Watchlist and alerting.
	Watchlist        []string
	MinAlertPriority int
	AlertPollEvery   time.Duration

	// Alert delivery (cmd/alertbot).
	TelegramToken  string
	TelegramChatID int64

	// Postgres connection for the alert delivery log.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		TwelveDataAPIKey:   os.Getenv("TWELVE_DATA_API_KEY"),
		AlphaVantageAPIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		NewsAPIKey:         os.Getenv("NEWS_API_KEY"),
		FREDAPIKey:         os.Getenv("FRED_API_KEY"),

		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		RequestTimeout: time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 30)) * time.Second,

		QuoteCacheTTL:      time.Duration(getEnvIntWithDefault("QUOTE_CACHE_TTL_SECONDS", 300)) * time.Second,
		OverviewCacheTTL:   time.Duration(getEnvIntWithDefault("OVERVIEW_CACHE_TTL_SECONDS", 120)) * time.Second,
		HistoricalCacheTTL: time.Duration(getEnvIntWithDefault("HISTORICAL_CACHE_TTL_SECONDS", 900)) * time.Second,
		ProfileCacheTTL:    time.Duration(getEnvIntWithDefault("PROFILE_CACHE_TTL_SECONDS", 3600)) * time.Second,

		MinRelevance:     getEnvFloatWithDefault("NEWS_MIN_RELEVANCE", 0.1),
		RelevanceTieBand: getEnvFloatWithDefault("NEWS_RELEVANCE_TIE_BAND", 0.2),

		AvgVolumeDays: getEnvIntWithDefault("AVG_VOLUME_DAYS", 20),

		Watchlist:        splitSymbols(getEnvWithDefault("WATCHLIST", "AAPL,TSLA,GOOGL,MSFT,NVDA")),
		MinAlertPriority: getEnvIntWithDefault("MIN_ALERT_PRIORITY", 6),
		AlertPollEvery:   time.Duration(getEnvIntWithDefault("ALERT_POLL_MINUTES", 15)) * time.Minute,

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     getEnvWithDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnvWithDefault("DB_NAME", "stocknews"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
	}

	return cfg, nil
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
