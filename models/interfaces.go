package models

import "context"

// QuoteProvider serves live (or synthetic) quotes.
type QuoteProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// NewsProvider serves symbol-scoped news.
type NewsProvider interface {
	Name() string
	GetNews(ctx context.Context, symbol string, opts NewsOptions) ([]NewsArticle, error)
}

// GeneralNewsProvider serves market-wide headlines.
type GeneralNewsProvider interface {
	GetGeneralNews(ctx context.Context, limit int) ([]NewsArticle, error)
}

// HistoricalProvider serves OHLCV series.
type HistoricalProvider interface {
	Name() string
	GetHistorical(ctx context.Context, symbol, period, interval string) (*HistoricalData, error)
}

// ProfileProvider serves company profiles.
type ProfileProvider interface {
	Name() string
	GetProfile(ctx context.Context, symbol string) (*CompanyProfile, error)
}

// MarketDataProvider serves index and sector snapshots.
type MarketDataProvider interface {
	GetMarketData(ctx context.Context) (map[string]IndexQuote, error)
	GetSectorData(ctx context.Context) (map[string]IndexQuote, error)
}

// EconomicDataProvider serves macro economic series.
type EconomicDataProvider interface {
	GetEconomicIndicators(ctx context.Context) (map[string]EconomicObservation, error)
}

// SearchProvider finds symbols by free-text query.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// HealthChecker probes a provider with a lightweight request.
type HealthChecker interface {
	CheckHealth(ctx context.Context) ServiceHealth
}
