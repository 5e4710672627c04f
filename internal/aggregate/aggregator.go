// Package aggregate orchestrates the source adapters: provider fallback
// ordering, read-through caching, news fan-out with deduplication and
// classification. Every provider failure degrades to "data or nothing";
// the aggregator never retries a provider within a request.
package aggregate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alchemistbuilder/stockdrivernews/config"
	"github.com/alchemistbuilder/stockdrivernews/internal/cache"
	"github.com/alchemistbuilder/stockdrivernews/internal/classify"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider/alphavantage"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider/fred"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider/newsapi"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider/synthetic"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider/twelvedata"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider/yahoo"
	"github.com/alchemistbuilder/stockdrivernews/models"
)

// Cache key operations.
const (
	opQuote      = "stock-data"
	opNews       = "stock-news"
	opOverview   = "market-overview"
	opHistorical = "historical"
	opProfile    = "profile"
)

// defaultSector is assumed when no profile reveals the real one.
const defaultSector = "Technology"

// Providers bundles the source adapters the Aggregator orchestrates.
// Slices are consulted in order: position is fallback priority, and for
// the news fan-out it decides which provider's copy of a duplicate
// article survives deduplication.
type Providers struct {
	Quotes          []models.QuoteProvider
	News            []models.NewsProvider
	GeneralNews     models.GeneralNewsProvider
	Historical      models.HistoricalProvider
	HistoricalDaily models.HistoricalProvider
	Profiles        []models.ProfileProvider
	Market          models.MarketDataProvider
	Economic        models.EconomicDataProvider
	Search          models.SearchProvider
	Health          []models.HealthChecker
}

// DefaultProviders wires the full adapter set from configuration.
func DefaultProviders(cfg *config.Config) Providers {
	twelve := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         cfg.TwelveDataAPIKey,
		RequestTimeout: cfg.RequestTimeout,
	})
	alpha := alphavantage.NewClient(alphavantage.ClientOptions{
		APIKey:         cfg.AlphaVantageAPIKey,
		RequestTimeout: cfg.RequestTimeout,
	})
	news := newsapi.NewClient(newsapi.ClientOptions{
		APIKey:         cfg.NewsAPIKey,
		RequestTimeout: cfg.RequestTimeout,
		CompanyName:    classify.CompanyName,
	})
	yf := yahoo.NewClient(yahoo.ClientOptions{
		RequestTimeout: cfg.RequestTimeout,
	})
	econ := fred.NewClient(fred.ClientOptions{
		APIKey:         cfg.FREDAPIKey,
		RequestTimeout: cfg.RequestTimeout,
	})
	gen := synthetic.NewGenerator()

	return Providers{
		Quotes:          []models.QuoteProvider{twelve, gen},
		News:            []models.NewsProvider{news, alpha},
		GeneralNews:     news,
		Historical:      yf,
		HistoricalDaily: alpha,
		Profiles:        []models.ProfileProvider{alpha, yf},
		Market:          yf,
		Economic:        econ,
		Search:          yf,
		Health:          []models.HealthChecker{twelve, alpha, news, yf, econ, gen},
	}
}

// Aggregator reconciles data from the providers into a single coherent
// view per symbol. Safe for concurrent use; the cache is the only shared
// state.
type Aggregator struct {
	cfg        *config.Config
	providers  Providers
	cache      *cache.Cache
	classifier *classify.Classifier
	logger     zerolog.Logger
}

// New creates an Aggregator over the given providers.
func New(cfg *config.Config, providers Providers) *Aggregator {
	return &Aggregator{
		cfg:        cfg,
		providers:  providers,
		cache:      cache.New(cfg.QuoteCacheTTL),
		classifier: classify.New(),
		logger:     log.With().Str("component", "aggregator").Logger(),
	}
}

// GetStockData returns the current quote for a symbol, trying providers
// in priority order and stopping at the first success. The last provider
// in the chain is the synthetic generator, which never fails, so a quote
// is always produced; callers detect degraded mode via Quote.Source.
func (a *Aggregator) GetStockData(ctx context.Context, symbol string) (*models.Quote, error) {
	key := cache.Key{Op: opQuote, Symbol: symbol}
	if quote, ok := cache.Lookup[*models.Quote](a.cache, key); ok {
		return quote, nil
	}

	var lastErr error
	for _, p := range a.providers.Quotes {
		quote, err := p.GetQuote(ctx, symbol)
		if err != nil {
			a.logger.Warn().Err(err).Str("provider", p.Name()).Str("symbol", symbol).
				Msg("quote provider failed, falling through")
			lastErr = err
			continue
		}
		a.cache.SetTTL(key, quote, a.cfg.QuoteCacheTTL)
		return quote, nil
	}
	return nil, fmt.Errorf("all quote providers failed for %s: %w", symbol, lastErr)
}

// GetStockNews fans out to every news provider concurrently, joins the
// results in provider order, deduplicates, classifies against the
// symbol's sector, drops low-relevance articles and sorts by relevance
// with a recency tie-break.
func (a *Aggregator) GetStockNews(ctx context.Context, symbol string, opts models.NewsOptions) ([]models.NewsArticle, error) {
	key := cache.Key{Op: opNews, Symbol: symbol, Options: newsOptionsKey(opts)}
	if articles, ok := cache.Lookup[[]models.NewsArticle](a.cache, key); ok {
		return articles, nil
	}

	// Indexed results keep the join deterministic regardless of which
	// goroutine finishes first.
	results := make([][]models.NewsArticle, len(a.providers.News))
	var wg sync.WaitGroup
	for i, p := range a.providers.News {
		wg.Add(1)
		go func(i int, p models.NewsProvider) {
			defer wg.Done()
			articles, err := p.GetNews(ctx, symbol, opts)
			if err != nil {
				a.logger.Warn().Err(err).Str("provider", p.Name()).Str("symbol", symbol).
					Msg("news provider failed, continuing without it")
				return
			}
			results[i] = articles
		}(i, p)
	}
	wg.Wait()

	var collected []models.NewsArticle
	for _, r := range results {
		collected = append(collected, r...)
	}

	unique := Deduplicate(collected)
	classified := a.classifier.ClassifyAll(unique, symbol, a.sectorFor(ctx, symbol))

	relevant := make([]models.NewsArticle, 0, len(classified))
	for _, article := range classified {
		if article.Classification.Relevance > a.cfg.MinRelevance {
			relevant = append(relevant, article)
		}
	}
	a.sortByRelevance(relevant)

	if opts.Limit > 0 && len(relevant) > opts.Limit {
		relevant = relevant[:opts.Limit]
	}

	a.cache.SetTTL(key, relevant, a.cfg.QuoteCacheTTL)
	return relevant, nil
}

// sortByRelevance orders by relevance descending; scores within the
// configured tie band of each other fall back to recency descending.
func (a *Aggregator) sortByRelevance(articles []models.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		ri := articles[i].Classification.Relevance
		rj := articles[j].Classification.Relevance
		if math.Abs(ri-rj) <= a.cfg.RelevanceTieBand {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		}
		return ri > rj
	})
}

// sectorFor resolves a symbol's sector from its quote profile.
func (a *Aggregator) sectorFor(ctx context.Context, symbol string) string {
	quote, err := a.GetStockData(ctx, symbol)
	if err == nil && quote.Profile != nil && quote.Profile.Sector != "" {
		return quote.Profile.Sector
	}
	return defaultSector
}

// GetMarketOverview fans out to the index, sector, general-news and
// economic providers concurrently. Each leg independently degrades to an
// empty structure on failure.
func (a *Aggregator) GetMarketOverview(ctx context.Context) (*models.MarketOverview, error) {
	key := cache.Key{Op: opOverview}
	if overview, ok := cache.Lookup[*models.MarketOverview](a.cache, key); ok {
		return overview, nil
	}

	overview := &models.MarketOverview{
		Indices:            map[string]models.IndexQuote{},
		Sectors:            map[string]models.IndexQuote{},
		TopNews:            []models.NewsArticle{},
		EconomicIndicators: map[string]models.EconomicObservation{},
		LastUpdated:        time.Now(),
	}

	// An unconfigured provider simply never participates.
	var wg sync.WaitGroup
	if a.providers.Market != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			indices, err := a.providers.Market.GetMarketData(ctx)
			if err != nil {
				a.logger.Warn().Err(err).Msg("market index fetch failed")
				return
			}
			overview.Indices = indices
		}()
		go func() {
			defer wg.Done()
			sectors, err := a.providers.Market.GetSectorData(ctx)
			if err != nil {
				a.logger.Warn().Err(err).Msg("sector performance fetch failed")
				return
			}
			overview.Sectors = sectors
		}()
	}
	if a.providers.GeneralNews != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			news, err := a.providers.GeneralNews.GetGeneralNews(ctx, 10)
			if err != nil {
				a.logger.Warn().Err(err).Msg("general news fetch failed")
				return
			}
			overview.TopNews = news
		}()
	}
	if a.providers.Economic != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			indicators, err := a.providers.Economic.GetEconomicIndicators(ctx)
			if err != nil {
				a.logger.Warn().Err(err).Msg("economic indicator fetch failed")
				return
			}
			overview.EconomicIndicators = indicators
		}()
	}
	wg.Wait()

	a.cache.SetTTL(key, overview, a.cfg.OverviewCacheTTL)
	return overview, nil
}

// GetHistoricalData returns an OHLCV series, most recent bar first. The
// secondary provider only serves daily bars, so the fallback applies to
// daily requests alone.
func (a *Aggregator) GetHistoricalData(ctx context.Context, symbol, period, interval string) (*models.HistoricalData, error) {
	key := cache.Key{Op: opHistorical, Symbol: symbol, Options: period + ":" + interval}
	if data, ok := cache.Lookup[*models.HistoricalData](a.cache, key); ok {
		return data, nil
	}

	if a.providers.Historical == nil {
		return nil, fmt.Errorf("no historical provider configured")
	}

	data, err := a.providers.Historical.GetHistorical(ctx, symbol, period, interval)
	if err != nil && interval == "1d" && a.providers.HistoricalDaily != nil {
		a.logger.Warn().Err(err).Str("symbol", symbol).
			Msg("primary historical provider failed, trying daily fallback")
		data, err = a.providers.HistoricalDaily.GetHistorical(ctx, symbol, period, interval)
	}
	if err != nil {
		return nil, fmt.Errorf("historical data unavailable for %s: %w", symbol, err)
	}

	a.cache.SetTTL(key, data, a.cfg.HistoricalCacheTTL)
	return data, nil
}

// GetCompanyProfile returns descriptive company data, preferring the
// richer provider. Profiles change slowly, so the cache TTL is long.
func (a *Aggregator) GetCompanyProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	key := cache.Key{Op: opProfile, Symbol: symbol}
	if profile, ok := cache.Lookup[*models.CompanyProfile](a.cache, key); ok {
		return profile, nil
	}

	var lastErr error
	for _, p := range a.providers.Profiles {
		profile, err := p.GetProfile(ctx, symbol)
		if err != nil {
			a.logger.Warn().Err(err).Str("provider", p.Name()).Str("symbol", symbol).
				Msg("profile provider failed, falling through")
			lastErr = err
			continue
		}
		a.cache.SetTTL(key, profile, a.cfg.ProfileCacheTTL)
		return profile, nil
	}
	return nil, fmt.Errorf("no profile available for %s: %w", symbol, lastErr)
}

// SearchStocks finds symbols matching a free-text query, keeping only
// domestic equity listings.
func (a *Aggregator) SearchStocks(ctx context.Context, query string) ([]models.SearchResult, error) {
	if a.providers.Search == nil {
		return nil, fmt.Errorf("no search provider configured")
	}
	results, err := a.providers.Search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("symbol search failed: %w", err)
	}
	return FilterEquities(results, 10), nil
}

// FilterEquities keeps equity-type results that trade on a named
// exchange and have no "." in the symbol (excludes foreign and
// cross-listed tickers), capped to max results.
func FilterEquities(results []models.SearchResult, max int) []models.SearchResult {
	filtered := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		if r.QuoteType != "EQUITY" || r.Exchange == "" {
			continue
		}
		if containsDot(r.Symbol) {
			continue
		}
		filtered = append(filtered, r)
		if len(filtered) == max {
			break
		}
	}
	return filtered
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}

// AverageVolume derives a symbol's average daily volume from recent
// history: the mean of the most recent configured number of daily bars.
// Returns 0 when no usable history exists.
func (a *Aggregator) AverageVolume(ctx context.Context, symbol string) int64 {
	data, err := a.GetHistoricalData(ctx, symbol, "3mo", "1d")
	if err != nil || len(data.Bars) == 0 {
		return 0
	}

	days := a.cfg.AvgVolumeDays
	if days <= 0 || days > len(data.Bars) {
		days = len(data.Bars)
	}

	var total int64
	var counted int64
	for _, bar := range data.Bars[:days] {
		if bar.Volume > 0 {
			total += bar.Volume
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return total / counted
}

// ComprehensiveReport joins quote, news, historical, profile and the
// daily movement summary for one symbol. Every leg besides the quote is
// optional: failures leave the corresponding section empty.
func (a *Aggregator) ComprehensiveReport(ctx context.Context, symbol string) (*models.ComprehensiveReport, error) {
	quote, err := a.GetStockData(ctx, symbol)
	if err != nil {
		return nil, err
	}

	report := &models.ComprehensiveReport{
		Symbol:    symbol,
		Quote:     quote,
		News:      []models.NewsArticle{},
		Generated: time.Now(),
	}

	if news, err := a.GetStockNews(ctx, symbol, models.NewsOptions{Limit: 10}); err == nil {
		report.News = news
	}
	if hist, err := a.GetHistoricalData(ctx, symbol, "1mo", "1d"); err == nil {
		report.Historical = hist
	}
	if profile, err := a.GetCompanyProfile(ctx, symbol); err == nil {
		report.Profile = profile
	}
	report.Summary = a.classifier.DailySummary(symbol, quote, report.News)

	return report, nil
}

// CheckAllServicesHealth probes every configured provider concurrently
// and reports per-provider status plus the current cache size.
func (a *Aggregator) CheckAllServicesHealth(ctx context.Context) *models.HealthReport {
	statuses := make([]models.ServiceHealth, len(a.providers.Health))
	var wg sync.WaitGroup
	for i, h := range a.providers.Health {
		wg.Add(1)
		go func(i int, h models.HealthChecker) {
			defer wg.Done()
			statuses[i] = h.CheckHealth(ctx)
		}(i, h)
	}
	wg.Wait()

	return &models.HealthReport{
		Services:  statuses,
		CacheSize: a.cache.Size(),
		Timestamp: time.Now(),
	}
}

// ClearCache drops every cached entry.
func (a *Aggregator) ClearCache() {
	a.cache.Clear()
}

// CacheSize reports the number of live cache entries.
func (a *Aggregator) CacheSize() int {
	return a.cache.Size()
}

func newsOptionsKey(opts models.NewsOptions) string {
	from, to := "", ""
	if !opts.From.IsZero() {
		from = opts.From.Format("2006-01-02")
	}
	if !opts.To.IsZero() {
		to = opts.To.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%d", from, to, opts.Limit)
}
