package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemistbuilder/stockdrivernews/config"
	"github.com/alchemistbuilder/stockdrivernews/models"
)

func testConfig() *config.Config {
	return &config.Config{
		QuoteCacheTTL:      time.Minute,
		OverviewCacheTTL:   time.Minute,
		HistoricalCacheTTL: time.Minute,
		ProfileCacheTTL:    time.Minute,
		MinRelevance:       0.1,
		RelevanceTieBand:   0.2,
		AvgVolumeDays:      20,
	}
}

type fakeQuoteProvider struct {
	name  string
	quote *models.Quote
	err   error
	calls int
}

func (f *fakeQuoteProvider) Name() string { return f.name }

func (f *fakeQuoteProvider) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Symbol = symbol
	return &q, nil
}

type fakeNewsProvider struct {
	name     string
	articles []models.NewsArticle
	err      error
}

func (f *fakeNewsProvider) Name() string { return f.name }

func (f *fakeNewsProvider) GetNews(context.Context, string, models.NewsOptions) ([]models.NewsArticle, error) {
	return f.articles, f.err
}

type fakeHistoricalProvider struct {
	name string
	data *models.HistoricalData
	err  error
}

func (f *fakeHistoricalProvider) Name() string { return f.name }

func (f *fakeHistoricalProvider) GetHistorical(context.Context, string, string, string) (*models.HistoricalData, error) {
	return f.data, f.err
}

func aaplQuote(sector string) *models.Quote {
	return &models.Quote{
		Symbol:        "AAPL",
		Price:         196.45,
		ChangePercent: -1.4,
		Source:        "fake",
		Profile:       &models.CompanyProfile{Sector: sector},
	}
}

func TestDeduplicate(t *testing.T) {
	byURL := []models.NewsArticle{
		{Title: "Apple earnings beat", URL: "https://a.example/1", APISource: "first"},
		{Title: "Apple earnings beat estimates", URL: "https://a.example/1", APISource: "second"},
		{Title: "Other story", URL: "https://a.example/2"},
	}
	unique := Deduplicate(byURL)
	require.Len(t, unique, 2)
	assert.Equal(t, "first", unique[0].APISource, "first occurrence wins")

	byTitle := []models.NewsArticle{
		{Title: "Apple Hits Record High!"},
		{Title: "apple hits record high"},
		{Title: "Apple hits... record; HIGH"},
	}
	assert.Len(t, Deduplicate(byTitle), 1, "normalized titles collapse")

	// Idempotence: a second pass changes nothing.
	once := Deduplicate(byURL)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, len(once), len(byURL))
}

func TestDeduplicateLongTitles(t *testing.T) {
	long := "Federal Regulators Approve the Long Awaited Merger Between the Two Largest Carriers"
	suffixed := long + " After Months of Review"
	unique := Deduplicate([]models.NewsArticle{{Title: long}, {Title: suffixed}})
	assert.Len(t, unique, 1, "titles identical in their first 50 normalized characters collapse")
}

func TestGetStockDataFallsThrough(t *testing.T) {
	primary := &fakeQuoteProvider{name: "primary", err: errors.New("unreachable")}
	fallback := &fakeQuoteProvider{name: "fallback", quote: aaplQuote("Technology")}

	agg := New(testConfig(), Providers{
		Quotes: []models.QuoteProvider{primary, fallback},
	})

	quote, err := agg.GetStockData(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "fake", quote.Source)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGetStockDataCaches(t *testing.T) {
	p := &fakeQuoteProvider{name: "primary", quote: aaplQuote("Technology")}
	agg := New(testConfig(), Providers{Quotes: []models.QuoteProvider{p}})

	_, err := agg.GetStockData(context.Background(), "AAPL")
	require.NoError(t, err)
	_, err = agg.GetStockData(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls, "second call served from cache")
	assert.Equal(t, 1, agg.CacheSize())
}

func TestGetStockDataAllFail(t *testing.T) {
	agg := New(testConfig(), Providers{
		Quotes: []models.QuoteProvider{&fakeQuoteProvider{name: "only", err: errors.New("down")}},
	})
	_, err := agg.GetStockData(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestGetStockNewsPipeline(t *testing.T) {
	now := time.Now()
	first := &fakeNewsProvider{name: "first", articles: []models.NewsArticle{
		{Title: "AAPL earnings beat estimates", URL: "https://a.example/earnings", APISource: "first", PublishedAt: now.Add(-2 * time.Hour)},
		{Title: "Local bakery wins award", URL: "https://a.example/bakery", APISource: "first", PublishedAt: now.Add(-90 * time.Hour)},
	}}
	second := &fakeNewsProvider{name: "second", articles: []models.NewsArticle{
		// Same URL as the first provider's lead story.
		{Title: "Apple earnings top estimates", URL: "https://a.example/earnings", APISource: "second", PublishedAt: now.Add(-2 * time.Hour)},
		{Title: "Apple plans new product launch", URL: "https://a.example/launch", APISource: "second", PublishedAt: now.Add(-3 * time.Hour)},
	}}

	agg := New(testConfig(), Providers{
		Quotes: []models.QuoteProvider{&fakeQuoteProvider{name: "q", quote: aaplQuote("Technology")}},
		News:   []models.NewsProvider{first, second},
	})

	articles, err := agg.GetStockNews(context.Background(), "AAPL", models.NewsOptions{})
	require.NoError(t, err)

	// The bakery story is unrelated and below the relevance floor; the
	// duplicate collapses to the first provider's copy.
	require.Len(t, articles, 2)
	for _, a := range articles {
		require.NotNil(t, a.Classification)
		assert.Greater(t, a.Classification.Relevance, 0.1)
		assert.NotEqual(t, "https://a.example/bakery", a.URL)
	}
	for _, a := range articles {
		if a.URL == "https://a.example/earnings" {
			assert.Equal(t, "first", a.APISource, "fan-out order decides the surviving duplicate")
		}
	}
}

func TestGetStockNewsToleratesProviderFailure(t *testing.T) {
	now := time.Now()
	broken := &fakeNewsProvider{name: "broken", err: errors.New("rate limited")}
	working := &fakeNewsProvider{name: "working", articles: []models.NewsArticle{
		{Title: "AAPL update", URL: "https://a.example/1", PublishedAt: now.Add(-time.Hour)},
	}}

	agg := New(testConfig(), Providers{
		Quotes: []models.QuoteProvider{&fakeQuoteProvider{name: "q", quote: aaplQuote("Technology")}},
		News:   []models.NewsProvider{broken, working},
	})

	articles, err := agg.GetStockNews(context.Background(), "AAPL", models.NewsOptions{})
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestSortByRelevanceTieBand(t *testing.T) {
	now := time.Now()
	agg := New(testConfig(), Providers{})

	cls := func(relevance float64) *models.Classification {
		return &models.Classification{Relevance: relevance}
	}
	articles := []models.NewsArticle{
		{ID: "old-high", Classification: cls(0.9), PublishedAt: now.Add(-10 * time.Hour)},
		{ID: "new-near", Classification: cls(0.8), PublishedAt: now.Add(-1 * time.Hour)},
		{ID: "low", Classification: cls(0.3), PublishedAt: now},
	}
	agg.sortByRelevance(articles)

	// 0.9 and 0.8 are inside the 0.2 tie band, so recency puts new-near
	// first; 0.3 is far outside and stays last despite being newest.
	assert.Equal(t, "new-near", articles[0].ID)
	assert.Equal(t, "old-high", articles[1].ID)
	assert.Equal(t, "low", articles[2].ID)
}

func TestFilterEquities(t *testing.T) {
	results := []models.SearchResult{
		{Symbol: "AAPL", Exchange: "NMS", QuoteType: "EQUITY"},
		{Symbol: "AAPL.MX", Exchange: "MEX", QuoteType: "EQUITY"},
		{Symbol: "SPY", Exchange: "PCX", QuoteType: "ETF"},
		{Symbol: "NOEX", Exchange: "", QuoteType: "EQUITY"},
		{Symbol: "MSFT", Exchange: "NMS", QuoteType: "EQUITY"},
	}

	filtered := FilterEquities(results, 10)
	require.Len(t, filtered, 2)
	assert.Equal(t, "AAPL", filtered[0].Symbol)
	assert.Equal(t, "MSFT", filtered[1].Symbol)

	assert.Len(t, FilterEquities(results, 1), 1, "cap applies")
}

func TestAverageVolume(t *testing.T) {
	bars := []models.Bar{
		{Date: "2025-06-10", Volume: 100},
		{Date: "2025-06-09", Volume: 300},
		{Date: "2025-06-06", Volume: 0}, // skipped
		{Date: "2025-06-05", Volume: 200},
	}
	agg := New(testConfig(), Providers{
		Historical: &fakeHistoricalProvider{name: "hist", data: &models.HistoricalData{
			Symbol: "AAPL", Bars: bars,
		}},
	})

	assert.Equal(t, int64(200), agg.AverageVolume(context.Background(), "AAPL"))
}

func TestAverageVolumeNoHistory(t *testing.T) {
	agg := New(testConfig(), Providers{
		Historical: &fakeHistoricalProvider{name: "hist", err: errors.New("down")},
	})
	assert.Equal(t, int64(0), agg.AverageVolume(context.Background(), "AAPL"))
}

func TestGetHistoricalDailyFallback(t *testing.T) {
	primary := &fakeHistoricalProvider{name: "primary", err: errors.New("down")}
	daily := &fakeHistoricalProvider{name: "daily", data: &models.HistoricalData{Symbol: "AAPL", Interval: "1d"}}

	agg := New(testConfig(), Providers{Historical: primary, HistoricalDaily: daily})

	data, err := agg.GetHistoricalData(context.Background(), "AAPL", "1mo", "1d")
	require.NoError(t, err)
	assert.Equal(t, "1d", data.Interval)

	// Non-daily intervals have no fallback.
	_, err = agg.GetHistoricalData(context.Background(), "AAPL", "1y", "1wk")
	assert.Error(t, err)
}
