package models

import (
	"time"
)

// Quote represents a snapshot of a stock's trading state. Quotes are
// immutable: a refresh replaces the whole record, nothing mutates in place.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	PreviousClose float64   `json:"previousClose"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	LastUpdated   time.Time `json:"lastUpdated"`
	// Source names the provider that produced this quote. Synthetic quotes
	// carry SourceSynthetic so callers can detect degraded mode.
	Source  string          `json:"source"`
	Profile *CompanyProfile `json:"profile,omitempty"`
}

// SourceSynthetic is the provenance tag of generated fallback quotes.
const SourceSynthetic = "Synthetic Data"

// CompanyProfile holds slow-changing descriptive data about a company.
type CompanyProfile struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Exchange      string  `json:"exchange,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	Description   string  `json:"description,omitempty"`
	MarketCap     int64   `json:"marketCap,omitempty"`
	PERatio       float64 `json:"peRatio,omitempty"`
	ForwardPE     float64 `json:"forwardPE,omitempty"`
	DividendYield float64 `json:"dividendYield,omitempty"`
	EPS           float64 `json:"eps,omitempty"`
	AvgVolume     int64   `json:"avgVolume,omitempty"`
	Week52High    float64 `json:"week52High,omitempty"`
	Week52Low     float64 `json:"week52Low,omitempty"`
	Source        string  `json:"source"`
}

// NewsArticle is one article as collected from a provider. After
// classification the Classification field is populated; the rest of the
// record is never changed.
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	// APISource names the provider the article came from, as opposed to
	// Source which is the publication.
	APISource      string          `json:"apiSource"`
	Classification *Classification `json:"classification,omitempty"`
}

// Body returns the text used for keyword matching besides the title.
func (a NewsArticle) Body() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Description
}

// NewsCategory is the closed set of relevance categories.
type NewsCategory string

const (
	CategoryStockSpecific NewsCategory = "stock-specific"
	CategoryCompetitor    NewsCategory = "competitor"
	CategoryIndustry      NewsCategory = "industry"
	CategoryMacro         NewsCategory = "macro"
	CategoryUnrelated     NewsCategory = "unrelated"
)

// PriceImpact is the estimated impact tier of an article.
type PriceImpact string

const (
	ImpactHigh    PriceImpact = "high"
	ImpactMedium  PriceImpact = "medium"
	ImpactLow     PriceImpact = "low"
	ImpactUnknown PriceImpact = "unknown"
)

// Classification is the result of scoring one article against one
// (symbol, sector) pair. The same article may classify differently for
// different symbols.
type Classification struct {
	Category    NewsCategory `json:"category"`
	Subcategory string       `json:"subcategory"`
	Relevance   float64      `json:"relevance"`
	Sentiment   float64      `json:"sentiment"`
	Urgency     float64      `json:"urgency"`
	PriceImpact PriceImpact  `json:"priceImpact"`
	Confidence  float64      `json:"confidence"`
	Reason      string       `json:"reason"`
}

// NewsOptions narrows a news query.
type NewsOptions struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Bar is one OHLCV bar of a historical series.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// HistoricalData is an ordered series of bars, most recent first.
type HistoricalData struct {
	Symbol   string `json:"symbol"`
	Period   string `json:"period"`
	Interval string `json:"interval"`
	Bars     []Bar  `json:"bars"`
	Source   string `json:"source"`
}

// IndexQuote is a market index or sector ETF snapshot.
type IndexQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
}

// EconomicObservation is the latest value of one economic series.
type EconomicObservation struct {
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}

// MarketOverview aggregates market-wide context shared by many requests.
type MarketOverview struct {
	Indices            map[string]IndexQuote          `json:"marketIndices"`
	Sectors            map[string]IndexQuote          `json:"sectorPerformance"`
	TopNews            []NewsArticle                  `json:"topNews"`
	EconomicIndicators map[string]EconomicObservation `json:"economicIndicators,omitempty"`
	LastUpdated        time.Time                      `json:"lastUpdated"`
}

// SearchResult is one hit from a symbol search.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortName,omitempty"`
	LongName  string `json:"longName,omitempty"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
}

// ServiceHealth reports the status of one provider probe.
type ServiceHealth struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthReport is the fan-out of probes over every configured provider.
type HealthReport struct {
	Services  []ServiceHealth `json:"services"`
	CacheSize int             `json:"cacheSize"`
	Timestamp time.Time       `json:"timestamp"`
}
