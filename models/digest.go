package models

import "time"

// AlertType identifies what triggered an alert.
type AlertType string

const (
	AlertPriceMovement  AlertType = "price_movement"
	AlertHighImpactNews AlertType = "high_impact_news"
	AlertNewsVolume     AlertType = "news_volume"
	AlertVolumeSpike    AlertType = "volume_spike"
)

// Alert is a generated, non-persisted notification for one symbol.
type Alert struct {
	Type        AlertType `json:"type"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	Explanation string    `json:"explanation"`
}

// NewsHighlight is the condensed view of one article inside a report.
type NewsHighlight struct {
	Title       string       `json:"title"`
	Source      string       `json:"source"`
	Category    NewsCategory `json:"classification"`
	Relevance   float64      `json:"relevance"`
	Sentiment   float64      `json:"sentiment"`
	Impact      PriceImpact  `json:"impact"`
	PublishedAt time.Time    `json:"publishedAt"`
	URL         string       `json:"url"`
}

// QuoteSummary is the condensed quote view used in digests.
type QuoteSummary struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
	Sector        string  `json:"sector,omitempty"`
}

// MovementSummary is the condensed correlation analysis inside a report.
type MovementSummary struct {
	Explanation string         `json:"explanation"`
	Confidence  float64        `json:"confidence"`
	Driver      MovementDriver `json:"primaryDriver"`
}

// SymbolReport is one watchlist entry of a digest.
type SymbolReport struct {
	Symbol        string          `json:"symbol"`
	Quote         QuoteSummary    `json:"stockData"`
	Movement      MovementSummary `json:"movementAnalysis"`
	News          NewsBreakdown   `json:"newsBreakdown"`
	TopNews       []NewsHighlight `json:"topNews"`
	PriorityScore int             `json:"priorityScore"`
	Alerts        []Alert         `json:"alerts"`
}

// Insight is a cross-symbol observation derived from a digest.
type Insight struct {
	Type         string   `json:"type"`
	Message      string   `json:"message"`
	Significance string   `json:"significance"`
	Symbols      []string `json:"symbols,omitempty"`
}

// DigestSummary aggregates headline numbers over a digest.
type DigestSummary struct {
	TotalStocks          int     `json:"totalStocks"`
	StocksWithNews       int     `json:"stocksWithNews"`
	HighPriorityAlerts   int     `json:"highPriorityAlerts"`
	TotalNewsArticles    int     `json:"totalNewsArticles"`
	AveragePriorityScore float64 `json:"averagePriorityScore"`
}

// MarketContext is the market-wide framing of a digest.
type MarketContext struct {
	Indices          map[string]IndexQuote `json:"indices"`
	OverallDirection string                `json:"overallDirection"`
	TopMarketNews    []NewsArticle         `json:"topMarketNews"`
}

// Digest is a derived, per-request aggregate over a set of symbols.
// It has no lifecycle beyond one response.
type Digest struct {
	Date      string         `json:"date"`
	Symbols   []string       `json:"watchlistSymbols"`
	Summary   DigestSummary  `json:"summary"`
	Market    MarketContext  `json:"marketContext"`
	Insights  []Insight      `json:"insights"`
	Stocks    []SymbolReport `json:"stocks"`
	Generated time.Time      `json:"generatedAt"`
}

// PriceMovement describes direction and size of a day's move.
type PriceMovement struct {
	Direction    string  `json:"direction"`
	Magnitude    float64 `json:"magnitude"`
	Significance string  `json:"significance"`
}

// KeyEvent is a headline picked out by the daily summary.
type KeyEvent struct {
	Title  string      `json:"title"`
	Impact PriceImpact `json:"impact"`
}

// DailySummary is the news-based movement summary for one symbol.
type DailySummary struct {
	Symbol              string        `json:"symbol"`
	Date                string        `json:"date"`
	PriceMovement       PriceMovement `json:"priceMovement"`
	News                NewsBreakdown `json:"newsAnalysis"`
	MovementExplanation string        `json:"movementExplanation"`
	KeyEvents           []KeyEvent    `json:"keyEvents"`
	Sentiment           float64       `json:"sentiment"`
}

// ComprehensiveReport joins everything known about one symbol.
type ComprehensiveReport struct {
	Symbol     string          `json:"symbol"`
	Quote      *Quote          `json:"stockData"`
	Profile    *CompanyProfile `json:"companyProfile,omitempty"`
	News       []NewsArticle   `json:"newsData"`
	Historical *HistoricalData `json:"historicalData,omitempty"`
	Summary    *DailySummary   `json:"dailySummary,omitempty"`
	Generated  time.Time       `json:"generatedAt"`
}
