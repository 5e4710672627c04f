package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/alchemistbuilder/stockdrivernews/internal/platform/http"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider"
	"github.com/alchemistbuilder/stockdrivernews/models"
)

// Yahoo rejects requests without a browser user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// indexSymbols are the tracked market indices.
var indexSymbols = map[string]string{
	"^GSPC": "SP500",
	"^DJI":  "DOW",
	"^IXIC": "NASDAQ",
	"^RUT":  "RUSSELL2000",
}

// sectorETFs are the tracked sector proxies.
var sectorETFs = []string{
	"XLK", "XLF", "XLV", "XLE", "XLI", "XLY", "XLP", "XLU", "XLB", "XLRE", "XLC",
}

// Client is the Yahoo Finance client. Serves historical series, symbol
// search, basic company profiles, and index/sector snapshots. No API key.
type Client struct {
	chartURL   string
	searchURL  string
	quotesURL  string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo Finance client
type ClientOptions struct {
	RequestTimeout time.Duration
	MinInterval    time.Duration
}

// NewClient creates a new Yahoo Finance client
func NewClient(options ClientOptions) *Client {
	if options.MinInterval == 0 {
		options.MinInterval = 500 * time.Millisecond
	}

	return &Client{
		chartURL:  "https://query1.finance.yahoo.com/v8/finance/chart",
		searchURL: "https://query1.finance.yahoo.com/v1/finance/search",
		quotesURL: "https://query1.finance.yahoo.com/v7/finance/quote",
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:     options.RequestTimeout,
			MinInterval: options.MinInterval,
		}),
		logger: log.With().Str("component", "yahoo_client").Logger(),
	}
}

// Name implements the capability interfaces.
func (c *Client) Name() string { return "Yahoo Finance" }

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// GetHistorical fetches an OHLCV series, most recent bar first.
func (c *Client) GetHistorical(ctx context.Context, symbol, period, interval string) (*models.HistoricalData, error) {
	endpoint := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=%s",
		c.chartURL, url.PathEscape(symbol),
		periodStart(period), time.Now().Unix(), url.QueryEscape(interval))

	var data chartResponse
	if err := c.get(ctx, endpoint, &data); err != nil {
		return nil, err
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Timestamp) == 0 {
		return nil, provider.ErrNotFound
	}

	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, provider.ErrNotFound
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		bars = append(bars, models.Bar{
			Date:   time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  quote.Close[i],
			Volume: atInt(quote.Volume, i),
		})
	}
	// Chart data arrives oldest first; callers expect most recent first.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	c.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Fetched historical data")
	return &models.HistoricalData{
		Symbol:   symbol,
		Period:   period,
		Interval: interval,
		Bars:     bars,
		Source:   c.Name(),
	}, nil
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Sector    string `json:"sector"`
		Industry  string `json:"industry"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search finds symbols matching a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	endpoint := fmt.Sprintf("%s?q=%s&quotesCount=10&newsCount=0", c.searchURL, url.QueryEscape(query))

	var data searchResponse
	if err := c.get(ctx, endpoint, &data); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(data.Quotes))
	for _, q := range data.Quotes {
		results = append(results, models.SearchResult{
			Symbol:    q.Symbol,
			ShortName: q.ShortName,
			LongName:  q.LongName,
			Exchange:  q.Exchange,
			QuoteType: q.QuoteType,
			Sector:    q.Sector,
			Industry:  q.Industry,
		})
	}
	return results, nil
}

type quotesResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			ShortName                  string  `json:"shortName"`
			LongName                   string  `json:"longName"`
			Sector                     string  `json:"sector"`
			Industry                   string  `json:"industry"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketChange        float64 `json:"regularMarketChange"`
			RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			AverageDailyVolume3Month   int64   `json:"averageDailyVolume3Month"`
			MarketCap                  int64   `json:"marketCap"`
			TrailingPE                 float64 `json:"trailingPE"`
			ForwardPE                  float64 `json:"forwardPE"`
			DividendYield              float64 `json:"dividendYield"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

func (c *Client) getQuotes(ctx context.Context, symbols []string) (*quotesResponse, error) {
	endpoint := fmt.Sprintf("%s?symbols=%s", c.quotesURL, url.QueryEscape(strings.Join(symbols, ",")))

	var data quotesResponse
	if err := c.get(ctx, endpoint, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetProfile derives a basic company profile from the quote endpoint.
// Yahoo has no dedicated profile endpoint; this is the fallback behind the
// comprehensive Alpha Vantage overview.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	data, err := c.getQuotes(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}
	if len(data.QuoteResponse.Result) == 0 {
		return nil, provider.ErrNotFound
	}
	q := data.QuoteResponse.Result[0]

	name := q.LongName
	if name == "" {
		name = q.ShortName
	}
	return &models.CompanyProfile{
		Symbol:        q.Symbol,
		Name:          name,
		Sector:        q.Sector,
		Industry:      q.Industry,
		MarketCap:     q.MarketCap,
		PERatio:       q.TrailingPE,
		ForwardPE:     q.ForwardPE,
		DividendYield: q.DividendYield,
		AvgVolume:     q.AverageDailyVolume3Month,
		Source:        c.Name(),
	}, nil
}

// GetMarketData fetches the tracked market index snapshots.
func (c *Client) GetMarketData(ctx context.Context) (map[string]models.IndexQuote, error) {
	symbols := make([]string, 0, len(indexSymbols))
	for s := range indexSymbols {
		symbols = append(symbols, s)
	}

	data, err := c.getQuotes(ctx, symbols)
	if err != nil {
		return nil, err
	}

	indices := make(map[string]models.IndexQuote, len(data.QuoteResponse.Result))
	for _, q := range data.QuoteResponse.Result {
		name, ok := indexSymbols[q.Symbol]
		if !ok {
			name = q.Symbol
		}
		indices[name] = models.IndexQuote{
			Symbol:        q.Symbol,
			Price:         q.RegularMarketPrice,
			Change:        q.RegularMarketChange,
			ChangePercent: q.RegularMarketChangePercent,
			Volume:        q.RegularMarketVolume,
		}
	}
	return indices, nil
}

// GetSectorData fetches the tracked sector ETF snapshots, keyed by ETF symbol.
func (c *Client) GetSectorData(ctx context.Context) (map[string]models.IndexQuote, error) {
	data, err := c.getQuotes(ctx, sectorETFs)
	if err != nil {
		return nil, err
	}

	sectors := make(map[string]models.IndexQuote, len(data.QuoteResponse.Result))
	for _, q := range data.QuoteResponse.Result {
		sectors[q.Symbol] = models.IndexQuote{
			Symbol:        q.Symbol,
			Name:          q.ShortName,
			Price:         q.RegularMarketPrice,
			Change:        q.RegularMarketChange,
			ChangePercent: q.RegularMarketChangePercent,
			Volume:        q.RegularMarketVolume,
		}
	}
	return sectors, nil
}

// CheckHealth probes the quote endpoint with a known symbol.
func (c *Client) CheckHealth(ctx context.Context) models.ServiceHealth {
	if _, err := c.GetProfile(ctx, "AAPL"); err != nil {
		return models.ServiceHealth{Service: c.Name(), Status: "error", Error: err.Error()}
	}
	return models.ServiceHealth{Service: c.Name(), Status: "healthy"}
}

func periodStart(period string) int64 {
	now := time.Now()
	switch period {
	case "1d":
		return now.AddDate(0, 0, -1).Unix()
	case "5d":
		return now.AddDate(0, 0, -5).Unix()
	case "1mo":
		return now.AddDate(0, -1, 0).Unix()
	case "3mo":
		return now.AddDate(0, -3, 0).Unix()
	case "6mo":
		return now.AddDate(0, -6, 0).Unix()
	case "1y":
		return now.AddDate(-1, 0, 0).Unix()
	case "2y":
		return now.AddDate(-2, 0, 0).Unix()
	case "5y":
		return now.AddDate(-5, 0, 0).Unix()
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	case "max":
		return 0
	default:
		return now.AddDate(0, -1, 0).Unix()
	}
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func atInt(values []int64, i int) int64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
