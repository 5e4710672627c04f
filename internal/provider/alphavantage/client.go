package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/alchemistbuilder/stockdrivernews/internal/platform/http"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider"
	"github.com/alchemistbuilder/stockdrivernews/models"
)

// Client is the Alpha Vantage API client. Serves ticker-scoped news, daily
// historical series, and the comprehensive company overview.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Alpha Vantage client
type ClientOptions struct {
	APIKey         string
	RequestTimeout time.Duration
	MinInterval    time.Duration
}

// NewClient creates a new Alpha Vantage API client
func NewClient(options ClientOptions) *Client {
	if options.MinInterval == 0 {
		// Free tier allows 5 requests per minute.
		options.MinInterval = 12 * time.Second
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: "https://www.alphavantage.co/query",
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:     options.RequestTimeout,
			MinInterval: options.MinInterval,
		}),
		logger: log.With().Str("component", "alphavantage_client").Logger(),
	}
}

// Name implements the capability interfaces.
func (c *Client) Name() string { return "Alpha Vantage" }

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, provider.ErrNotConfigured
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	// Alpha Vantage reports throttling inside a 200 response.
	if strings.Contains(string(body), `"Note"`) {
		return nil, fmt.Errorf("Alpha Vantage rate limited")
	}
	return body, nil
}

type newsFeedResponse struct {
	Feed []struct {
		Title         string   `json:"title"`
		URL           string   `json:"url"`
		TimePublished string   `json:"time_published"`
		Authors       []string `json:"authors"`
		Summary       string   `json:"summary"`
		Source        string   `json:"source"`
	} `json:"feed"`
}

// GetNews fetches ticker-scoped news from the NEWS_SENTIMENT endpoint.
func (c *Client) GetNews(ctx context.Context, symbol string, opts models.NewsOptions) ([]models.NewsArticle, error) {
	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", symbol)
	params.Set("sort", "LATEST")
	limit := opts.Limit
	if limit == 0 {
		limit = 50
	}
	params.Set("limit", strconv.Itoa(limit))
	if !opts.From.IsZero() {
		params.Set("time_from", opts.From.UTC().Format("20060102T1504"))
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var data newsFeedResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	articles := make([]models.NewsArticle, 0, len(data.Feed))
	for _, item := range data.Feed {
		published, _ := time.Parse("20060102T150405", item.TimePublished)
		articles = append(articles, models.NewsArticle{
			ID:          provider.ArticleID(item.URL, item.Title, published),
			Title:       item.Title,
			Description: item.Summary,
			Content:     item.Summary,
			URL:         item.URL,
			Source:      item.Source,
			Author:      strings.Join(item.Authors, ", "),
			PublishedAt: published,
			APISource:   c.Name(),
		})
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", len(articles)).Msg("Fetched news")
	return articles, nil
}

// GetHistorical fetches a time series. Only daily granularity is offered
// here; the aggregator consults it as a fallback for daily requests.
func (c *Client) GetHistorical(ctx context.Context, symbol, period, interval string) (*models.HistoricalData, error) {
	functions := map[string]string{
		"1d":  "TIME_SERIES_DAILY",
		"1wk": "TIME_SERIES_WEEKLY",
		"1mo": "TIME_SERIES_MONTHLY",
	}
	fn, ok := functions[interval]
	if !ok {
		fn = "TIME_SERIES_DAILY"
	}

	params := url.Values{}
	params.Set("function", fn)
	params.Set("symbol", symbol)
	params.Set("outputsize", "compact")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	var series map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	}
	for key, msg := range raw {
		if strings.Contains(key, "Time Series") {
			if err := json.Unmarshal(msg, &series); err != nil {
				return nil, fmt.Errorf("parsing time series: %w", err)
			}
			break
		}
	}
	if len(series) == 0 {
		return nil, provider.ErrNotFound
	}

	bars := make([]models.Bar, 0, len(series))
	for date, v := range series {
		bars = append(bars, models.Bar{
			Date:   date,
			Open:   parseFloat(v.Open),
			High:   parseFloat(v.High),
			Low:    parseFloat(v.Low),
			Close:  parseFloat(v.Close),
			Volume: parseInt(v.Volume),
		})
	}
	// Most recent first.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date > bars[j].Date })

	return &models.HistoricalData{
		Symbol:   symbol,
		Period:   period,
		Interval: interval,
		Bars:     bars,
		Source:   c.Name(),
	}, nil
}

type overviewResponse struct {
	Symbol        string `json:"Symbol"`
	Name          string `json:"Name"`
	Description   string `json:"Description"`
	Sector        string `json:"Sector"`
	Industry      string `json:"Industry"`
	MarketCap     string `json:"MarketCapitalization"`
	PERatio       string `json:"PERatio"`
	ForwardPE     string `json:"ForwardPE"`
	DividendYield string `json:"DividendYield"`
	EPS           string `json:"EPS"`
	Week52High    string `json:"52WeekHigh"`
	Week52Low     string `json:"52WeekLow"`
}

// GetProfile fetches the comprehensive company overview.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", symbol)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var data overviewResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Symbol == "" {
		return nil, provider.ErrNotFound
	}

	return &models.CompanyProfile{
		Symbol:        data.Symbol,
		Name:          data.Name,
		Description:   data.Description,
		Sector:        data.Sector,
		Industry:      data.Industry,
		MarketCap:     parseInt(data.MarketCap),
		PERatio:       parseFloat(data.PERatio),
		ForwardPE:     parseFloat(data.ForwardPE),
		DividendYield: parseFloat(data.DividendYield),
		EPS:           parseFloat(data.EPS),
		Week52High:    parseFloat(data.Week52High),
		Week52Low:     parseFloat(data.Week52Low),
		Source:        c.Name(),
	}, nil
}

// CheckHealth probes the GLOBAL_QUOTE endpoint with a known symbol.
func (c *Client) CheckHealth(ctx context.Context) models.ServiceHealth {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", "AAPL")

	if _, err := c.get(ctx, params); err != nil {
		status := "error"
		if strings.Contains(err.Error(), "rate limited") {
			status = "rate_limited"
		}
		return models.ServiceHealth{Service: c.Name(), Status: status, Error: err.Error()}
	}
	return models.ServiceHealth{Service: c.Name(), Status: "healthy"}
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v
}
