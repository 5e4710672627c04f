package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/alchemistbuilder/stockdrivernews/internal/platform/http"
	"github.com/alchemistbuilder/stockdrivernews/internal/provider"
	"github.com/alchemistbuilder/stockdrivernews/models"
)

// Client is the Twelve Data API client. Primary live quote source.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Twelve Data client
type ClientOptions struct {
	APIKey         string
	RequestTimeout time.Duration
	MinInterval    time.Duration
}

// NewClient creates a new Twelve Data API client
func NewClient(options ClientOptions) *Client {
	if options.MinInterval == 0 {
		options.MinInterval = time.Second // free tier spacing
	}
	apiKey := options.APIKey
	if apiKey == "" {
		apiKey = "demo"
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.twelvedata.com",
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:     options.RequestTimeout,
			MinInterval: options.MinInterval,
		}),
		logger: log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// Name implements models.QuoteProvider.
func (c *Client) Name() string { return "Twelve Data" }

type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	Currency      string `json:"currency"`
	Open          string `json:"open"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Close         string `json:"close"`
	Volume        string `json:"volume"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	AverageVolume string `json:"average_volume"`
	FiftyTwoWeek  struct {
		Low  string `json:"low"`
		High string `json:"high"`
	} `json:"fifty_two_week"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetQuote fetches the current quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s",
		c.baseURL, url.QueryEscape(symbol), c.apiKey)

	c.logger.Debug().Str("symbol", symbol).Msg("Fetching quote")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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

	if strings.Contains(string(body), `"status":"error"`) {
		c.logger.Error().Str("response", string(body)).Msg("Twelve Data API error")
		return nil, fmt.Errorf("Twelve Data API error: %s", string(body))
	}

	var data quoteResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Code != 0 && data.Code != http.StatusOK {
		return nil, fmt.Errorf("Twelve Data API error %d: %s", data.Code, data.Message)
	}
	if data.Symbol == "" {
		return nil, provider.ErrNotFound
	}

	quote := &models.Quote{
		Symbol:        data.Symbol,
		Price:         parseFloat(data.Close),
		Change:        parseFloat(data.Change),
		ChangePercent: parseFloat(data.PercentChange),
		Volume:        parseInt(data.Volume),
		PreviousClose: parseFloat(data.PreviousClose),
		Open:          parseFloat(data.Open),
		High:          parseFloat(data.High),
		Low:           parseFloat(data.Low),
		LastUpdated:   time.Now().UTC(),
		Source:        c.Name(),
		Profile: &models.CompanyProfile{
			Symbol:     data.Symbol,
			Name:       data.Name,
			Exchange:   data.Exchange,
			Currency:   data.Currency,
			AvgVolume:  parseInt(data.AverageVolume),
			Week52High: parseFloat(data.FiftyTwoWeek.High),
			Week52Low:  parseFloat(data.FiftyTwoWeek.Low),
			Source:     c.Name(),
		},
	}

	c.logger.Debug().Str("symbol", quote.Symbol).Float64("price", quote.Price).Msg("Fetched quote")
	return quote, nil
}

// CheckHealth probes the API with a known symbol.
func (c *Client) CheckHealth(ctx context.Context) models.ServiceHealth {
	quote, err := c.GetQuote(ctx, "AAPL")
	if err != nil {
		return models.ServiceHealth{Service: c.Name(), Status: "error", Error: err.Error()}
	}
	if quote == nil || quote.Price == 0 {
		return models.ServiceHealth{Service: c.Name(), Status: "degraded", Message: "no data returned"}
	}
	return models.ServiceHealth{Service: c.Name(), Status: "healthy", Message: "real-time data available"}
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v
}
