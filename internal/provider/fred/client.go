package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/alchemistbuilder/stockdrivernews/internal/platform/http"
	"github.com/alchemistbuilder/stockdrivernews/models"
)

// trackedSeries are the economic indicators folded into the market overview.
var trackedSeries = []string{
	"FEDFUNDS", // Federal Funds Rate
	"CPIAUCSL", // Consumer Price Index
	"UNRATE",   // Unemployment Rate
	"GDP",      // Gross Domestic Product
}

// Client is the Federal Reserve Economic Data client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new FRED client
type ClientOptions struct {
	APIKey         string
	RequestTimeout time.Duration
	MinInterval    time.Duration
}

// NewClient creates a new FRED client
func NewClient(options ClientOptions) *Client {
	if options.MinInterval == 0 {
		options.MinInterval = time.Second
	}
	apiKey := options.APIKey
	if apiKey == "" {
		apiKey = "demo"
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.stlouisfed.org/fred",
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:     options.RequestTimeout,
			MinInterval: options.MinInterval,
		}),
		logger: log.With().Str("component", "fred_client").Logger(),
	}
}

// Name identifies the provider in health reports.
func (c *Client) Name() string { return "Federal Reserve FRED" }

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetEconomicIndicators fetches the latest observation of each tracked
// series. A failed series is skipped, not fatal.
func (c *Client) GetEconomicIndicators(ctx context.Context) (map[string]models.EconomicObservation, error) {
	indicators := make(map[string]models.EconomicObservation, len(trackedSeries))

	for _, series := range trackedSeries {
		obs, err := c.latestObservation(ctx, series)
		if err != nil {
			c.logger.Warn().Err(err).Str("series", series).Msg("Skipping economic series")
			continue
		}
		indicators[series] = obs
	}
	return indicators, nil
}

func (c *Client) latestObservation(ctx context.Context, series string) (models.EconomicObservation, error) {
	params := url.Values{}
	params.Set("series_id", series)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("limit", "1")
	params.Set("sort_order", "desc")

	endpoint := fmt.Sprintf("%s/series/observations?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.EconomicObservation{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return models.EconomicObservation{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.EconomicObservation{}, fmt.Errorf("reading response body: %w", err)
	}

	var data observationsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return models.EconomicObservation{}, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(data.Observations) == 0 {
		return models.EconomicObservation{}, fmt.Errorf("no observations for %s", series)
	}

	latest := data.Observations[0]
	value, _ := strconv.ParseFloat(latest.Value, 64)
	return models.EconomicObservation{Value: value, Date: latest.Date}, nil
}

// CheckHealth probes one series.
func (c *Client) CheckHealth(ctx context.Context) models.ServiceHealth {
	if _, err := c.latestObservation(ctx, "FEDFUNDS"); err != nil {
		return models.ServiceHealth{Service: c.Name(), Status: "error", Error: err.Error()}
	}
	return models.ServiceHealth{Service: c.Name(), Status: "healthy"}
}
