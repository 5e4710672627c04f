package newsapi

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
	"github.com/alchemistbuilder/stockdrivernews/internal/provider"
	"github.com/alchemistbuilder/stockdrivernews/models"
)

// Client is the NewsAPI.org client. Serves symbol-scoped article search
// and general business headlines.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
	// companyName maps a symbol to a search phrase that widens the query
	// beyond the bare ticker.
	companyName func(symbol string) string
}

// ClientOptions holds options for creating a new NewsAPI client
type ClientOptions struct {
	APIKey         string
	RequestTimeout time.Duration
	MinInterval    time.Duration
	// CompanyName resolves a ticker to a company search phrase; optional.
	CompanyName func(symbol string) string
}

// NewClient creates a new NewsAPI client
func NewClient(options ClientOptions) *Client {
	if options.MinInterval == 0 {
		options.MinInterval = time.Second // free tier spacing
	}
	nameFn := options.CompanyName
	if nameFn == nil {
		nameFn = func(string) string { return "" }
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: "https://newsapi.org/v2",
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:     options.RequestTimeout,
			MinInterval: options.MinInterval,
		}),
		logger:      log.With().Str("component", "newsapi_client").Logger(),
		companyName: nameFn,
	}
}

// Name implements models.NewsProvider.
func (c *Client) Name() string { return "NewsAPI" }

type articlesResponse struct {
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*articlesResponse, error) {
	if c.apiKey == "" {
		return nil, provider.ErrNotConfigured
	}
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
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

	var data articlesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return &data, nil
}

func (c *Client) toArticles(data *articlesResponse) []models.NewsArticle {
	articles := make([]models.NewsArticle, 0, len(data.Articles))
	for _, item := range data.Articles {
		published, _ := time.Parse(time.RFC3339, item.PublishedAt)
		source := item.Source.Name
		if source == "" {
			source = c.Name()
		}
		articles = append(articles, models.NewsArticle{
			ID:          provider.ArticleID(item.URL, item.Title, published),
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.URL,
			Source:      source,
			Author:      item.Author,
			PublishedAt: published,
			APISource:   c.Name(),
		})
	}
	return articles
}

// GetNews searches for articles mentioning the symbol or its company name.
func (c *Client) GetNews(ctx context.Context, symbol string, opts models.NewsOptions) ([]models.NewsArticle, error) {
	from := opts.From
	if from.IsZero() {
		from = time.Now().AddDate(0, 0, -1)
	}
	to := opts.To
	if to.IsZero() {
		to = time.Now()
	}

	query := symbol
	if name := c.companyName(symbol); name != "" {
		query = fmt.Sprintf("%s OR %q", symbol, name)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	if opts.Limit > 0 {
		params.Set("pageSize", strconv.Itoa(opts.Limit))
	}

	data, err := c.get(ctx, "/everything", params)
	if err != nil {
		return nil, err
	}

	articles := c.toArticles(data)
	c.logger.Debug().Str("symbol", symbol).Int("count", len(articles)).Msg("Fetched news")
	return articles, nil
}

// GetGeneralNews fetches top business headlines for market context.
func (c *Client) GetGeneralNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{}
	params.Set("category", "business")
	params.Set("country", "us")
	params.Set("pageSize", strconv.Itoa(limit))

	data, err := c.get(ctx, "/top-headlines", params)
	if err != nil {
		return nil, err
	}
	return c.toArticles(data), nil
}

// CheckHealth probes the headlines endpoint with a minimal page.
func (c *Client) CheckHealth(ctx context.Context) models.ServiceHealth {
	params := url.Values{}
	params.Set("country", "us")
	params.Set("pageSize", "1")

	if _, err := c.get(ctx, "/top-headlines", params); err != nil {
		return models.ServiceHealth{Service: c.Name(), Status: "error", Error: err.Error()}
	}
	return models.ServiceHealth{Service: c.Name(), Status: "healthy"}
}
