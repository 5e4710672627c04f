package http

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is a wrapper for HTTP client with per-provider rate limiting.
// Each provider gets its own Client so that spacing on one provider never
// delays calls to another. The limiter allows no bursts: with burst 1 and
// rate.Every(MinInterval), Wait enforces the minimum spacing between
// consecutive granted turns.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	// Timeout bounds each outbound call; an expired call is a provider-local
	// failure, same as any other provider error.
	Timeout time.Duration
	// MinInterval is the minimum spacing between requests to this provider.
	MinInterval time.Duration
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MinInterval == 0 {
		opts.MinInterval = time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
	}
}

// DoRequest performs an HTTP request after waiting for the provider's turn.
// Failed calls are not retried here: fallback to a different provider is
// the caller's only retry-like behavior.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Wait for rate limiter
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return "non-200 status code: " + http.StatusText(e.StatusCode)
}

// IsRateLimited reports whether the error is an upstream 429.
func (e *HTTPStatusError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
