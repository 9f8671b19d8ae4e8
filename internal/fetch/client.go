// Package fetch is the HTML fetch layer: a plain HTTP client with the
// browser-like user agent and optional authentication cookie the target
// documentation sites expect.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds fetcher settings.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	// Cookie is an optional raw cookie string ("name=value") used for
	// authenticated documentation sites.
	Cookie string
}

// Client fetches page HTML over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient creates a fetch client.
// Parameters:
//   - cfg: fetcher configuration; zero values get defaults.
//
// Returns:
//   - *Client: initialized client.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}

	client := resty.New()

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	}
	client.SetHeader("User-Agent", ua)

	if cfg.Cookie != "" {
		client.SetHeader("Cookie", cfg.Cookie)
	}

	return &Client{http: client}
}

// Get fetches the page at url and returns its HTML. Non-2xx responses
// are errors.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch %s: status %s", url, resp.Status())
	}
	return resp.String(), nil
}
