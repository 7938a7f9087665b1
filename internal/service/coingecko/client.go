package coingecko

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinPager/internal/domain/models"
	"CoinPager/internal/service/retry"
	xhttp "CoinPager/pkg/http"
)

const perPage = 250

// Client talks to the CoinGecko markets API with rate-limit-aware retry.
type Client struct {
	baseURL string
	demoKey string
	proKey  string
	http    *xhttp.Client
	retry   *retry.Policy
}

// ClientOption configures Client.
type ClientOption func(*Client)

// NewClient creates a CoinGecko client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		retry:   retry.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(
			xhttp.WithTimeout(30*time.Second),
			xhttp.WithDefaultHeader("User-Agent", "coinpager/0.5"),
		)
	}
	return c
}

// WithKeys sets the demo/pro API keys.
func WithKeys(demo, pro string) ClientOption {
	return func(c *Client) {
		c.demoKey = demo
		c.proKey = pro
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *xhttp.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p *retry.Policy) ClientOption {
	return func(c *Client) {
		c.retry = p
	}
}

// TopCoins fetches up to limit coins ordered by market cap, paging the
// markets endpoint at 250 rows per page.
func (c *Client) TopCoins(ctx context.Context, limit int) ([]models.MarketCoin, error) {
	pages := (limit + perPage - 1) / perPage

	out := make([]models.MarketCoin, 0, limit)
	for page := 1; page <= pages; page++ {
		rows, err := c.markets(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			r.Symbol = strings.ToUpper(r.Symbol)
			out = append(out, r)
		}
		if len(out) >= limit {
			break
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) markets(ctx context.Context, page int) ([]models.MarketCoin, error) {
	var rows []models.MarketCoin
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		rows = rows[:0]
		return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodGet,
			URL:     c.baseURL + "/coins/markets",
			Headers: c.headers(),
			QueryParams: map[string][]string{
				"vs_currency":             {"usd"},
				"order":                   {"market_cap_desc"},
				"per_page":                {strconv.Itoa(perPage)},
				"page":                    {strconv.Itoa(page)},
				"sparkline":               {"false"},
				"price_change_percentage": {"24h"},
			},
		}, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko markets page %d: %w", page, err)
	}
	return rows, nil
}

func (c *Client) headers() map[string]string {
	h := map[string]string{}
	if c.demoKey != "" {
		h["x-cg-demo-api-key"] = c.demoKey
	}
	if c.proKey != "" {
		h["x-cg-pro-api-key"] = c.proKey
	}
	return h
}
