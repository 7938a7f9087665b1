package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"CoinPager/internal/domain/models"
	"CoinPager/pkg/cache"
	xhttp "CoinPager/pkg/http"
	"CoinPager/pkg/util"
)

const productsCacheKey = "coinbase:products"

// ErrUpstream marks a failed exchange call.
var ErrUpstream = errors.New("coinbase upstream error")

// Client talks to the Coinbase Exchange REST API. The instrument catalog is
// cached; candle and ticker calls always go out.
type Client struct {
	baseURL     string
	http        *xhttp.Client
	cache       cache.Service
	productsTTL time.Duration
}

// ClientOption configures Client.
type ClientOption func(*Client)

// NewClient creates a Coinbase Exchange client.
func NewClient(baseURL string, c cache.Service, opts ...ClientOption) *Client {
	cl := &Client{
		baseURL:     baseURL,
		cache:       c,
		productsTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(cl)
	}
	if cl.http == nil {
		cl.http = xhttp.NewClient(
			xhttp.WithTimeout(30*time.Second),
			xhttp.WithDefaultHeader("User-Agent", "coinpager/0.5"),
		)
	}
	return cl
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *xhttp.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithProductsTTL overrides the catalog cache TTL.
func WithProductsTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.productsTTL = ttl
	}
}

// Candles fetches daily candles for [start, end]. Upstream rows are
// [time, low, high, open, close, volume?]; rows with fewer than 5 fields
// are dropped. The call is not retried here: transient failures bubble to
// the backfiller's block loop.
func (c *Client) Candles(ctx context.Context, productID string, start, end time.Time, granularity int64) ([]models.Candle, error) {
	var rows [][]json.Number
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/products/%s/candles", c.baseURL, productID),
		QueryParams: map[string][]string{
			"start":       {util.ISOZ(start)},
			"end":         {util.ISOZ(end)},
			"granularity": {fmt.Sprintf("%d", granularity)},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: candles %s: %w", ErrUpstream, productID, err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		ts, err := row[0].Int64()
		if err != nil {
			continue
		}
		close, err := row[4].Float64()
		if err != nil {
			continue
		}
		candles = append(candles, models.Candle{Timestamp: ts, Close: close})
	}
	return candles, nil
}

// Products returns the instrument catalog, cached for productsTTL.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	if c.cache != nil {
		var cached string
		if err := c.cache.Get(ctx, productsCacheKey, &cached); err == nil {
			var products []models.Product
			if err := json.Unmarshal([]byte(cached), &products); err == nil {
				return products, nil
			}
		}
	}

	var products []models.Product
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/products",
	}, &products)
	if err != nil {
		return nil, fmt.Errorf("%w: products: %w", ErrUpstream, err)
	}

	if c.cache != nil {
		if b, err := json.Marshal(products); err == nil {
			_ = c.cache.Set(ctx, productsCacheKey, string(b), c.productsTTL)
		}
	}
	return products, nil
}

// Ticker returns the live spot price for a product.
func (c *Client) Ticker(ctx context.Context, productID string) (float64, error) {
	var t struct {
		Price json.Number `json:"price"`
	}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/products/%s/ticker", c.baseURL, productID),
	}, &t)
	if err != nil {
		return 0, fmt.Errorf("%w: ticker %s: %w", ErrUpstream, productID, err)
	}
	price, err := t.Price.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: ticker %s: bad price %q", ErrUpstream, productID, t.Price)
	}
	return price, nil
}

// USDProductMap maps BASE symbol to the first online USD product id.
func USDProductMap(products []models.Product) map[string]string {
	m := make(map[string]string)
	for _, p := range products {
		if p.QuoteCurrency != "USD" || p.Status != "online" {
			continue
		}
		base := strings.ToUpper(p.BaseCurrency)
		if base == "" || p.ID == "" {
			continue
		}
		if _, ok := m[base]; !ok {
			m[base] = p.ID
		}
	}
	return m
}
