package coinbase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CoinPager/internal/domain/models"
	"CoinPager/internal/service/retry"
	xhttp "CoinPager/pkg/http"
)

func candleWindow() (time.Time, time.Time) {
	end := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
	return end.Add(-300 * 24 * time.Hour), end
}

func TestCandlesErrorKeepsUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"NotFound"}`))
	}))
	defer srv.Close()

	start, end := candleWindow()
	_, err := NewClient(srv.URL, nil).Candles(context.Background(), "NOPE-USD", start, end, 86400)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream in chain, got %v", err)
	}
	var se *xhttp.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("status must survive wrapping, got %v", err)
	}
	if retry.RetryableStatus(err) {
		t.Fatalf("a 404 candle error must not be retryable")
	}
}

func TestCandlesRateLimitErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	start, end := candleWindow()
	_, err := NewClient(srv.URL, nil).Candles(context.Background(), "BTC-USD", start, end, 86400)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !retry.RetryableStatus(err) {
		t.Fatalf("a 429 candle error must be retryable, got %v", err)
	}
}

func TestCandlesPreservesCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start, end := candleWindow()
	_, err := NewClient(srv.URL, nil).Candles(ctx, "BTC-USD", start, end, 86400)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation must survive wrapping, got %v", err)
	}
}

func TestUSDProductMap(t *testing.T) {
	products := []models.Product{
		{ID: "BTC-USD", BaseCurrency: "BTC", QuoteCurrency: "USD", Status: "online"},
		{ID: "BTC-EUR", BaseCurrency: "BTC", QuoteCurrency: "EUR", Status: "online"},
		{ID: "ETH-USD", BaseCurrency: "eth", QuoteCurrency: "USD", Status: "online"},
		{ID: "XRP-USD", BaseCurrency: "XRP", QuoteCurrency: "USD", Status: "delisted"},
		{ID: "BTC-USDALT", BaseCurrency: "BTC", QuoteCurrency: "USD", Status: "online"},
	}

	m := USDProductMap(products)

	if m["BTC"] != "BTC-USD" {
		t.Fatalf("first online USD pair must win, got %q", m["BTC"])
	}
	if m["ETH"] != "ETH-USD" {
		t.Fatalf("base currency must be uppercased, got %v", m)
	}
	if _, ok := m["XRP"]; ok {
		t.Fatalf("offline products must be excluded")
	}
	if len(m) != 2 {
		t.Fatalf("unexpected map %v", m)
	}
}
