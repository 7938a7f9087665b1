package repository

import (
	"context"
	"errors"
	"time"

	"CoinPager/internal/domain/models"
)

// ErrNoSnapshot is returned when no durable snapshot exists yet.
var ErrNoSnapshot = errors.New("no export snapshot found")

// CandleSource is the exchange-side upstream: candle history, the
// instrument catalog, and a live ticker.
type CandleSource interface {
	// Candles fetches daily candles for [start, end]. One outbound call per
	// invocation; transient upstream failures bubble to the caller's
	// block-retry loop.
	Candles(ctx context.Context, productID string, start, end time.Time, granularity int64) ([]models.Candle, error)
	// Products returns the instrument catalog (cached upstream of this call).
	Products(ctx context.Context) ([]models.Product, error)
	// Ticker returns the live spot price for a product.
	Ticker(ctx context.Context, productID string) (float64, error)
}

// MarketLister is the market-overview upstream.
type MarketLister interface {
	TopCoins(ctx context.Context, limit int) ([]models.MarketCoin, error)
}

// SnapshotWriter streams one job's rows into a new durable snapshot.
// Rows are flushed after every symbol so a concurrent reader never sees a
// torn row.
type SnapshotWriter interface {
	WriteSeries(symbol, productID string, series models.PriceSeries) error
	WriteError(symbol, productID, tag string) error
	Filename() string
	Path() string
	Close() error
}

// SnapshotStore owns the durable daily-close records. Exactly one job
// writes at a time; any number of readers load the latest snapshot.
type SnapshotStore interface {
	// Cleanup deletes all existing snapshots. Called at job start.
	Cleanup() error
	// Create opens a new snapshot named after the creation time.
	Create(now time.Time) (SnapshotWriter, error)
	// Load parses the most recent snapshot into per-symbol series, sorted
	// ascending by date, skipping error rows. Returns ErrNoSnapshot when
	// none exists. The returned string is the snapshot filename.
	Load() (map[string]models.PriceSeries, string, error)
}

// Metrics records operational measurements.
type Metrics interface {
	RecordSymbolExported(result string)
	RecordUpstreamError(source string)
	RecordLastClose(symbol string, close float64)
	RecordLatency(op string, seconds float64)
}
