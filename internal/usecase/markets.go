package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
	"CoinPager/pkg/cache"
	applogger "CoinPager/pkg/logger"
	"CoinPager/pkg/util"
)

const btcProductID = "BTC-USD"

// ErrQuoteNotSupported is returned for any quote unit other than USD.
var ErrQuoteNotSupported = errors.New("only USD quote is supported")

// MarketOverview serves the live market surface: the cached coin listing,
// the BTC spot quote, and on-demand BTC history.
type MarketOverview struct {
	lister   drepo.MarketLister
	source   drepo.CandleSource
	backfill *Backfiller
	cache    cache.Service
	metrics  drepo.Metrics
	logger   *applogger.Logger
	coinsTTL time.Duration
}

// NewMarketOverview wires the market surface.
func NewMarketOverview(
	lister drepo.MarketLister,
	source drepo.CandleSource,
	backfill *Backfiller,
	c cache.Service,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	coinsTTL time.Duration,
) *MarketOverview {
	if coinsTTL <= 0 {
		coinsTTL = 5 * time.Minute
	}
	return &MarketOverview{
		lister:   lister,
		source:   source,
		backfill: backfill,
		cache:    c,
		metrics:  metrics,
		logger:   logger,
		coinsTTL: coinsTTL,
	}
}

// Coins returns the top coins by market cap. Results are cached per limit.
// Limit is clamped to [1, 500]; only the USD quote is supported.
func (m *MarketOverview) Coins(ctx context.Context, limit int, quote string) (models.CoinsPayload, error) {
	if strings.ToUpper(quote) != "USD" {
		return models.CoinsPayload{}, ErrQuoteNotSupported
	}
	limit = util.ClampInt(limit, 1, 500)

	key := fmt.Sprintf("coins:%d", limit)
	var cached string
	if err := m.cache.Get(ctx, key, &cached); err == nil {
		var payload models.CoinsPayload
		if err := json.Unmarshal([]byte(cached), &payload); err == nil {
			return payload, nil
		}
	}

	coins, err := m.lister.TopCoins(ctx, limit)
	if err != nil {
		m.metrics.RecordUpstreamError("coingecko")
		return models.CoinsPayload{}, err
	}

	payload := models.CoinsPayload{
		VsCurrency: "usd",
		Count:      len(coins),
		Coins:      coins,
	}
	if b, err := json.Marshal(payload); err == nil {
		_ = m.cache.Set(ctx, key, string(b), m.coinsTTL)
	}
	return payload, nil
}

// BTCSpot returns the live BTC-USD quote.
func (m *MarketOverview) BTCSpot(ctx context.Context) (models.SpotPrice, error) {
	price, err := m.source.Ticker(ctx, btcProductID)
	if err != nil {
		m.metrics.RecordUpstreamError("coinbase")
		return models.SpotPrice{}, err
	}
	return models.SpotPrice{
		Source:   "coinbase",
		Symbol:   "BTC",
		PriceUSD: price,
	}, nil
}

// BTCHistory backfills BTC-USD on demand, bypassing the snapshot store.
// Years is clamped to [1, 15].
func (m *MarketOverview) BTCHistory(ctx context.Context, years int) (models.HistoryPayload, error) {
	years = util.ClampInt(years, 1, 15)

	started := time.Now()
	series, err := m.backfill.DailyCloses(ctx, btcProductID, years)
	m.metrics.RecordLatency("btc_history", time.Since(started).Seconds())
	if err != nil {
		m.metrics.RecordUpstreamError("coinbase")
		return models.HistoryPayload{}, err
	}

	payload := models.HistoryPayload{
		Symbol:    "BTC",
		Available: len(series) > 0,
		Labels:    make([]string, 0, len(series)),
		Data:      make([]float64, 0, len(series)),
	}
	for _, p := range series {
		payload.Labels = append(payload.Labels, p.Date.Format("2006-01-02"))
		payload.Data = append(payload.Data, p.Close)
	}
	return payload, nil
}
