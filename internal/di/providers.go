package di

import (
	"fmt"

	domrepo "CoinPager/internal/domain/repository"
	"CoinPager/internal/handler/api"
	internalrepo "CoinPager/internal/repository"
	"CoinPager/internal/service/coinbase"
	"CoinPager/internal/service/coingecko"
	"CoinPager/internal/service/ratelimit"
	"CoinPager/internal/usecase"
	"CoinPager/pkg/cache"
	"CoinPager/pkg/config"
	xhttp "CoinPager/pkg/http"
	applogger "CoinPager/pkg/logger"
	"CoinPager/pkg/metrics"
	"CoinPager/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCache creates the cache backend selected by config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		return cache.NewRedisCache(redisOptions(cfg)...)
	case "layered":
		rc, err := cache.NewRedisCache(redisOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(rc), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func redisOptions(cfg *config.Config) []cache.RedisOption {
	return []cache.RedisOption{
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	}
}

// ProvideCoinbaseClient creates the Coinbase Exchange client.
func ProvideCoinbaseClient(cfg *config.Config, c cache.Service) domrepo.CandleSource {
	opts := []coinbase.ClientOption{}
	if cfg.Coinbase.ProductsTTL > 0 {
		opts = append(opts, coinbase.WithProductsTTL(cfg.Coinbase.ProductsTTL))
	}
	if cfg.Coinbase.RequestTimeout > 0 {
		opts = append(opts, coinbase.WithHTTPClient(xhttp.NewClient(
			xhttp.WithTimeout(cfg.Coinbase.RequestTimeout),
			xhttp.WithDefaultHeader("User-Agent", "coinpager/0.5"),
		)))
	}
	return coinbase.NewClient(cfg.Coinbase.BaseURL, c, opts...)
}

// ProvideCoinGeckoClient creates the CoinGecko market lister.
func ProvideCoinGeckoClient(cfg *config.Config) domrepo.MarketLister {
	opts := []coingecko.ClientOption{
		coingecko.WithKeys(cfg.CoinGecko.DemoKey, cfg.CoinGecko.ProKey),
	}
	if cfg.CoinGecko.RequestTimeout > 0 {
		opts = append(opts, coingecko.WithHTTPClient(xhttp.NewClient(
			xhttp.WithTimeout(cfg.CoinGecko.RequestTimeout),
			xhttp.WithDefaultHeader("User-Agent", "coinpager/0.5"),
		)))
	}
	return coingecko.NewClient(cfg.CoinGecko.BaseURL, opts...)
}

// ProvideSnapshotStore creates the CSV snapshot store.
func ProvideSnapshotStore(cfg *config.Config) (domrepo.SnapshotStore, error) {
	store, err := internalrepo.NewCSVSnapshotStore(cfg.Export.Dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	return store, nil
}

// ProvideBackfiller creates the block-stepping backfiller.
func ProvideBackfiller(source domrepo.CandleSource, cfg *config.Config, l *applogger.Logger) *usecase.Backfiller {
	opts := []usecase.BackfillerOption{}
	if cfg.Coinbase.ExportSleep > 0 {
		opts = append(opts, usecase.WithBlockDelay(cfg.Coinbase.ExportSleep))
	}
	return usecase.NewBackfiller(source, l, opts...)
}

// ProvideJobRegistry creates the export job registry.
func ProvideJobRegistry(cfg *config.Config) *usecase.JobRegistry {
	opts := []usecase.RegistryOption{}
	if cfg.Export.JobRetention > 0 {
		opts = append(opts, usecase.WithRetention(cfg.Export.JobRetention))
	}
	if cfg.Export.MaxJobs > 0 {
		opts = append(opts, usecase.WithMaxJobs(cfg.Export.MaxJobs))
	}
	return usecase.NewJobRegistry(opts...)
}

// ProvideExporter creates the export job runner.
func ProvideExporter(
	source domrepo.CandleSource,
	store domrepo.SnapshotStore,
	backfill *usecase.Backfiller,
	registry *usecase.JobRegistry,
	c cache.Service,
	m domrepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Exporter {
	opts := []usecase.ExporterOption{}
	if cfg.Coinbase.ExportSleep > 0 {
		opts = append(opts, usecase.WithSymbolDelay(cfg.Coinbase.ExportSleep))
	}
	return usecase.NewExporter(source, store, backfill, registry, c, m, l, opts...)
}

// ProvidePriceStore creates the snapshot read side.
func ProvidePriceStore(store domrepo.SnapshotStore, l *applogger.Logger) *usecase.PriceStore {
	return usecase.NewPriceStore(store, l)
}

// ProvideSimulator creates the savings-plan simulator.
func ProvideSimulator(prices *usecase.PriceStore, m domrepo.Metrics, l *applogger.Logger) *usecase.Simulator {
	return usecase.NewSimulator(prices, m, l)
}

// ProvideScreener creates the change-percentage screener.
func ProvideScreener(prices *usecase.PriceStore, m domrepo.Metrics, l *applogger.Logger) *usecase.Screener {
	return usecase.NewScreener(prices, m, l)
}

// ProvideMarketOverview creates the live market surface.
func ProvideMarketOverview(
	lister domrepo.MarketLister,
	source domrepo.CandleSource,
	backfill *usecase.Backfiller,
	c cache.Service,
	m domrepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.MarketOverview {
	return usecase.NewMarketOverview(lister, source, backfill, c, m, l, cfg.CoinGecko.CoinsTTL)
}

// ProvideLimiter creates the per-endpoint token bucket limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHandler creates the Echo HTTP handler.
func ProvideHandler(
	l *applogger.Logger,
	markets *usecase.MarketOverview,
	exporter *usecase.Exporter,
	prices *usecase.PriceStore,
	simulator *usecase.Simulator,
	screener *usecase.Screener,
	limiter *ratelimit.Limiter,
) xhttp.Handler {
	return api.NewHandler(l, markets, exporter, prices, simulator, screener, limiter)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, c cache.Service) *server.App {
	return server.New(cfg, l, handler, c)
}
