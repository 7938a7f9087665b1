//go:build wireinject
// +build wireinject

package di

import (
	"CoinPager/pkg/config"
	"CoinPager/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Upstream clients and storage
		ProvideCoinbaseClient,
		ProvideCoinGeckoClient,
		ProvideSnapshotStore,

		// Use cases
		ProvideBackfiller,
		ProvideJobRegistry,
		ProvideExporter,
		ProvidePriceStore,
		ProvideSimulator,
		ProvideScreener,
		ProvideMarketOverview,

		// HTTP surface
		ProvideLimiter,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
