package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	drepo "CoinPager/internal/domain/repository"
	"CoinPager/internal/service/coinbase"
	"CoinPager/internal/service/ratelimit"
	"CoinPager/internal/usecase"
	xhttp "CoinPager/pkg/http"
	xlogger "CoinPager/pkg/logger"
)

// Handler implements the Echo-based HTTP surface following Clean Architecture.
type Handler struct {
	logger    *xlogger.Logger
	markets   *usecase.MarketOverview
	exporter  *usecase.Exporter
	prices    *usecase.PriceStore
	simulator *usecase.Simulator
	screener  *usecase.Screener
	limiter   *ratelimit.Limiter
}

func NewHandler(
	logger *xlogger.Logger,
	markets *usecase.MarketOverview,
	exporter *usecase.Exporter,
	prices *usecase.PriceStore,
	simulator *usecase.Simulator,
	screener *usecase.Screener,
	limiter *ratelimit.Limiter,
) *Handler {
	return &Handler{
		logger:    logger,
		markets:   markets,
		exporter:  exporter,
		prices:    prices,
		simulator: simulator,
		screener:  screener,
		limiter:   limiter,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)

	g := e.Group("/api")
	g.GET("/coins", h.Coins)
	g.GET("/btc/price", h.BTCPrice)
	g.GET("/btc/history", h.BTCHistory)

	g.POST("/export/coinbase/start", h.ExportStart)
	g.GET("/export/coinbase/status/:job_id", h.ExportStatus)
	g.POST("/export/coinbase/stop", h.ExportStop)

	g.POST("/filter/coinbase", h.Filter)
	g.GET("/csv/history/:symbol", h.CSVHistory)
	g.POST("/simulate/savings", h.SimulateSavings)
	g.POST("/simulate/savings_dynamic", h.SimulateSavingsDynamic)
}

// fail logs the use case error and writes the mapped application error.
func (h *Handler) fail(c echo.Context, op string, err error) error {
	h.logger.Error(op+" error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, h.appError(err))
}

func (h *Handler) appError(err error) error {
	var statusErr *xhttp.StatusError
	switch {
	case errors.Is(err, usecase.ErrQuoteNotSupported),
		errors.Is(err, usecase.ErrNoSymbols):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, usecase.ErrJobRunning):
		return xhttp.TooManyRequestsError(err.Error())
	case errors.Is(err, drepo.ErrNoSnapshot):
		return xhttp.NotFoundError("no export data available yet, start an export first")
	case errors.Is(err, coinbase.ErrUpstream):
		return xhttp.UpstreamError("coinbase is unavailable")
	case errors.As(err, &statusErr):
		return xhttp.UpstreamErrorf("upstream responded with status %d", statusErr.Code)
	default:
		return err
	}
}
