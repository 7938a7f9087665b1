package api

import (
	"github.com/labstack/echo/v4"

	models "CoinPager/internal/domain/models"
	xhttp "CoinPager/pkg/http"
)

func (h *Handler) Filter(c echo.Context) error {
	req := &models.FilterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	matches, csvUsed, err := h.screener.Run(req.Years, req.Percent, req.Direction)
	if err != nil {
		return h.fail(c, "filter", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"count":    len(matches),
		"results":  matches,
		"csv_used": csvUsed,
	})
}

func (h *Handler) CSVHistory(c echo.Context) error {
	payload, err := h.prices.History(c.Param("symbol"))
	if err != nil {
		return h.fail(c, "csv history", err)
	}
	return xhttp.SuccessResponse(c, payload)
}

func (h *Handler) SimulateSavings(c echo.Context) error {
	req := &models.SavingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.limiter.Allow("simulate", 10, 1) {
		return xhttp.TooManyRequestsResponse(c, "too many simulations, slow down")
	}

	result, err := h.simulator.FixedSavings(req.Symbol, req.Years, req.MonthlyUSD)
	if err != nil {
		return h.fail(c, "simulate savings", err)
	}
	return xhttp.SuccessResponse(c, result)
}

func (h *Handler) SimulateSavingsDynamic(c echo.Context) error {
	req := &models.DynamicSavingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.limiter.Allow("simulate", 10, 1) {
		return xhttp.TooManyRequestsResponse(c, "too many simulations, slow down")
	}

	result, err := h.simulator.DynamicSavings(
		req.Symbol, req.Years, req.MonthlyUSD,
		req.ThresholdPct, req.AdjustPct, req.MADays,
	)
	if err != nil {
		return h.fail(c, "simulate dynamic savings", err)
	}
	return xhttp.SuccessResponse(c, result)
}
