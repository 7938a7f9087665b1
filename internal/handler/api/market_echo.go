package api

import (
	"github.com/labstack/echo/v4"

	models "CoinPager/internal/domain/models"
	xhttp "CoinPager/pkg/http"
)

func (h *Handler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"service": "coinpager",
		"status":  "ok",
	})
}

func (h *Handler) Coins(c echo.Context) error {
	req := &models.CoinsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	payload, err := h.markets.Coins(c.Request().Context(), req.Limit, req.Quote)
	if err != nil {
		return h.fail(c, "coins listing", err)
	}
	return xhttp.SuccessResponse(c, payload)
}

func (h *Handler) BTCPrice(c echo.Context) error {
	spot, err := h.markets.BTCSpot(c.Request().Context())
	if err != nil {
		return h.fail(c, "btc spot", err)
	}
	return xhttp.SuccessResponse(c, spot)
}

func (h *Handler) BTCHistory(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.limiter.Allow("btc_history", 4, 0.2) {
		return xhttp.TooManyRequestsResponse(c, "too many history requests, slow down")
	}

	payload, err := h.markets.BTCHistory(c.Request().Context(), req.Years)
	if err != nil {
		return h.fail(c, "btc history", err)
	}
	return xhttp.SuccessResponse(c, payload)
}
