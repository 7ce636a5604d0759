package handler

import (
	"shopledger/internal/service"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	forecasts *service.ForecastService
}

func NewForecastHandler(forecasts *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecasts: forecasts}
}

func (h *ForecastHandler) DemandForecast(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	productID, ok := pathInt64(c, "product_id")
	if !ok {
		return
	}

	forecast, err := h.forecasts.GetDemandForecast(c.Request.Context(), shopID, productID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, forecast)
}

func (h *ForecastHandler) ReorderSuggestions(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	suggestions, err := h.forecasts.GetReorderSuggestions(c.Request.Context(), shopID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, suggestions)
}

func (h *ForecastHandler) SalesAnomalies(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	productID, ok := pathInt64(c, "product_id")
	if !ok {
		return
	}

	anomalies, err := h.forecasts.GetSalesAnomalies(c.Request.Context(), shopID, productID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, anomalies)
}
