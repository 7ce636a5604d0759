package handler

import (
	"shopledger/internal/service"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventory *service.InventoryService
}

func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) Add(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	var in service.AddInventoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.FailKind(c, response.KindValidation, "invalid inventory payload: "+err.Error())
		return
	}

	inv, err := h.inventory.AddToInventory(c.Request.Context(), shopID, actor.UserID, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, inv)
}

func (h *InventoryHandler) List(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	page, err := h.inventory.GetShopInventory(c.Request.Context(), shopID, offset, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, page)
}

type adjustStockRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	BatchNo   string `json:"batch_no"`
	Delta     int    `json:"delta" binding:"required"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailKind(c, response.KindValidation, "product_id and a non-zero delta are required")
		return
	}

	inv, err := h.inventory.UpdateStock(c.Request.Context(), shopID, req.ProductID, req.BatchNo, req.Delta, actor.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, inv)
}

func (h *InventoryHandler) LowStockAlerts(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	alerts, err := h.inventory.GetLowStockAlerts(c.Request.Context(), shopID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, alerts)
}
