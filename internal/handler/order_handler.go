package handler

import (
	"shopledger/internal/service"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Create(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	var in service.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.FailKind(c, response.KindValidation, "invalid order payload: "+err.Error())
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), actor, shopID, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	orderID, ok := pathInt64(c, "order_id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), actor, shopID, orderID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	orders, total, err := h.orders.ListOrders(c.Request.Context(), actor, shopID, c.Query("status"), offset, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"orders": orders, "total": total})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	orderID, ok := pathInt64(c, "order_id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailKind(c, response.KindValidation, "status is required")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), actor, shopID, orderID, req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) Dashboard(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	dashboard, err := h.orders.GetDashboard(c.Request.Context(), shopID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, dashboard)
}
