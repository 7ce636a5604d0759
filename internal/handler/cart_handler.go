package handler

import (
	"shopledger/internal/service"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailKind(c, response.KindValidation, "product_id and quantity are required")
		return
	}

	if err := h.carts.AddItem(c.Request.Context(), actor, shopID, req.ProductID, req.Quantity); err != nil {
		response.Fail(c, err)
		return
	}

	cart, err := h.carts.GetCart(c.Request.Context(), actor, shopID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, cart)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) SetItemQuantity(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	productID, ok := pathInt64(c, "product_id")
	if !ok {
		return
	}

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailKind(c, response.KindValidation, "quantity is required")
		return
	}

	if err := h.carts.SetItemQuantity(c.Request.Context(), actor, shopID, productID, req.Quantity); err != nil {
		response.Fail(c, err)
		return
	}

	cart, err := h.carts.GetCart(c.Request.Context(), actor, shopID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, cart)
}

func (h *CartHandler) Get(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(c.Request.Context(), actor, shopID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, cart)
}

func (h *CartHandler) Clear(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(c.Request.Context(), actor, shopID); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

func (h *CartHandler) Checkout(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	var in service.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.FailKind(c, response.KindValidation, "invalid checkout payload")
		return
	}

	order, err := h.carts.Checkout(c.Request.Context(), actor, shopID, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, order)
}
