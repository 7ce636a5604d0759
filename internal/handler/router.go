package handler

import (
	"shopledger/internal/auth"
	"shopledger/internal/model"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth       *AuthHandler
	Order      *OrderHandler
	Inventory  *InventoryHandler
	Accounting *AccountingHandler
	Cart       *CartHandler
	Forecast   *ForecastHandler
}

// NewRouter wires every route group. Authorization is declarative: the
// RBAC permission sits on the group, tenancy is checked per request in
// shopScope.
func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(GinLogger(), Recovery(), CORS())

	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("", Auth(jwtSecret))
	shop := authed.Group("/shops/:shop_id")

	orders := shop.Group("/orders", RequirePermission(auth.PermOrderRead))
	{
		orders.POST("", RequirePermission(auth.PermOrderCreate), h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/:order_id", h.Order.Get)
		orders.PATCH("/:order_id/status", RequirePermission(auth.PermOrderManage), h.Order.UpdateStatus)
	}
	shop.GET("/dashboard", RequirePermission(auth.PermOrderManage), h.Order.Dashboard)

	inventory := shop.Group("/inventory", RequirePermission(auth.PermInventoryRead))
	{
		inventory.GET("", h.Inventory.List)
		inventory.GET("/low-stock", h.Inventory.LowStockAlerts)
		inventory.POST("", RequirePermission(auth.PermInventoryWrite), h.Inventory.Add)
		inventory.PATCH("/stock", RequirePermission(auth.PermInventoryWrite), h.Inventory.AdjustStock)
	}

	accounting := shop.Group("/accounting", RequirePermission(auth.PermAccountingRead))
	{
		accounting.GET("/ledger", h.Accounting.Ledger)
		accounting.GET("/cash-book", h.Accounting.CashBook)
		accounting.GET("/gst-summary", h.Accounting.GSTSummary)
		accounting.GET("/khata", h.Accounting.ListKhata)
	}

	reports := shop.Group("/reports", RequirePermission(auth.PermAccountingRead))
	{
		reports.GET("/daily-sales", h.Accounting.DailySales)
		reports.GET("/profit-loss", h.Accounting.ProfitAndLoss)
	}

	// Khata statements are reachable by customers for their own account;
	// the ownership check lives in the report service.
	shop.GET("/khata/:customer_id", requireAnyKhataRead(), h.Accounting.KhataStatement)

	cart := shop.Group("/cart", RequirePermission(auth.PermCartUse))
	{
		cart.GET("", h.Cart.Get)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:product_id", h.Cart.SetItemQuantity)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/checkout", h.Cart.Checkout)
	}

	forecast := shop.Group("/forecast", RequirePermission(auth.PermForecastRead))
	{
		forecast.GET("/products/:product_id", h.Forecast.DemandForecast)
		forecast.GET("/products/:product_id/anomalies", h.Forecast.SalesAnomalies)
		forecast.GET("/reorder-suggestions", h.Forecast.ReorderSuggestions)
	}

	admin := authed.Group("/admin")
	{
		admin.GET("/outbox/failed", requireAdminRole(), h.Accounting.FailedOutbox)
	}

	return r
}

func requireAnyKhataRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		if !auth.Can(actor, auth.PermAccountingRead) && !auth.Can(actor, auth.PermKhataReadOwn) {
			response.FailKind(c, response.KindForbidden, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAdminRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorFrom(c).Role != model.RoleAdmin {
			response.FailKind(c, response.KindForbidden, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}
