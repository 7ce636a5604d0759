package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopledger/internal/auth"
	"shopledger/internal/config"
	"shopledger/internal/model"
	"shopledger/internal/repository"
	"shopledger/pkg/idgen"
	"shopledger/pkg/response"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderService drives the fulfillment pipeline: atomic order creation
// with inventory deduction, guarded status transitions, and the
// post-commit accounting hooks on delivery and cancellation.
type OrderService struct {
	db            *gorm.DB
	orderRepo     *repository.OrderRepository
	productRepo   *repository.ProductRepository
	inventoryRepo *repository.InventoryRepository
	accounting    *AccountingService
}

func NewOrderService(db *gorm.DB, orderRepo *repository.OrderRepository, productRepo *repository.ProductRepository, inventoryRepo *repository.InventoryRepository, accounting *AccountingService) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		accounting:    accounting,
	}
}

type OrderItemInput struct {
	ProductID      int64           `json:"product_id" binding:"required"`
	Quantity       int             `json:"quantity" binding:"required"`
	DiscountOnItem decimal.Decimal `json:"discount_on_item"`
}

type CreateOrderInput struct {
	CustomerID         *int64           `json:"customer_id"`
	Items              []OrderItemInput `json:"items" binding:"required"`
	IsCreditSale       bool             `json:"is_credit_sale"`
	CreditDurationDays int              `json:"credit_duration_days"`
	CustomerName       string           `json:"customer_name"`
	CustomerPhone      string           `json:"customer_phone"`
	ShippingAddress    string           `json:"shipping_address"`
	Notes              string           `json:"notes"`
}

// CreateOrder runs the whole placement inside one transaction: price
// every line from the current catalog, deduct stock with conditional
// updates, and persist the order with its item snapshots. Any failure
// rolls everything back, leaving inventory untouched.
func (s *OrderService) CreateOrder(ctx context.Context, actor auth.Actor, shopID int64, in CreateOrderInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, response.Validation("order must contain at least one item")
	}
	seen := make(map[int64]bool, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, response.Validation(fmt.Sprintf("quantity for product %d must be at least 1", item.ProductID))
		}
		if item.DiscountOnItem.IsNegative() {
			return nil, response.Validation(fmt.Sprintf("discount for product %d cannot be negative", item.ProductID))
		}
		if seen[item.ProductID] {
			return nil, response.Validation(fmt.Sprintf("product %d appears more than once", item.ProductID))
		}
		seen[item.ProductID] = true
	}

	// Customers place orders only for themselves.
	if actor.Role == model.RoleCustomer {
		if in.CustomerID != nil && *in.CustomerID != actor.UserID {
			return nil, response.Forbidden("customers can only place orders for themselves")
		}
		in.CustomerID = &actor.UserID
	}
	if in.IsCreditSale && in.CustomerID == nil {
		return nil, response.Validation("credit sales require a customer")
	}

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subtotal := decimal.Zero
		taxTotal := decimal.Zero
		discountTotal := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		quantities := make([]repository.ItemQuantity, 0, len(in.Items))
		names := make(map[int64]string, len(in.Items))

		for _, item := range in.Items {
			product, err := s.productRepo.GetByID(ctx, tx, shopID, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return response.NotFound(fmt.Sprintf("product %d not found", item.ProductID))
				}
				return err
			}
			if !product.IsActive {
				return response.Validation(fmt.Sprintf("product %s is not available for sale", product.Name))
			}
			names[product.ID] = product.Name

			qty := decimal.NewFromInt(int64(item.Quantity))
			lineBase := product.SellingPrice.Mul(qty)
			lineTax := lineBase.Mul(product.GSTRate).Div(hundred).Round(2)
			lineTotal := lineBase.Add(lineTax).Sub(item.DiscountOnItem)

			subtotal = subtotal.Add(lineBase)
			taxTotal = taxTotal.Add(lineTax)
			discountTotal = discountTotal.Add(item.DiscountOnItem)

			orderItems = append(orderItems, model.OrderItem{
				ShopID:         shopID,
				ProductID:      product.ID,
				ProductName:    product.Name,
				Quantity:       item.Quantity,
				UnitPrice:      product.SellingPrice,
				GSTRate:        product.GSTRate,
				GSTAmount:      lineTax,
				DiscountOnItem: item.DiscountOnItem,
				LineTotal:      lineTotal,
			})
			quantities = append(quantities, repository.ItemQuantity{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		if err := s.inventoryRepo.CheckAvailability(ctx, tx, shopID, quantities); err != nil {
			return s.stockError(err, names)
		}

		total := subtotal.Sub(discountTotal).Add(taxTotal)
		order = &model.Order{
			ShopID:             shopID,
			OrderNumber:        idgen.GenerateOrderNumber(shopID),
			CustomerID:         in.CustomerID,
			Subtotal:           subtotal,
			DiscountAmount:     discountTotal,
			TaxAmount:          taxTotal,
			TotalAmount:        total,
			OrderStatus:        model.OrderStatusPlaced,
			PaymentStatus:      model.PaymentStatusPending,
			CustomerName:       in.CustomerName,
			CustomerPhone:      in.CustomerPhone,
			ShippingAddress:    in.ShippingAddress,
			IsCreditSale:       in.IsCreditSale,
			CreditDurationDays: in.CreditDurationDays,
			CreatedBy:          actor.UserID,
			Notes:              in.Notes,
			Items:              orderItems,
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}

		if err := s.inventoryRepo.Deduct(ctx, tx, shopID, quantities, actor.UserID, model.ReferenceTypeOrder, order.ID); err != nil {
			return s.stockError(err, names)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	config.Logger().WithFields(logrus.Fields{
		"shop_id":      shopID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount.String(),
	}).Info("order placed")
	return order, nil
}

func (s *OrderService) stockError(err error, names map[int64]string) error {
	var stockErr *repository.InsufficientStockError
	if errors.As(err, &stockErr) {
		stockErr.ProductName = names[stockErr.ProductID]
		return response.Conflict(stockErr.Error()).WithDetails(stockErr)
	}
	return err
}

// UpdateStatus moves an order through the fulfillment lifecycle. On
// cancellation the stock restore happens inside the same transaction as
// the status flip; the accounting hooks run after commit and never fail
// the transition.
func (s *OrderService) UpdateStatus(ctx context.Context, actor auth.Actor, shopID, orderID int64, target string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, nil, shopID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, response.NotFound("order not found")
		}
		return nil, err
	}

	if !model.CanTransitionTo(order.OrderStatus, target) {
		return nil, response.Conflict(fmt.Sprintf("cannot move order from %s to %s", order.OrderStatus, target))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		extra := map[string]interface{}{}
		if target == model.OrderStatusDelivered {
			extra["delivery_date"] = time.Now()
			if !order.IsCreditSale {
				extra["payment_status"] = model.PaymentStatusCompleted
			}
		}

		if err := s.orderRepo.UpdateStatus(ctx, tx, shopID, orderID, order.OrderStatus, target, extra); err != nil {
			if errors.Is(err, repository.ErrInvalidTransition) || errors.Is(err, repository.ErrOrderStatusChanged) {
				return response.Conflict(fmt.Sprintf("cannot move order from %s to %s", order.OrderStatus, target))
			}
			return err
		}

		if target == model.OrderStatusCancelled {
			quantities := make([]repository.ItemQuantity, 0, len(order.Items))
			for _, item := range order.Items {
				quantities = append(quantities, repository.ItemQuantity{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
				})
			}
			return s.inventoryRepo.Restore(ctx, tx, shopID, quantities, actor.UserID, model.ReferenceTypeOrderReversal, order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Accounting is best effort: a posting failure is logged and left
	// for the failed-outbox remediation path, never surfaced as a
	// fulfillment error.
	switch target {
	case model.OrderStatusDelivered:
		if err := s.accounting.ProcessDelivery(ctx, order, actor.UserID); err != nil {
			config.LogError("order", "UpdateStatus", logrus.Fields{
				"order_id": order.ID,
				"event":    "accounting_post",
			}, err)
		}
	case model.OrderStatusCancelled:
		if err := s.accounting.ReverseDelivery(ctx, order, actor.UserID); err != nil {
			config.LogError("order", "UpdateStatus", logrus.Fields{
				"order_id": order.ID,
				"event":    "accounting_reverse",
			}, err)
		}
	}

	return s.orderRepo.GetByID(ctx, nil, shopID, orderID)
}

func (s *OrderService) GetOrder(ctx context.Context, actor auth.Actor, shopID, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, nil, shopID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, response.NotFound("order not found")
		}
		return nil, err
	}
	if actor.Role == model.RoleCustomer {
		if order.CustomerID == nil || *order.CustomerID != actor.UserID {
			return nil, response.Forbidden("not your order")
		}
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, actor auth.Actor, shopID int64, status string, offset, limit int) ([]*model.Order, int64, error) {
	if status != "" {
		if _, ok := model.ValidStatusTransitions[status]; !ok {
			return nil, 0, response.Validation("unknown order status " + status)
		}
	}
	if actor.Role == model.RoleCustomer {
		return s.orderRepo.ListByCustomer(ctx, shopID, actor.UserID, offset, limit)
	}
	return s.orderRepo.List(ctx, shopID, status, offset, limit)
}

// Dashboard summarizes today's trade for the shop home screen.
type Dashboard struct {
	TodayRevenue    decimal.Decimal  `json:"today_revenue"`
	TodayOrderCount int64            `json:"today_order_count"`
	AvgOrderValue   decimal.Decimal  `json:"avg_order_value"`
	StatusCounts    map[string]int64 `json:"status_counts"`
	RecentOrders    []*model.Order   `json:"recent_orders"`
}

func (s *OrderService) GetDashboard(ctx context.Context, shopID int64) (*Dashboard, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	revenue, count, err := s.orderRepo.RevenueBetween(ctx, shopID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.orderRepo.CountByStatus(ctx, shopID)
	if err != nil {
		return nil, err
	}
	recent, err := s.orderRepo.ListRecent(ctx, shopID, 5)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = revenue.Div(decimal.NewFromInt(count)).Round(2)
	}

	return &Dashboard{
		TodayRevenue:    revenue,
		TodayOrderCount: count,
		AvgOrderValue:   avg,
		StatusCounts:    statusCounts,
		RecentOrders:    recent,
	}, nil
}
