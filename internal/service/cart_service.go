package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"shopledger/internal/auth"
	"shopledger/internal/config"
	"shopledger/internal/model"
	"shopledger/internal/repository"
	"shopledger/pkg/response"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CartService keeps one pending cart per (shop, customer) in a Redis
// hash of product id to quantity. Carts expire after the configured
// idle TTL; checkout hands the contents to the order engine and clears
// the hash only if placement succeeds.
type CartService struct {
	redis       *redis.Client
	productRepo *repository.ProductRepository
	orders      *OrderService
	ttl         time.Duration
}

func NewCartService(redisClient *redis.Client, productRepo *repository.ProductRepository, orders *OrderService, ttl time.Duration) *CartService {
	return &CartService{
		redis:       redisClient,
		productRepo: productRepo,
		orders:      orders,
		ttl:         ttl,
	}
}

func cartKey(shopID, customerID int64) string {
	return fmt.Sprintf("cart:%d:%d", shopID, customerID)
}

func (s *CartService) AddItem(ctx context.Context, actor auth.Actor, shopID, productID int64, quantity int) error {
	if quantity < 1 {
		return response.Validation("quantity must be at least 1")
	}

	product, err := s.productRepo.GetByID(ctx, nil, shopID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return response.NotFound(fmt.Sprintf("product %d not found", productID))
		}
		return err
	}
	if !product.IsActive {
		return response.Validation(fmt.Sprintf("product %s is not available", product.Name))
	}

	key := cartKey(shopID, actor.UserID)
	pipe := s.redis.TxPipeline()
	pipe.HIncrBy(ctx, key, strconv.FormatInt(productID, 10), int64(quantity))
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// SetItemQuantity replaces an item's quantity; zero removes it.
func (s *CartService) SetItemQuantity(ctx context.Context, actor auth.Actor, shopID, productID int64, quantity int) error {
	if quantity < 0 {
		return response.Validation("quantity cannot be negative")
	}

	key := cartKey(shopID, actor.UserID)
	field := strconv.FormatInt(productID, 10)

	if quantity == 0 {
		return s.redis.HDel(ctx, key, field).Err()
	}

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, key, field, quantity)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

type CartLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Cart struct {
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxTotal decimal.Decimal `json:"tax_total"`
	Total    decimal.Decimal `json:"total"`
}

// GetCart prices the stored quantities against the current catalog.
// Products removed from the catalog since they were added are dropped
// silently.
func (s *CartService) GetCart(ctx context.Context, actor auth.Actor, shopID int64) (*Cart, error) {
	entries, err := s.redis.HGetAll(ctx, cartKey(shopID, actor.UserID)).Result()
	if err != nil {
		return nil, err
	}

	cart := &Cart{
		Lines:    make([]CartLine, 0, len(entries)),
		Subtotal: decimal.Zero,
		TaxTotal: decimal.Zero,
		Total:    decimal.Zero,
	}
	for field, raw := range entries {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(raw)
		if err != nil || quantity < 1 {
			continue
		}

		product, err := s.productRepo.GetByID(ctx, nil, shopID, productID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return nil, err
		}

		lineBase := product.SellingPrice.Mul(decimal.NewFromInt(int64(quantity)))
		lineTax := lineBase.Mul(product.GSTRate).Div(hundred).Round(2)
		cart.Lines = append(cart.Lines, CartLine{
			ProductID:   productID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.SellingPrice,
			GSTRate:     product.GSTRate,
			LineTotal:   lineBase.Add(lineTax),
		})
		cart.Subtotal = cart.Subtotal.Add(lineBase)
		cart.TaxTotal = cart.TaxTotal.Add(lineTax)
	}
	cart.Total = cart.Subtotal.Add(cart.TaxTotal)
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, actor auth.Actor, shopID int64) error {
	return s.redis.Del(ctx, cartKey(shopID, actor.UserID)).Err()
}

type CheckoutInput struct {
	IsCreditSale       bool   `json:"is_credit_sale"`
	CreditDurationDays int    `json:"credit_duration_days"`
	ShippingAddress    string `json:"shipping_address"`
	Notes              string `json:"notes"`
}

// Checkout turns the cart into a placed order. The cart survives a
// failed placement, including stock conflicts, so the customer can
// adjust and retry.
func (s *CartService) Checkout(ctx context.Context, actor auth.Actor, shopID int64, in CheckoutInput) (*model.Order, error) {
	entries, err := s.redis.HGetAll(ctx, cartKey(shopID, actor.UserID)).Result()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, response.Validation("cart is empty")
	}

	items := make([]OrderItemInput, 0, len(entries))
	for field, raw := range entries {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(raw)
		if err != nil || quantity < 1 {
			continue
		}
		items = append(items, OrderItemInput{ProductID: productID, Quantity: quantity})
	}
	if len(items) == 0 {
		return nil, response.Validation("cart is empty")
	}

	order, err := s.orders.CreateOrder(ctx, actor, shopID, CreateOrderInput{
		CustomerID:         &actor.UserID,
		Items:              items,
		IsCreditSale:       in.IsCreditSale,
		CreditDurationDays: in.CreditDurationDays,
		CustomerName:       actor.Name,
		ShippingAddress:    in.ShippingAddress,
		Notes:              in.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ClearCart(ctx, actor, shopID); err != nil {
		config.Logger().WithFields(logrus.Fields{
			"shop_id": shopID,
			"user_id": actor.UserID,
		}).Warn("cart clear failed after checkout, cart will expire on its own")
	}
	return order, nil
}
