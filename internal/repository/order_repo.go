package repository

import (
	"context"
	"errors"
	"time"

	"shopledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrOrderStatusChanged = errors.New("order status changed concurrently")
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, tx *gorm.DB, shopID, orderID int64) (*model.Order, error) {
	if tx == nil {
		tx = r.db
	}
	var order model.Order
	err := tx.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND shop_id = ?", orderID, shopID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) GetByNumber(ctx context.Context, shopID int64, orderNumber string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("shop_id = ? AND order_number = ?", shopID, orderNumber).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) List(ctx context.Context, shopID int64, status string, offset, limit int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("shop_id = ?", shopID)
	if status != "" {
		query = query.Where("order_status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Items").
		Order("order_date DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, shopID, customerID int64, offset, limit int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("shop_id = ? AND customer_id = ?", shopID, customerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Items").
		Order("order_date DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

// UpdateStatus moves an order from one status to another with a guarded
// UPDATE. The WHERE clause re-checks the current status so a concurrent
// transition loses cleanly instead of overwriting.
func (r *OrderRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, shopID, orderID int64, from, to string, extra map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	if !model.CanTransitionTo(from, to) {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{
		"order_status": to,
		"updated_at":   time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := tx.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND shop_id = ? AND order_status = ?", orderID, shopID, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderStatusChanged
	}
	return nil
}

// CountByStatus powers the dashboard status breakdown.
func (r *OrderRepository) CountByStatus(ctx context.Context, shopID int64) (map[string]int64, error) {
	type row struct {
		OrderStatus string
		Count       int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("order_status, COUNT(*) as count").
		Where("shop_id = ?", shopID).
		Group("order_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.OrderStatus] = r.Count
	}
	return counts, nil
}

// RevenueBetween totals delivered orders in the half-open interval
// [from, to).
func (r *OrderRepository) RevenueBetween(ctx context.Context, shopID int64, from, to time.Time) (decimal.Decimal, int64, error) {
	type row struct {
		Total string
		Count int64
	}
	var result row
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0) as total, COUNT(*) as count").
		Where("shop_id = ? AND order_status = ? AND order_date >= ? AND order_date < ?",
			shopID, model.OrderStatusDelivered, from, to).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, 0, err
	}

	total, err := decimal.NewFromString(result.Total)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return total, result.Count, nil
}

func (r *OrderRepository) ListRecent(ctx context.Context, shopID int64, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("order_date DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// ListDeliveredBetween feeds the daily sales report and the forecaster.
func (r *OrderRepository) ListDeliveredBetween(ctx context.Context, shopID int64, from, to time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("shop_id = ? AND order_status = ? AND order_date >= ? AND order_date < ?",
			shopID, model.OrderStatusDelivered, from, to).
		Order("order_date").
		Find(&orders).Error
	return orders, err
}
