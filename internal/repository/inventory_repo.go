package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"shopledger/internal/config"
	"shopledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrDuplicateBatch    = errors.New("inventory already exists for this product and batch")
	ErrNegativeStock     = errors.New("stock cannot go below zero")
)

// InsufficientStockError names the failing product and the available vs
// requested quantities, as the conflict response must surface them.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// ItemQuantity is a (product, quantity) pair passed through the order
// pipeline.
type ItemQuantity struct {
	ProductID int64
	Quantity  int
}

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, inv *model.Inventory) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InventoryRepository) GetByProductBatch(ctx context.Context, shopID, productID int64, batchNo string) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id = ? AND batch_no = ?", shopID, productID, batchNo).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInventoryNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// AvailableQuantity sums stock on hand across batches.
func (r *InventoryRepository) AvailableQuantity(ctx context.Context, tx *gorm.DB, shopID, productID int64) (int, error) {
	if tx == nil {
		tx = r.db
	}
	var total int64
	err := tx.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("shop_id = ? AND product_id = ?", shopID, productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

// CheckAvailability fails fast on the first item without sufficient
// stock. It reserves nothing; Deduct re-validates atomically.
func (r *InventoryRepository) CheckAvailability(ctx context.Context, tx *gorm.DB, shopID int64, items []ItemQuantity) error {
	for _, item := range items {
		available, err := r.AvailableQuantity(ctx, tx, shopID, item.ProductID)
		if err != nil {
			return err
		}
		if available < item.Quantity {
			return &InsufficientStockError{
				ProductID: item.ProductID,
				Available: available,
				Requested: item.Quantity,
			}
		}
	}
	return nil
}

// Deduct removes stock for every item inside the caller's transaction.
// Items are processed in product-id order so concurrent multi-item
// orders cannot deadlock. Stock drains across batch rows in expiry
// order until the requested quantity is covered; each per-row decrement
// is a conditional UPDATE guarded by `quantity >= ?`, so a zero row
// count means another request raced this one and the row is re-read.
// Running out of rows before the quantity is covered rolls the whole
// transaction back.
func (r *InventoryRepository) Deduct(ctx context.Context, tx *gorm.DB, shopID int64, items []ItemQuantity, movedBy int64, refType string, refID int64) error {
	if tx == nil {
		tx = r.db
	}

	sorted := make([]ItemQuantity, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	for _, item := range sorted {
		remaining := item.Quantity
		for remaining > 0 {
			var inv model.Inventory
			err := tx.WithContext(ctx).
				Where("shop_id = ? AND product_id = ? AND quantity > 0", shopID, item.ProductID).
				Order("expiry_date IS NULL, expiry_date, id").
				First(&inv).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				available, availErr := r.AvailableQuantity(ctx, tx, shopID, item.ProductID)
				if availErr != nil {
					available = 0
				}
				return &InsufficientStockError{
					ProductID: item.ProductID,
					Available: available + item.Quantity - remaining,
					Requested: item.Quantity,
				}
			}
			if err != nil {
				return err
			}

			take := remaining
			if inv.Quantity < take {
				take = inv.Quantity
			}
			result := tx.WithContext(ctx).
				Model(&model.Inventory{}).
				Where("id = ? AND quantity >= ?", inv.ID, take).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity - ?", take),
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// lost the row to a concurrent order; re-read
				continue
			}
			remaining -= take
		}

		movement := &model.StockMovement{
			ShopID:        shopID,
			ProductID:     item.ProductID,
			MovementType:  model.MovementTypeSale,
			Quantity:      -item.Quantity,
			ReferenceType: refType,
			ReferenceID:   refID,
			MovedBy:       movedBy,
		}
		if err := tx.WithContext(ctx).Create(movement).Error; err != nil {
			return err
		}
	}

	return nil
}

// Restore is the compensating inverse of Deduct. Adding stock back is
// never rejected; a missing row is logged and skipped rather than
// failing the cancellation.
func (r *InventoryRepository) Restore(ctx context.Context, tx *gorm.DB, shopID int64, items []ItemQuantity, movedBy int64, refType string, refID int64) error {
	if tx == nil {
		tx = r.db
	}

	for _, item := range items {
		result := tx.WithContext(ctx).
			Model(&model.Inventory{}).
			Where("id = (?)",
				tx.Session(&gorm.Session{NewDB: true}).
					Model(&model.Inventory{}).
					Select("id").
					Where("shop_id = ? AND product_id = ?", shopID, item.ProductID).
					Order("id").
					Limit(1),
			).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", item.Quantity),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			config.Logger().WithFields(logrus.Fields{
				"shop_id":    shopID,
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			}).Warn("restore skipped: inventory row missing")
			continue
		}

		movement := &model.StockMovement{
			ShopID:        shopID,
			ProductID:     item.ProductID,
			MovementType:  model.MovementTypeRestore,
			Quantity:      item.Quantity,
			ReferenceType: refType,
			ReferenceID:   refID,
			MovedBy:       movedBy,
		}
		if err := tx.WithContext(ctx).Create(movement).Error; err != nil {
			return err
		}
	}

	return nil
}

// AdjustStock applies a signed manual delta to one inventory row,
// refusing to take the quantity negative.
func (r *InventoryRepository) AdjustStock(ctx context.Context, shopID, productID int64, batchNo string, delta int, movedBy int64) (*model.Inventory, error) {
	inv, err := r.GetByProductBatch(ctx, shopID, productID, batchNo)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if delta < 0 {
			result := tx.Model(&model.Inventory{}).
				Where("id = ? AND quantity >= ?", inv.ID, -delta).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", delta),
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrNegativeStock
			}
		} else {
			result := tx.Model(&model.Inventory{}).
				Where("id = ?", inv.ID).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", delta),
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
		}

		movement := &model.StockMovement{
			ShopID:        shopID,
			ProductID:     productID,
			MovementType:  model.MovementTypeAdjustment,
			Quantity:      delta,
			ReferenceType: "manual",
			MovedBy:       movedBy,
		}
		return tx.Create(movement).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetByProductBatch(ctx, shopID, productID, batchNo)
}

func (r *InventoryRepository) ListByShop(ctx context.Context, shopID int64, offset, limit int) ([]*model.Inventory, int64, error) {
	var items []*model.Inventory
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Inventory{}).Where("shop_id = ?", shopID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("product_id, batch_no").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

// StockSummary aggregates the shop's whole stock position in one query.
type StockSummary struct {
	TotalRows  int64
	TotalValue decimal.Decimal
	InStock    int64
	LowStock   int64
	OutOfStock int64
}

func (r *InventoryRepository) Summary(ctx context.Context, shopID int64) (*StockSummary, error) {
	type row struct {
		TotalRows  int64
		TotalValue string
		InStock    int64
		LowStock   int64
		OutOfStock int64
	}
	var result row
	err := r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Select(`COUNT(*) as total_rows,
			COALESCE(SUM(quantity * cost_price), 0) as total_value,
			COALESCE(SUM(CASE WHEN quantity > min_quantity THEN 1 ELSE 0 END), 0) as in_stock,
			COALESCE(SUM(CASE WHEN quantity > 0 AND quantity <= min_quantity THEN 1 ELSE 0 END), 0) as low_stock,
			COALESCE(SUM(CASE WHEN quantity = 0 THEN 1 ELSE 0 END), 0) as out_of_stock`).
		Where("shop_id = ?", shopID).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(result.TotalValue)
	if err != nil {
		return nil, err
	}
	return &StockSummary{
		TotalRows:  result.TotalRows,
		TotalValue: value,
		InStock:    result.InStock,
		LowStock:   result.LowStock,
		OutOfStock: result.OutOfStock,
	}, nil
}

// ListLowStock returns rows at or below their minimum, lowest first.
func (r *InventoryRepository) ListLowStock(ctx context.Context, shopID int64) ([]*model.Inventory, error) {
	var items []*model.Inventory
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND quantity <= min_quantity", shopID).
		Order("quantity ASC").
		Find(&items).Error
	return items, err
}
