package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopledger/internal/model"
	"shopledger/internal/repository"
	"shopledger/pkg/response"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryService manages stock intake and manual adjustments. Order
// driven deductions and restores go through OrderService instead.
type InventoryService struct {
	db            *gorm.DB
	inventoryRepo *repository.InventoryRepository
	productRepo   *repository.ProductRepository
}

func NewInventoryService(db *gorm.DB, inventoryRepo *repository.InventoryRepository, productRepo *repository.ProductRepository) *InventoryService {
	return &InventoryService{
		db:            db,
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
	}
}

type AddInventoryInput struct {
	ProductID    int64           `json:"product_id" binding:"required"`
	BatchNo      string          `json:"batch_no"`
	Quantity     int             `json:"quantity" binding:"required"`
	MinQuantity  int             `json:"min_quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
}

// AddToInventory registers a new stock batch for a catalog product.
func (s *InventoryService) AddToInventory(ctx context.Context, shopID, actorID int64, in AddInventoryInput) (*model.Inventory, error) {
	if in.Quantity < 0 {
		return nil, response.Validation("quantity cannot be negative")
	}

	product, err := s.productRepo.GetByID(ctx, nil, shopID, in.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, response.NotFound(fmt.Sprintf("product %d not found", in.ProductID))
		}
		return nil, err
	}

	costPrice := in.CostPrice
	if costPrice.IsZero() {
		costPrice = product.CostPrice
	}
	sellingPrice := in.SellingPrice
	if sellingPrice.IsZero() {
		sellingPrice = product.SellingPrice
	}
	if sellingPrice.LessThan(costPrice) {
		return nil, response.Validation("selling price cannot be below cost price")
	}

	if _, err := s.inventoryRepo.GetByProductBatch(ctx, shopID, in.ProductID, in.BatchNo); err == nil {
		return nil, response.Conflict(fmt.Sprintf("inventory for product %s batch %q already exists", product.Name, in.BatchNo))
	} else if !errors.Is(err, repository.ErrInventoryNotFound) {
		return nil, err
	}

	minQty := in.MinQuantity
	if minQty == 0 {
		minQty = product.MinStockLevel
	}

	inv := &model.Inventory{
		ShopID:       shopID,
		ProductID:    in.ProductID,
		BatchNo:      in.BatchNo,
		Quantity:     in.Quantity,
		MinQuantity:  minQty,
		CostPrice:    costPrice,
		SellingPrice: sellingPrice,
		ExpiryDate:   in.ExpiryDate,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		movement := &model.StockMovement{
			ShopID:        shopID,
			ProductID:     in.ProductID,
			MovementType:  model.MovementTypeInbound,
			Quantity:      in.Quantity,
			ReferenceType: "intake",
			ReferenceID:   inv.ID,
			MovedBy:       actorID,
		}
		return tx.Create(movement).Error
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateStock applies a signed manual correction, e.g. shrinkage or a
// recount. The quantity can never be driven below zero.
func (s *InventoryService) UpdateStock(ctx context.Context, shopID, productID int64, batchNo string, delta int, actorID int64) (*model.Inventory, error) {
	inv, err := s.inventoryRepo.AdjustStock(ctx, shopID, productID, batchNo, delta, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInventoryNotFound):
			return nil, response.NotFound("inventory not found for this product and batch")
		case errors.Is(err, repository.ErrNegativeStock):
			return nil, response.Conflict("adjustment would take stock below zero")
		}
		return nil, err
	}
	return inv, nil
}

// InventorySummary aggregates the shop's whole stock position, not just
// the requested page.
type InventorySummary struct {
	TotalItems      int64           `json:"total_items"`
	TotalValue      decimal.Decimal `json:"total_value"`
	InStockCount    int64           `json:"in_stock_count"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
}

type InventoryPage struct {
	Items   []*model.Inventory `json:"items"`
	Total   int64              `json:"total"`
	Summary InventorySummary   `json:"summary"`
}

func (s *InventoryService) GetShopInventory(ctx context.Context, shopID int64, offset, limit int) (*InventoryPage, error) {
	items, total, err := s.inventoryRepo.ListByShop(ctx, shopID, offset, limit)
	if err != nil {
		return nil, err
	}
	summary, err := s.inventoryRepo.Summary(ctx, shopID)
	if err != nil {
		return nil, err
	}

	return &InventoryPage{
		Items: items,
		Total: total,
		Summary: InventorySummary{
			TotalItems:      summary.TotalRows,
			TotalValue:      summary.TotalValue,
			InStockCount:    summary.InStock,
			LowStockCount:   summary.LowStock,
			OutOfStockCount: summary.OutOfStock,
		},
	}, nil
}

// LowStockAlert pairs an inventory row with its catalog entry so the
// alert can carry the product name and reorder quantity.
type LowStockAlert struct {
	ProductID       int64  `json:"product_id"`
	ProductName     string `json:"product_name"`
	BatchNo         string `json:"batch_no"`
	Quantity        int    `json:"quantity"`
	MinQuantity     int    `json:"min_quantity"`
	ReorderQuantity int    `json:"reorder_quantity"`
}

func (s *InventoryService) GetLowStockAlerts(ctx context.Context, shopID int64) ([]LowStockAlert, error) {
	rows, err := s.inventoryRepo.ListLowStock(ctx, shopID)
	if err != nil {
		return nil, err
	}

	alerts := make([]LowStockAlert, 0, len(rows))
	for _, row := range rows {
		alert := LowStockAlert{
			ProductID:   row.ProductID,
			BatchNo:     row.BatchNo,
			Quantity:    row.Quantity,
			MinQuantity: row.MinQuantity,
		}
		if product, err := s.productRepo.GetByID(ctx, nil, shopID, row.ProductID); err == nil {
			alert.ProductName = product.Name
			alert.ReorderQuantity = product.ReorderQuantity
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}
