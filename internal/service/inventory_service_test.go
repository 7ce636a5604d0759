package service

import (
	"context"
	"errors"
	"testing"

	"shopledger/pkg/response"

	"github.com/shopspring/decimal"
)

func TestAddToInventory(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	inv, err := f.inventory.AddToInventory(ctx, f.shop.ID, f.owner.ID, AddInventoryInput{
		ProductID: f.chai.ID,
		BatchNo:   "B2024-07",
		Quantity:  48,
	})
	if err != nil {
		t.Fatalf("AddToInventory failed: %v", err)
	}
	if inv.Quantity != 48 {
		t.Errorf("quantity = %d, want 48", inv.Quantity)
	}
	// prices default from the catalog
	if !inv.CostPrice.Equal(f.chai.CostPrice) {
		t.Errorf("cost price = %s, want %s", inv.CostPrice, f.chai.CostPrice)
	}
	if inv.MinQuantity != f.chai.MinStockLevel {
		t.Errorf("min quantity = %d, want %d", inv.MinQuantity, f.chai.MinStockLevel)
	}
}

func TestAddToInventoryDuplicateBatch(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	// seedShop already created an unbatched row for chai
	_, err := f.inventory.AddToInventory(ctx, f.shop.ID, f.owner.ID, AddInventoryInput{
		ProductID: f.chai.ID,
		Quantity:  10,
	})
	var appErr *response.Error
	if !errors.As(err, &appErr) || appErr.Kind != response.KindConflict {
		t.Fatalf("error = %v, want CONFLICT", err)
	}
}

func TestAddToInventoryUnknownProduct(t *testing.T) {
	f := seedShop(t)

	_, err := f.inventory.AddToInventory(context.Background(), f.shop.ID, f.owner.ID, AddInventoryInput{
		ProductID: 99999,
		Quantity:  10,
	})
	var appErr *response.Error
	if !errors.As(err, &appErr) || appErr.Kind != response.KindNotFound {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestAddToInventoryPriceSanity(t *testing.T) {
	f := seedShop(t)

	_, err := f.inventory.AddToInventory(context.Background(), f.shop.ID, f.owner.ID, AddInventoryInput{
		ProductID:    f.chai.ID,
		BatchNo:      "B2024-08",
		Quantity:     10,
		CostPrice:    decimal.NewFromInt(100),
		SellingPrice: decimal.NewFromInt(90),
	})
	var appErr *response.Error
	if !errors.As(err, &appErr) || appErr.Kind != response.KindValidation {
		t.Fatalf("error = %v, want VALIDATION_ERROR", err)
	}
}

func TestUpdateStock(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	inv, err := f.inventory.UpdateStock(ctx, f.shop.ID, f.chai.ID, "", -5, f.owner.ID)
	if err != nil {
		t.Fatalf("UpdateStock failed: %v", err)
	}
	if inv.Quantity != 15 {
		t.Errorf("quantity = %d, want 15", inv.Quantity)
	}

	inv, err = f.inventory.UpdateStock(ctx, f.shop.ID, f.chai.ID, "", 10, f.owner.ID)
	if err != nil {
		t.Fatalf("UpdateStock failed: %v", err)
	}
	if inv.Quantity != 25 {
		t.Errorf("quantity = %d, want 25", inv.Quantity)
	}
}

func TestUpdateStockCannotGoNegative(t *testing.T) {
	f := seedShop(t)

	_, err := f.inventory.UpdateStock(context.Background(), f.shop.ID, f.chai.ID, "", -21, f.owner.ID)
	var appErr *response.Error
	if !errors.As(err, &appErr) || appErr.Kind != response.KindConflict {
		t.Fatalf("error = %v, want CONFLICT", err)
	}
	if got := f.stockOf(t, f.chai.ID); got != 20 {
		t.Errorf("stock = %d, want 20 unchanged", got)
	}
}

func TestLowStockAlerts(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	// drive biscuits to its minimum of 5
	if _, err := f.inventory.UpdateStock(ctx, f.shop.ID, f.biscuits.ID, "", -5, f.owner.ID); err != nil {
		t.Fatalf("UpdateStock failed: %v", err)
	}

	alerts, err := f.inventory.GetLowStockAlerts(ctx, f.shop.ID)
	if err != nil {
		t.Fatalf("GetLowStockAlerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].ProductID != f.biscuits.ID {
		t.Errorf("alert product = %d, want %d", alerts[0].ProductID, f.biscuits.ID)
	}
	if alerts[0].ProductName != f.biscuits.Name {
		t.Errorf("alert name = %q, want %q", alerts[0].ProductName, f.biscuits.Name)
	}
	if alerts[0].ReorderQuantity != f.biscuits.ReorderQuantity {
		t.Errorf("reorder qty = %d, want %d", alerts[0].ReorderQuantity, f.biscuits.ReorderQuantity)
	}
}

func TestInventorySummary(t *testing.T) {
	f := seedShop(t)

	page, err := f.inventory.GetShopInventory(context.Background(), f.shop.ID, 0, 50)
	if err != nil {
		t.Fatalf("GetShopInventory failed: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("total rows = %d, want 2", page.Total)
	}
	// 20*70 + 10*30
	if !page.Summary.TotalValue.Equal(mustDecimal(t, "1700")) {
		t.Errorf("total value = %s, want 1700", page.Summary.TotalValue)
	}
	if page.Summary.InStockCount != 2 {
		t.Errorf("in stock = %d, want 2", page.Summary.InStockCount)
	}
	if page.Summary.LowStockCount != 0 || page.Summary.OutOfStockCount != 0 {
		t.Errorf("low/out = %d/%d, want 0/0",
			page.Summary.LowStockCount, page.Summary.OutOfStockCount)
	}
}
