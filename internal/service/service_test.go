package service

import (
	"fmt"
	"strings"
	"testing"

	"shopledger/internal/auth"
	"shopledger/internal/config"
	"shopledger/internal/infrastructure/database"
	"shopledger/internal/model"
	"shopledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	config.GlobalConfig = &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{AccountingEvents: "test.accounting.events"},
		},
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

type fixture struct {
	db        *gorm.DB
	shop      *model.Shop
	owner     *model.User
	customer  *model.User
	chai      *model.Product
	biscuits  *model.Product
	orders    *OrderService
	inventory *InventoryService
	accounts  *AccountingService
	reports   *ReportService
}

// seedShop creates one shop with two products in stock: chai at 100.00
// with 5% GST (20 on hand) and biscuits at 50.00 with 12% GST (10 on
// hand).
func seedShop(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	shop := &model.Shop{Name: "Sharma General Store", Email: "sharma@example.com", Phone: "9800000001"}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("failed to create shop: %v", err)
	}

	owner := &model.User{ShopID: shop.ID, Phone: "9800000002", Name: "Asha Sharma", Role: model.RoleOwner, IsActive: true}
	customer := &model.User{ShopID: shop.ID, Phone: "9800000003", Name: "Ravi Kumar", Role: model.RoleCustomer, IsActive: true}
	for _, u := range []*model.User{owner, customer} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	chai := &model.Product{
		ShopID: shop.ID, SKU: "CHAI-250", Name: "Chai 250g",
		CostPrice:    decimal.NewFromInt(70),
		SellingPrice: decimal.NewFromInt(100),
		MRP:          decimal.NewFromInt(110),
		GSTRate:      decimal.NewFromInt(5),
		IsActive:     true, ReorderQuantity: 24,
	}
	biscuits := &model.Product{
		ShopID: shop.ID, SKU: "BISC-100", Name: "Biscuits 100g",
		CostPrice:    decimal.NewFromInt(30),
		SellingPrice: decimal.NewFromInt(50),
		MRP:          decimal.NewFromInt(55),
		GSTRate:      decimal.NewFromInt(12),
		IsActive:     true, ReorderQuantity: 48,
	}
	for _, p := range []*model.Product{chai, biscuits} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("failed to create product: %v", err)
		}
	}

	stock := []*model.Inventory{
		{ShopID: shop.ID, ProductID: chai.ID, Quantity: 20, MinQuantity: 5,
			CostPrice: chai.CostPrice, SellingPrice: chai.SellingPrice},
		{ShopID: shop.ID, ProductID: biscuits.ID, Quantity: 10, MinQuantity: 5,
			CostPrice: biscuits.CostPrice, SellingPrice: biscuits.SellingPrice},
	}
	for _, inv := range stock {
		if err := db.Create(inv).Error; err != nil {
			t.Fatalf("failed to create inventory: %v", err)
		}
	}

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	accountingRepo := repository.NewAccountingRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	accounts := NewAccountingService(db, accountingRepo, outboxRepo)
	return &fixture{
		db:        db,
		shop:      shop,
		owner:     owner,
		customer:  customer,
		chai:      chai,
		biscuits:  biscuits,
		orders:    NewOrderService(db, orderRepo, productRepo, inventoryRepo, accounts),
		inventory: NewInventoryService(db, inventoryRepo, productRepo),
		accounts:  accounts,
		reports:   NewReportService(orderRepo, accountingRepo, productRepo),
	}
}

func (f *fixture) ownerActor() auth.Actor {
	return auth.Actor{UserID: f.owner.ID, ShopID: f.shop.ID, Role: f.owner.Role, Name: f.owner.Name}
}

func (f *fixture) customerActor() auth.Actor {
	return auth.Actor{UserID: f.customer.ID, ShopID: f.shop.ID, Role: f.customer.Role, Name: f.customer.Name}
}

func (f *fixture) stockOf(t *testing.T, productID int64) int {
	t.Helper()
	var inv model.Inventory
	if err := f.db.Where("shop_id = ? AND product_id = ?", f.shop.ID, productID).First(&inv).Error; err != nil {
		t.Fatalf("failed to read inventory: %v", err)
	}
	return inv.Quantity
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
