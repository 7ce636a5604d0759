package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the shop-scoped catalog entry. Pricing and GST rate live
// here; stock on hand lives in Inventory, keyed per batch.
type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID      int64  `gorm:"index:idx_product_shop_sku,unique;not null" json:"shop_id"`
	SKU         string `gorm:"type:varchar(100);index:idx_product_shop_sku,unique;not null" json:"sku"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:varchar(100)" json:"category"`
	Unit        string `gorm:"type:varchar(50)" json:"unit"`

	CostPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"selling_price"`
	MRP          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"mrp"`
	GSTRate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_rate"`
	HSNCode      string          `gorm:"type:varchar(8)" json:"hsn_code"`

	MinStockLevel   int `gorm:"not null;default:10" json:"min_stock_level"`
	MaxStockLevel   int `json:"max_stock_level"`
	ReorderQuantity int `json:"reorder_quantity"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}
