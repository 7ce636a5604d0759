package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MovementTypeInbound    = "INBOUND"
	MovementTypeSale       = "SALE"
	MovementTypeRestore    = "RESTORE"
	MovementTypeAdjustment = "ADJUSTMENT"
)

// Inventory tracks stock on hand per (shop, product, batch). BatchNo is
// empty for unbatched stock; the unique index treats that as one batch.
// Quantity must never go negative: every deduction is a conditional
// UPDATE guarded by `quantity >= ?`.
type Inventory struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID    int64  `gorm:"index:idx_inventory_spb,unique;not null" json:"shop_id"`
	ProductID int64  `gorm:"index:idx_inventory_spb,unique;not null" json:"product_id"`
	BatchNo   string `gorm:"type:varchar(100);index:idx_inventory_spb,unique;not null;default:''" json:"batch_no"`

	Quantity    int `gorm:"not null;default:0" json:"quantity"`
	MinQuantity int `gorm:"not null;default:10" json:"min_quantity"`

	// Per-shop price overrides; fall back to Product when zero.
	CostPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"selling_price"`

	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"last_updated"`
}

func (Inventory) TableName() string {
	return "inventory"
}

// StockMovement is the append-only audit trail of every quantity change.
type StockMovement struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID        int64     `gorm:"index;not null" json:"shop_id"`
	ProductID     int64     `gorm:"index;not null" json:"product_id"`
	MovementType  string    `gorm:"type:varchar(20);not null" json:"movement_type"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	ReferenceType string    `gorm:"type:varchar(50);index:idx_movement_ref" json:"reference_type"`
	ReferenceID   int64     `gorm:"index:idx_movement_ref" json:"reference_id"`
	Notes         string    `gorm:"type:varchar(255)" json:"notes"`
	MovedBy       int64     `json:"moved_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movement"
}
