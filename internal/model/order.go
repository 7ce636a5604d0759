package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPlaced         = "PLACED"
	OrderStatusAccepted       = "ACCEPTED"
	OrderStatusPacked         = "PACKED"
	OrderStatusOutForDelivery = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      = "DELIVERED"
	OrderStatusCancelled      = "CANCELLED"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusRefunded  = "REFUNDED"
)

// ValidStatusTransitions is the full fulfillment lifecycle. DELIVERED
// and CANCELLED are terminal; any transition not listed here is rejected
// with no side effects.
var ValidStatusTransitions = map[string][]string{
	OrderStatusPlaced:         {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted:       {OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:         {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:      {},
	OrderStatusCancelled:      {},
}

func CanTransitionTo(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidStatusTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// Order is append-only after creation: its status moves through the
// transition table and its monetary history lives in linked ledger,
// GST, cash-book and khata rows. total = subtotal - discount + tax.
type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID      int64  `gorm:"index:idx_order_shop_number,unique;not null" json:"shop_id"`
	OrderNumber string `gorm:"type:varchar(50);index:idx_order_shop_number,unique;not null" json:"order_number"`
	CustomerID  *int64 `gorm:"index" json:"customer_id"` // nil for walk-in sales

	Subtotal       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`

	OrderStatus   string     `gorm:"type:varchar(20);index;not null;default:PLACED" json:"order_status"`
	PaymentStatus string     `gorm:"type:varchar(20);not null;default:PENDING" json:"payment_status"`
	DeliveryDate  *time.Time `json:"delivery_date,omitempty"`

	CustomerName    string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone   string `gorm:"type:varchar(20)" json:"customer_phone"`
	ShippingAddress string `gorm:"type:text" json:"shipping_address"`

	IsCreditSale       bool `gorm:"not null;default:false" json:"is_credit_sale"`
	CreditDurationDays int  `json:"credit_duration_days,omitempty"`

	CreatedBy int64  `gorm:"not null" json:"created_by"`
	Notes     string `gorm:"type:text" json:"notes"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	OrderDate time.Time `gorm:"autoCreateTime;index" json:"order_date"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "shop_order"
}

// OrderItem snapshots product name, price and GST rate at time of sale
// so later catalog edits never alter a historical order.
// line_total = unit_price*quantity + gst_amount - discount_on_item.
type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"index;not null" json:"order_id"`
	ShopID    int64 `gorm:"index:idx_item_shop_product" json:"shop_id"`
	ProductID int64 `gorm:"index:idx_item_shop_product;not null" json:"product_id"`

	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`

	GSTRate        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_rate"`
	GSTAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"gst_amount"`
	DiscountOnItem decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"discount_on_item"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"line_total"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_item"
}
