package model

import (
	"time"
)

const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
	RoleOwner    = "OWNER"
	RoleAdmin    = "ADMIN"
)

// Shop is the tenant root. Every domain row is scoped to a shop.
type Shop struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Email     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string     `gorm:"type:varchar(20);not null" json:"phone"`
	Address   string     `gorm:"type:text" json:"address"`
	City      string     `gorm:"type:varchar(100)" json:"city"`
	State     string     `gorm:"type:varchar(100)" json:"state"`
	Pincode   string     `gorm:"type:varchar(10)" json:"pincode"`
	GSTNumber string     `gorm:"type:varchar(15)" json:"gst_number"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Shop) TableName() string {
	return "shop"
}

// User covers customers, staff, owners and platform admins.
// Staff and owners belong to exactly one shop; admins see every shop.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID    int64     `gorm:"index:idx_user_shop_phone,unique;not null" json:"shop_id"`
	Phone     string    `gorm:"type:varchar(20);index:idx_user_shop_phone,unique;not null" json:"phone"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Role      string    `gorm:"type:varchar(20);index;not null;default:CUSTOMER" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
