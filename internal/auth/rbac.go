package auth

import (
	"shopledger/internal/model"
)

// Permission names a resource-level capability checked by handlers.
type Permission string

const (
	PermOrderCreate    Permission = "order:create"
	PermOrderRead      Permission = "order:read"
	PermOrderManage    Permission = "order:manage"
	PermInventoryRead  Permission = "inventory:read"
	PermInventoryWrite Permission = "inventory:write"
	PermAccountingRead Permission = "accounting:read"
	PermKhataReadOwn   Permission = "khata:read-own"
	PermCartUse        Permission = "cart:use"
	PermForecastRead   Permission = "forecast:read"
)

// rolePermissions is the single authorization table. Every endpoint
// consults it through Can; there are no scattered role conditionals.
var rolePermissions = map[string]map[Permission]bool{
	model.RoleCustomer: {
		PermOrderCreate:  true, // self only, enforced by the order engine
		PermOrderRead:    true, // own orders only
		PermKhataReadOwn: true,
		PermCartUse:      true,
	},
	model.RoleStaff: {
		PermOrderCreate:    true,
		PermOrderRead:      true,
		PermOrderManage:    true,
		PermInventoryRead:  true,
		PermInventoryWrite: true,
		PermAccountingRead: true,
		PermForecastRead:   true,
	},
	model.RoleOwner: {
		PermOrderCreate:    true,
		PermOrderRead:      true,
		PermOrderManage:    true,
		PermInventoryRead:  true,
		PermInventoryWrite: true,
		PermAccountingRead: true,
		PermForecastRead:   true,
	},
	model.RoleAdmin: {
		PermOrderRead:      true,
		PermOrderManage:    true,
		PermInventoryRead:  true,
		PermInventoryWrite: true,
		PermAccountingRead: true,
		PermForecastRead:   true,
	},
}

// Can reports whether the actor's role holds the permission.
func Can(actor Actor, perm Permission) bool {
	perms, ok := rolePermissions[actor.Role]
	if !ok {
		return false
	}
	return perms[perm]
}

// CanAccessShop enforces tenant scope: admins reach every shop, every
// other role only its own.
func CanAccessShop(actor Actor, shopID int64) bool {
	if actor.Role == model.RoleAdmin {
		return true
	}
	return actor.ShopID == shopID
}
