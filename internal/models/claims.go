package models

import "github.com/golang-jwt/jwt/v5"

const (
	PermissionSettingsRead  = "settings:read"
	PermissionSettingsWrite = "settings:write"
	PermissionBillingRead   = "billing:read"
	PermissionBillingWrite  = "billing:write"
)

const (
	RoleMerchant = "merchant"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type AccountClaims struct {
	jwt.RegisteredClaims
	AccountID    uint     `json:"account_id"`
	ShopID       uint     `json:"shop_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *AccountClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin, RoleMerchant:
		return []string{
			PermissionSettingsRead,
			PermissionSettingsWrite,
			PermissionBillingRead,
			PermissionBillingWrite,
		}
	case RoleStaff:
		return []string{
			PermissionSettingsRead,
			PermissionSettingsWrite,
		}
	default:
		return []string{}
	}
}
