package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProtectedOrder records a checkout that included the protection variant.
// A shop records each cart at most once.
type ProtectedOrder struct {
	gorm.Model
	ShopID        uint              `gorm:"uniqueIndex:idx_protected_orders_shop_cart,priority:1;not null" json:"shop_id"`
	Reference     string            `gorm:"uniqueIndex;not null" json:"reference"`
	CartToken     string            `gorm:"uniqueIndex:idx_protected_orders_shop_cart,priority:2;not null" json:"cart_token"`
	VariantID     string            `json:"variant_id"`
	Fee           decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"fee"`
	Currency      string            `gorm:"size:3" json:"currency"`
	BilledAt      *time.Time        `json:"billed_at,omitempty"`
	InvoiceItemID string            `json:"invoice_item_id,omitempty"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty"`
}

func (o *ProtectedOrder) Billed() bool {
	return o.BilledAt != nil
}
