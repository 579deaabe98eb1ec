package models

import (
	"time"

	"gorm.io/datatypes"

	"shipprotect/internal/domain/pricing"
)

// ProtectionProduct is the storefront product whose variants carry the fee.
type ProtectionProduct struct {
	ID        uint                                   `gorm:"primarykey" json:"-"`
	ShopID    uint                                   `gorm:"uniqueIndex;not null" json:"-"`
	ProductID string                                 `json:"product_id"`
	Variants  datatypes.JSONType[pricing.VariantMap] `json:"variants"`
	CreatedAt time.Time                              `json:"-"`
	UpdatedAt time.Time                              `json:"updated_at"`
}

func (p *ProtectionProduct) VariantMap() pricing.VariantMap {
	return p.Variants.Data()
}
