package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"shipprotect/internal/domain/pricing"
)

// PricingSettings is the persisted pricing policy of a shop.
type PricingSettings struct {
	ID                        uint                                         `gorm:"primarykey" json:"-"`
	ShopID                    uint                                         `gorm:"uniqueIndex;not null" json:"-"`
	PricingType               pricing.PricingType                          `gorm:"size:16;not null" json:"pricing_type"`
	PricingRule               pricing.PricingRule                          `gorm:"size:16;not null" json:"pricing_rule"`
	FlatFixedValue            decimal.Decimal                              `gorm:"type:numeric(12,2);default:0" json:"flat_fixed_value"`
	FlatPercentageValue       decimal.Decimal                              `gorm:"type:numeric(7,3);default:0" json:"flat_percentage_value"`
	FixedTiers                datatypes.JSONType[[]pricing.FixedTier]      `json:"fixed_tiers"`
	PercentageTiers           datatypes.JSONType[[]pricing.PercentageTier] `json:"percentage_tiers"`
	OutOfRangeFixedValue      decimal.Decimal                              `gorm:"type:numeric(12,2);default:0" json:"out_of_range_fixed_value"`
	OutOfRangeDecayPercentage decimal.Decimal                              `gorm:"type:numeric(7,3);default:0" json:"out_of_range_decay_percentage"`
	CreatedAt                 time.Time                                    `json:"-"`
	UpdatedAt                 time.Time                                    `json:"updated_at"`
}

// Policy converts the stored settings to a resolver policy.
func (s *PricingSettings) Policy() pricing.Policy {
	return pricing.Policy{
		Type:                      s.PricingType,
		Rule:                      s.PricingRule,
		FlatFixedValue:            s.FlatFixedValue,
		FlatPercentageValue:       s.FlatPercentageValue,
		FixedTiers:                s.FixedTiers.Data(),
		PercentageTiers:           s.PercentageTiers.Data(),
		OutOfRangeFixedValue:      s.OutOfRangeFixedValue,
		OutOfRangeDecayPercentage: s.OutOfRangeDecayPercentage,
	}
}

// ApplyPolicy copies a resolver policy onto the stored settings.
func (s *PricingSettings) ApplyPolicy(p pricing.Policy) {
	s.PricingType = p.Type
	s.PricingRule = p.Rule
	s.FlatFixedValue = p.FlatFixedValue
	s.FlatPercentageValue = p.FlatPercentageValue
	s.FixedTiers = datatypes.NewJSONType(p.FixedTiers)
	s.PercentageTiers = datatypes.NewJSONType(p.PercentageTiers)
	s.OutOfRangeFixedValue = p.OutOfRangeFixedValue
	s.OutOfRangeDecayPercentage = p.OutOfRangeDecayPercentage
}

// DefaultPricingSettings charges a flat 2% until the merchant configures pricing.
func DefaultPricingSettings(shopID uint) *PricingSettings {
	s := &PricingSettings{ShopID: shopID}
	s.ApplyPolicy(pricing.Policy{
		Type:                pricing.TypePercentage,
		Rule:                pricing.RuleFlat,
		FlatPercentageValue: decimal.NewFromInt(2),
	})
	return s
}
