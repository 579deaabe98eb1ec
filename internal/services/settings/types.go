package settings

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"shipprotect/internal/domain/pricing"
	"shipprotect/internal/models"
)

// Settings is everything the admin app edits for one shop.
type Settings struct {
	Pricing *models.PricingSettings   `json:"pricing"`
	Widget  *models.WidgetSettings    `json:"widget"`
	Product *models.ProtectionProduct `json:"product"`
}

// TierInput is a tier as typed into the admin form.
type TierInput struct {
	Min        pricing.Amount `json:"min"`
	Max        pricing.Amount `json:"max"`
	Price      pricing.Amount `json:"price"`
	Percentage pricing.Amount `json:"percentage"`
}

// PricingInput is the PUT /api/admin/settings/pricing body. Numeric fields
// arrive as strings or numbers; anything unparseable counts as zero.
type PricingInput struct {
	PricingType               string         `json:"pricing_type"`
	PricingRule               string         `json:"pricing_rule"`
	FlatFixedValue            pricing.Amount `json:"flat_fixed_value"`
	FlatPercentageValue       pricing.Amount `json:"flat_percentage_value"`
	FixedTiers                []TierInput    `json:"fixed_tiers"`
	PercentageTiers           []TierInput    `json:"percentage_tiers"`
	OutOfRangeFixedValue      pricing.Amount `json:"out_of_range_fixed_value"`
	OutOfRangeDecayPercentage pricing.Amount `json:"out_of_range_decay_percentage"`
}

func (in PricingInput) Policy() pricing.Policy {
	return pricing.Policy{
		Type:                pricing.ParsePricingType(in.PricingType),
		Rule:                pricing.ParsePricingRule(in.PricingRule),
		FlatFixedValue:      in.FlatFixedValue.Decimal(),
		FlatPercentageValue: in.FlatPercentageValue.Decimal(),
		FixedTiers: lo.Map(in.FixedTiers, func(t TierInput, _ int) pricing.FixedTier {
			return pricing.FixedTier{Min: t.Min.Decimal(), Max: t.Max.Decimal(), Price: t.Price.Decimal()}
		}),
		PercentageTiers: lo.Map(in.PercentageTiers, func(t TierInput, _ int) pricing.PercentageTier {
			return pricing.PercentageTier{Min: t.Min.Decimal(), Max: t.Max.Decimal(), Percentage: t.Percentage.Decimal()}
		}),
		OutOfRangeFixedValue:      in.OutOfRangeFixedValue.Decimal(),
		OutOfRangeDecayPercentage: in.OutOfRangeDecayPercentage.Decimal(),
	}
}

// VariantsInput replaces the protection product and its price ladder.
type VariantsInput struct {
	ProductID string             `json:"product_id"`
	Variants  pricing.VariantMap `json:"variants"`
}

// PreviewInput drives the admin fee calculator. Without a draft the saved
// policy is used.
type PreviewInput struct {
	Subtotal pricing.Amount `json:"subtotal"`
	Draft    *PricingInput  `json:"draft,omitempty"`
}

type Preview struct {
	Subtotal decimal.Decimal      `json:"subtotal"`
	Fee      decimal.Decimal      `json:"fee"`
	Currency string               `json:"currency"`
	Variant  pricing.VariantMatch `json:"variant"`
}
