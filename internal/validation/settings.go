package validation

import (
	"fmt"

	"shipprotect/internal/domain/pricing"
	"shipprotect/internal/models"
)

// Policy validates a pricing policy before it is saved. Only the fields of
// the active type/rule combination are checked. Overlapping tiers are
// rejected here even though the resolver itself tolerates them.
func (v *Validator) Policy(p pricing.Policy) {
	v.Check(p.Type.Valid(), "pricing_type", "must be fixed or percentage")
	v.Check(p.Rule.Valid(), "pricing_rule", "must be flat or tiered")
	if !v.Valid() {
		return
	}

	switch {
	case p.Type == pricing.TypeFixed && p.Rule == pricing.RuleFlat:
		v.NonNegative("flat_fixed_value", p.FlatFixedValue)

	case p.Type == pricing.TypePercentage && p.Rule == pricing.RuleFlat:
		v.Percentage("flat_percentage_value", p.FlatPercentageValue)

	case p.Type == pricing.TypeFixed && p.Rule == pricing.RuleTiered:
		v.Check(len(p.FixedTiers) > 0, "fixed_tiers", "must contain at least one tier")
		v.Check(len(p.FixedTiers) <= MaxTiers, "fixed_tiers", fmt.Sprintf("must not have more than %d tiers", MaxTiers))
		if err := pricing.ValidateFixedTiers(p.FixedTiers); err != nil {
			v.AddError("fixed_tiers", err.Error())
		}
		v.NonNegative("out_of_range_fixed_value", p.OutOfRangeFixedValue)

	case p.Type == pricing.TypePercentage && p.Rule == pricing.RuleTiered:
		v.Check(len(p.PercentageTiers) > 0, "percentage_tiers", "must contain at least one tier")
		v.Check(len(p.PercentageTiers) <= MaxTiers, "percentage_tiers", fmt.Sprintf("must not have more than %d tiers", MaxTiers))
		if err := pricing.ValidatePercentageTiers(p.PercentageTiers); err != nil {
			v.AddError("percentage_tiers", err.Error())
		}
		for i, t := range p.PercentageTiers {
			v.Percentage(fmt.Sprintf("percentage_tiers[%d].percentage", i), t.Percentage)
		}
		v.Percentage("out_of_range_decay_percentage", p.OutOfRangeDecayPercentage)
	}
}

// Widget validates cart display settings.
func (v *Validator) Widget(w *models.WidgetSettings) {
	v.MaxLength("addon_title", w.AddonTitle, MaxTitleLength)
	v.MaxLength("enabled_desc", w.EnabledDesc, MaxDescriptionLength)
	v.MaxLength("disabled_desc", w.DisabledDesc, MaxDescriptionLength)
	v.MaxLength("foot_text", w.FootText, MaxFooterLength)
	v.HexColor("in_color", w.InColor)
	v.HexColor("out_color", w.OutColor)
	v.HTTPURL("foot_url", w.FootURL)
	if w.Enabled {
		v.Required("addon_title", w.AddonTitle)
	}
}

// Variants validates the protection product and its price ladder.
func (v *Validator) Variants(productID string, variants pricing.VariantMap) {
	v.Required("product_id", productID)
	v.Check(len(variants) > 0, "variants", "must contain at least one variant")
	for price, id := range variants {
		field := fmt.Sprintf("variants[%s]", price)
		if !pricing.ParseAmount(price).IsPositive() {
			v.AddError(field, "price must be a positive amount")
		}
		v.Check(id != "", field, "variant id must not be empty")
	}
}
