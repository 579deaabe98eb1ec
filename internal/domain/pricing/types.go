// Package pricing resolves the shipping protection fee charged for a cart
// and maps that fee onto the discrete protection variants a shop sells.
//
// The same resolver backs the admin preview calculator, the storefront
// config/quote endpoints and the storefront session driver.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type PricingType string
type PricingRule string

const (
	TypeFixed      PricingType = "fixed"
	TypePercentage PricingType = "percentage"

	RuleFlat   PricingRule = "flat"
	RuleTiered PricingRule = "tiered"
)

var (
	ErrUnknownPricingType = errors.New("unknown pricing type")
	ErrUnknownPricingRule = errors.New("unknown pricing rule")
)

// ParsePricingType accepts the admin form spellings ("FIXED", "fixed", " Fixed ").
func ParsePricingType(s string) PricingType {
	return PricingType(strings.ToLower(strings.TrimSpace(s)))
}

func ParsePricingRule(s string) PricingRule {
	return PricingRule(strings.ToLower(strings.TrimSpace(s)))
}

func (t PricingType) Valid() bool {
	return t == TypeFixed || t == TypePercentage
}

func (r PricingRule) Valid() bool {
	return r == RuleFlat || r == RuleTiered
}

// FixedTier charges Price when Min <= subtotal < Max.
type FixedTier struct {
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`
	Price decimal.Decimal `json:"price"`
}

// PercentageTier charges Percentage of the subtotal when Min <= subtotal < Max.
type PercentageTier struct {
	Min        decimal.Decimal `json:"min"`
	Max        decimal.Decimal `json:"max"`
	Percentage decimal.Decimal `json:"percentage"`
}

func (t FixedTier) contains(subtotal decimal.Decimal) bool {
	return inRange(t.Min, t.Max, subtotal)
}

func (t PercentageTier) contains(subtotal decimal.Decimal) bool {
	return inRange(t.Min, t.Max, subtotal)
}

func inRange(min, max, v decimal.Decimal) bool {
	return min.LessThanOrEqual(v) && v.LessThan(max)
}

// Policy is a merchant's pricing configuration. Exactly one of the four
// type/rule combinations is active; the fields of the other three are ignored.
type Policy struct {
	Type PricingType `json:"pricing_type"`
	Rule PricingRule `json:"pricing_rule"`

	FlatFixedValue      decimal.Decimal `json:"flat_fixed_value"`
	FlatPercentageValue decimal.Decimal `json:"flat_percentage_value"`

	FixedTiers      []FixedTier      `json:"fixed_tiers"`
	PercentageTiers []PercentageTier `json:"percentage_tiers"`

	OutOfRangeFixedValue      decimal.Decimal `json:"out_of_range_fixed_value"`
	OutOfRangeDecayPercentage decimal.Decimal `json:"out_of_range_decay_percentage"`
}

// Validate reports whether the policy names a known type/rule combination.
func (p Policy) Validate() error {
	if !p.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPricingType, p.Type)
	}
	if !p.Rule.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPricingRule, p.Rule)
	}
	return nil
}

// ResolvedFee is derived per subtotal change and never persisted.
type ResolvedFee struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}
