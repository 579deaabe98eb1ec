package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ResolveFee returns the protection fee for a cart subtotal in major units.
//
// Tiers are scanned in list order and the first tier whose half-open range
// [Min, Max) holds the subtotal wins; overlapping tiers are not rejected here.
// The result is never negative. An unknown type/rule combination yields zero.
func ResolveFee(subtotal decimal.Decimal, p Policy) decimal.Decimal {
	subtotal = nonNegative(subtotal)

	switch {
	case p.Type == TypeFixed && p.Rule == RuleFlat:
		return nonNegative(p.FlatFixedValue)

	case p.Type == TypeFixed && p.Rule == RuleTiered:
		for _, tier := range p.FixedTiers {
			if tier.contains(subtotal) {
				return nonNegative(tier.Price)
			}
		}
		return nonNegative(p.OutOfRangeFixedValue)

	case p.Type == TypePercentage && p.Rule == RuleFlat:
		return nonNegative(percentOf(subtotal, p.FlatPercentageValue))

	case p.Type == TypePercentage && p.Rule == RuleTiered:
		for _, tier := range p.PercentageTiers {
			if tier.contains(subtotal) {
				return nonNegative(percentOf(subtotal, tier.Percentage))
			}
		}
		return nonNegative(percentOf(subtotal, p.OutOfRangeDecayPercentage))
	}

	return decimal.Zero
}

// Resolver binds a policy to the currency fees are quoted in.
type Resolver struct {
	policy   Policy
	currency string
}

func NewResolver(policy Policy, currency string) *Resolver {
	return &Resolver{
		policy:   policy,
		currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
}

func (r *Resolver) Policy() Policy {
	return r.policy
}

func (r *Resolver) Resolve(subtotal decimal.Decimal) ResolvedFee {
	return ResolvedFee{
		Amount:   ResolveFee(subtotal, r.policy),
		Currency: r.currency,
	}
}
