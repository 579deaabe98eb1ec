package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TierError describes the first malformed tier found in a list.
// Other is -1 unless the problem is an overlap with another tier.
type TierError struct {
	Index  int
	Other  int
	Reason string
}

func (e *TierError) Error() string {
	if e.Other >= 0 {
		return fmt.Sprintf("tier %d %s tier %d", e.Index+1, e.Reason, e.Other+1)
	}
	return fmt.Sprintf("tier %d %s", e.Index+1, e.Reason)
}

type bounds struct {
	min, max decimal.Decimal
}

func ValidateFixedTiers(tiers []FixedTier) error {
	b := make([]bounds, len(tiers))
	for i, t := range tiers {
		if t.Price.IsNegative() {
			return &TierError{Index: i, Other: -1, Reason: "has a negative price"}
		}
		b[i] = bounds{t.Min, t.Max}
	}
	return validateBounds(b)
}

func ValidatePercentageTiers(tiers []PercentageTier) error {
	b := make([]bounds, len(tiers))
	for i, t := range tiers {
		if t.Percentage.IsNegative() {
			return &TierError{Index: i, Other: -1, Reason: "has a negative percentage"}
		}
		b[i] = bounds{t.Min, t.Max}
	}
	return validateBounds(b)
}

// validateBounds checks each half-open range is non-empty and disjoint from
// every earlier one. Two ranges [a, b) and [c, d) overlap iff a < d && c < b.
func validateBounds(b []bounds) error {
	for i, cur := range b {
		if cur.min.IsNegative() {
			return &TierError{Index: i, Other: -1, Reason: "has a negative minimum"}
		}
		if !cur.min.LessThan(cur.max) {
			return &TierError{Index: i, Other: -1, Reason: "has a minimum not below its maximum"}
		}
		for j := 0; j < i; j++ {
			prev := b[j]
			if cur.min.LessThan(prev.max) && prev.min.LessThan(cur.max) {
				return &TierError{Index: i, Other: j, Reason: "overlaps"}
			}
		}
	}
	return nil
}
