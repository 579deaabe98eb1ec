package pricing

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a monetary or percentage field the way the storefront
// and admin forms do: anything that does not parse is zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromMinorUnits converts an integer amount in cents to major units.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToMinorUnits converts a major-unit amount to cents, rounding half-up.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// percentOf returns subtotal*pct/100 rounded to cents. decimal.Round rounds
// half away from zero, which is half-up for the non-negative inputs used here.
func percentOf(subtotal, pct decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(pct).Div(hundred).Round(2)
}

// Amount is a permissively decoded numeric field. JSON strings, numbers and
// null all decode; Decimal applies ParseAmount.
type Amount string

func AmountOf(d decimal.Decimal) Amount {
	return Amount(d.String())
}

func (a Amount) Decimal() decimal.Decimal {
	return ParseAmount(string(a))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		// Numbers and stray literals such as true are kept verbatim and
		// parse to zero later if they are not numeric.
		*a = Amount(data)
	}
	return nil
}
