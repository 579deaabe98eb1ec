package pricing

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// VariantID is a storefront variant identifier. Shopify returns numeric ids
// while the admin stores them as strings, so both decode.
type VariantID string

func (v *VariantID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = VariantID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = VariantID(n.String())
	return nil
}

// VariantMap maps a variant price, as a string key, to its variant id.
type VariantMap map[string]VariantID

// VariantMatch is the variant charged for a fee. The zero value means no
// variant is priced at or above the fee.
type VariantMatch struct {
	Price     decimal.Decimal `json:"price"`
	VariantID VariantID       `json:"variant_id"`
}

func (m VariantMatch) Found() bool {
	return m.VariantID != ""
}

type pricePoint struct {
	price decimal.Decimal
	id    VariantID
}

// FindVariant returns the cheapest variant priced at or above fee. Keys are
// read with ParseAmount, the same as on save; keys that are not a positive
// price are skipped.
func FindVariant(fee decimal.Decimal, variants VariantMap) VariantMatch {
	points := make([]pricePoint, 0, len(variants))
	for key, id := range variants {
		price := ParseAmount(key)
		if !price.IsPositive() || id == "" {
			continue
		}
		points = append(points, pricePoint{price: price, id: id})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].price.Equal(points[j].price) {
			return points[i].id < points[j].id
		}
		return points[i].price.LessThan(points[j].price)
	})

	for _, p := range points {
		if p.price.GreaterThanOrEqual(fee) {
			return VariantMatch{Price: p.price, VariantID: p.id}
		}
	}
	return VariantMatch{Price: decimal.Zero}
}
