package pricing

import "strings"

// CurrencyPolicy decides whether protection is offered in a store currency.
type CurrencyPolicy interface {
	Supports(currency string) bool
}

// AllowList supports a fixed set of ISO currency codes, case-insensitively.
type AllowList map[string]struct{}

func NewAllowList(codes ...string) AllowList {
	a := make(AllowList, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			a[c] = struct{}{}
		}
	}
	return a
}

func (a AllowList) Supports(currency string) bool {
	_, ok := a[strings.ToUpper(strings.TrimSpace(currency))]
	return ok
}
