// Package plugin defines the storefront configuration payload shared by the
// config endpoint and the storefront session client.
package plugin

import (
	"strings"

	"shipprotect/internal/domain/pricing"
	"shipprotect/internal/models"
)

// Tier is a pricing band as sent to the storefront. Fixed bands carry Price,
// percentage bands carry Percentage.
type Tier struct {
	Min        pricing.Amount `json:"min"`
	Max        pricing.Amount `json:"max"`
	Price      pricing.Amount `json:"price,omitempty"`
	Percentage pricing.Amount `json:"percentage,omitempty"`
}

// Config is the `data` object of POST /api/plugin/config.
//
// FlatValue is the flat fixed fee or flat percentage, and OtherMoney the
// out-of-range fixed fee or decay percentage, depending on PricingType.
type Config struct {
	Shop         string             `json:"shop"`
	Currency     string             `json:"currency"`
	PricingType  string             `json:"pricing_type"`
	PricingRule  string             `json:"pricing_rule"`
	FlatValue    pricing.Amount     `json:"flat_value"`
	PriceSelect  []Tier             `json:"price_select"`
	TiersSelect  []Tier             `json:"tiers_select"`
	OtherMoney   pricing.Amount     `json:"other_money"`
	ShowCartIcon bool               `json:"show_cart_icon"`
	Icon         string             `json:"icon"`
	AddonTitle   string             `json:"addon_title"`
	EnabledDesc  string             `json:"enabled_desc"`
	DisabledDesc string             `json:"disabled_desc"`
	InColor      string             `json:"in_color"`
	OutColor     string             `json:"out_color"`
	SelectButton bool               `json:"select_button"`
	FootText     string             `json:"foot_text"`
	FootURL      string             `json:"foot_url"`
	ProductID    string             `json:"product_id"`
	Variants     pricing.VariantMap `json:"variants"`
}

// FromSettings assembles the payload for a shop. product may be nil when the
// merchant has not linked a protection product yet.
func FromSettings(shop *models.Shop, ps *models.PricingSettings, ws *models.WidgetSettings, product *models.ProtectionProduct) Config {
	p := ps.Policy()

	cfg := Config{
		Shop:         shop.Domain,
		Currency:     strings.ToUpper(shop.Currency),
		PricingType:  string(p.Type),
		PricingRule:  string(p.Rule),
		PriceSelect:  make([]Tier, 0, len(p.FixedTiers)),
		TiersSelect:  make([]Tier, 0, len(p.PercentageTiers)),
		ShowCartIcon: ws.ShowCartIcon,
		Icon:         ws.Icon,
		AddonTitle:   ws.AddonTitle,
		EnabledDesc:  ws.EnabledDesc,
		DisabledDesc: ws.DisabledDesc,
		InColor:      ws.InColor,
		OutColor:     ws.OutColor,
		SelectButton: ws.SelectButton,
		FootText:     ws.FootText,
		FootURL:      ws.FootURL,
		Variants:     pricing.VariantMap{},
	}

	if p.Type == pricing.TypePercentage {
		cfg.FlatValue = pricing.AmountOf(p.FlatPercentageValue)
		cfg.OtherMoney = pricing.AmountOf(p.OutOfRangeDecayPercentage)
	} else {
		cfg.FlatValue = pricing.AmountOf(p.FlatFixedValue)
		cfg.OtherMoney = pricing.AmountOf(p.OutOfRangeFixedValue)
	}

	for _, t := range p.FixedTiers {
		cfg.PriceSelect = append(cfg.PriceSelect, Tier{
			Min:   pricing.AmountOf(t.Min),
			Max:   pricing.AmountOf(t.Max),
			Price: pricing.AmountOf(t.Price),
		})
	}
	for _, t := range p.PercentageTiers {
		cfg.TiersSelect = append(cfg.TiersSelect, Tier{
			Min:        pricing.AmountOf(t.Min),
			Max:        pricing.AmountOf(t.Max),
			Percentage: pricing.AmountOf(t.Percentage),
		})
	}

	if product != nil {
		cfg.ProductID = product.ProductID
		for price, id := range product.VariantMap() {
			cfg.Variants[price] = id
		}
	}
	return cfg
}

// Policy rebuilds the resolver policy; malformed numbers become zero.
func (c Config) Policy() pricing.Policy {
	p := pricing.Policy{
		Type: pricing.ParsePricingType(c.PricingType),
		Rule: pricing.ParsePricingRule(c.PricingRule),
	}

	if p.Type == pricing.TypePercentage {
		p.FlatPercentageValue = c.FlatValue.Decimal()
		p.OutOfRangeDecayPercentage = c.OtherMoney.Decimal()
	} else {
		p.FlatFixedValue = c.FlatValue.Decimal()
		p.OutOfRangeFixedValue = c.OtherMoney.Decimal()
	}

	for _, t := range c.PriceSelect {
		p.FixedTiers = append(p.FixedTiers, pricing.FixedTier{
			Min:   t.Min.Decimal(),
			Max:   t.Max.Decimal(),
			Price: t.Price.Decimal(),
		})
	}
	for _, t := range c.TiersSelect {
		p.PercentageTiers = append(p.PercentageTiers, pricing.PercentageTier{
			Min:        t.Min.Decimal(),
			Max:        t.Max.Decimal(),
			Percentage: t.Percentage.Decimal(),
		})
	}
	return p
}

// Response is the envelope returned by the config endpoint.
type Response struct {
	Code    int     `json:"code"`
	Message string  `json:"message"`
	Data    *Config `json:"data"`
}
