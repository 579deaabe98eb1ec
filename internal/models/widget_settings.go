package models

import "time"

// WidgetSettings controls how the protection opt-in renders in the cart.
// The booleans carry no column defaults: gorm would write the default in
// place of false. DefaultWidgetSettings supplies the initial values.
type WidgetSettings struct {
	ID           uint      `gorm:"primarykey" json:"-"`
	ShopID       uint      `gorm:"uniqueIndex;not null" json:"-"`
	Enabled      bool      `json:"enabled"`
	ShowCartIcon bool      `json:"show_cart_icon"`
	Icon         string    `json:"icon"`
	AddonTitle   string    `json:"addon_title"`
	EnabledDesc  string    `json:"enabled_desc"`
	DisabledDesc string    `json:"disabled_desc"`
	InColor      string    `gorm:"size:16" json:"in_color"`
	OutColor     string    `gorm:"size:16" json:"out_color"`
	SelectButton bool      `json:"select_button"` // opted in by default
	FootText     string    `json:"foot_text"`
	FootURL      string    `json:"foot_url"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func DefaultWidgetSettings(shopID uint) *WidgetSettings {
	return &WidgetSettings{
		ShopID:       shopID,
		Enabled:      true,
		ShowCartIcon: true,
		Icon:         "shield",
		AddonTitle:   "Shipping Protection",
		EnabledDesc:  "Protect your order from loss, theft or damage in transit.",
		DisabledDesc: "Your order is not protected.",
		InColor:      "#2E7D32",
		OutColor:     "#9E9E9E",
		SelectButton: true,
	}
}
