package models

import (
	"gorm.io/gorm"
)

const (
	ShopStatusActive    = "active"
	ShopStatusSuspended = "suspended"
)

// Shop is a merchant store that installed the app.
type Shop struct {
	gorm.Model
	Domain           string `gorm:"uniqueIndex;not null"` // e.g. example.myshopify.com
	Name             string
	Currency         string `gorm:"size:3;default:'USD'"`
	Status           string `gorm:"default:'active'"`
	StripeCustomerID string
}

func (s *Shop) Active() bool {
	return s.Status == ShopStatusActive
}
