package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// Account is a merchant login for the admin app.
type Account struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	Password     string `gorm:"not null" json:"-"`
	ShopID       uint   `gorm:"index;not null"`
	Shop         *Shop  `gorm:"foreignKey:ShopID" json:",omitempty"`
	Role         string `gorm:"default:'merchant'"`
	Status       string `gorm:"default:'active'"`
	LastLoginAt  *time.Time
	TokenVersion int `gorm:"default:1"`
}
