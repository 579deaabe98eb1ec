package cache

import (
	"fmt"
	"strings"
)

type EntityType string

const (
	EntityShop         EntityType = "shop"
	EntityPluginConfig EntityType = "plugin_config"
	EntityAccount      EntityType = "account"
)

type KeyType string

const (
	KeyID     KeyType = "id"
	KeyDomain KeyType = "domain"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

// PluginConfigKey is the cache key of a shop's storefront payload.
// Shop domains are case-insensitive.
func PluginConfigKey(domain string) string {
	return GenerateKey(EntityPluginConfig, KeyDomain, strings.ToLower(strings.TrimSpace(domain)))
}
