package repositories

import (
	"context"
	"strings"

	"shipprotect/internal/models"

	"gorm.io/gorm"
)

// ShopRepository defines the interface for shop persistence
type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	GetByID(ctx context.Context, id uint) (*models.Shop, error)
	// GetByDomain matches the myshopify domain case-insensitively.
	GetByDomain(ctx context.Context, domain string) (*models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// NormalizeDomain lower-cases and trims a shop domain.
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

func (r *shopRepository) Create(ctx context.Context, shop *models.Shop) error {
	shop.Domain = NormalizeDomain(shop.Domain)
	return translate(r.db.WithContext(ctx).Create(shop).Error)
}

func (r *shopRepository) GetByID(ctx context.Context, id uint) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

func (r *shopRepository) GetByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("domain = ?", NormalizeDomain(domain)).First(&shop).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

func (r *shopRepository) Update(ctx context.Context, shop *models.Shop) error {
	return translate(r.db.WithContext(ctx).Save(shop).Error)
}
