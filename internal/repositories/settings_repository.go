package repositories

import (
	"context"

	"shipprotect/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository persists the per-shop pricing, widget and product
// configuration. Each shop has at most one row of each.
type SettingsRepository interface {
	GetPricing(ctx context.Context, shopID uint) (*models.PricingSettings, error)
	SavePricing(ctx context.Context, settings *models.PricingSettings) error

	GetWidget(ctx context.Context, shopID uint) (*models.WidgetSettings, error)
	SaveWidget(ctx context.Context, settings *models.WidgetSettings) error

	GetProduct(ctx context.Context, shopID uint) (*models.ProtectionProduct, error)
	SaveProduct(ctx context.Context, product *models.ProtectionProduct) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// upsertOnShop replaces every column of the shop's existing row.
func upsertOnShop(db *gorm.DB, value interface{}) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}},
		UpdateAll: true,
	}).Create(value)
}

func (r *settingsRepository) GetPricing(ctx context.Context, shopID uint) (*models.PricingSettings, error) {
	var s models.PricingSettings
	if err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *settingsRepository) SavePricing(ctx context.Context, settings *models.PricingSettings) error {
	return translate(upsertOnShop(r.db.WithContext(ctx), settings).Error)
}

func (r *settingsRepository) GetWidget(ctx context.Context, shopID uint) (*models.WidgetSettings, error) {
	var s models.WidgetSettings
	if err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *settingsRepository) SaveWidget(ctx context.Context, settings *models.WidgetSettings) error {
	return translate(upsertOnShop(r.db.WithContext(ctx), settings).Error)
}

func (r *settingsRepository) GetProduct(ctx context.Context, shopID uint) (*models.ProtectionProduct, error) {
	var p models.ProtectionProduct
	if err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *settingsRepository) SaveProduct(ctx context.Context, product *models.ProtectionProduct) error {
	return translate(upsertOnShop(r.db.WithContext(ctx), product).Error)
}
