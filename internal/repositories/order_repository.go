package repositories

import (
	"context"
	"time"

	"shipprotect/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository persists protected checkouts for usage billing.
type OrderRepository interface {
	// CreateOnce inserts the order unless the shop already recorded its cart,
	// and returns the stored row and whether it was inserted.
	CreateOnce(ctx context.Context, order *models.ProtectedOrder) (*models.ProtectedOrder, bool, error)
	ListByShop(ctx context.Context, shopID uint, offset, limit int) ([]models.ProtectedOrder, int64, error)
	ListUnbilled(ctx context.Context, shopID uint) ([]models.ProtectedOrder, error)
	MarkBilled(ctx context.Context, ids []uint, invoiceItemID string, at time.Time) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func insertOnce(db *gorm.DB, order *models.ProtectedOrder) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "cart_token"}},
		DoNothing: true,
	}).Create(order)
}

func (r *orderRepository) CreateOnce(ctx context.Context, order *models.ProtectedOrder) (*models.ProtectedOrder, bool, error) {
	res := insertOnce(r.db.WithContext(ctx), order)
	if res.Error != nil {
		return nil, false, translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return order, true, nil
	}

	var existing models.ProtectedOrder
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND cart_token = ?", order.ShopID, order.CartToken).
		First(&existing).Error
	if err != nil {
		return nil, false, translate(err)
	}
	return &existing, false, nil
}

func (r *orderRepository) ListByShop(ctx context.Context, shopID uint, offset, limit int) ([]models.ProtectedOrder, int64, error) {
	var (
		orders []models.ProtectedOrder
		total  int64
	)

	q := r.db.WithContext(ctx).Model(&models.ProtectedOrder{}).Where("shop_id = ?", shopID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, translate(err)
	}
	return orders, total, nil
}

func (r *orderRepository) ListUnbilled(ctx context.Context, shopID uint) ([]models.ProtectedOrder, error) {
	var orders []models.ProtectedOrder
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND billed_at IS NULL", shopID).
		Order("id ASC").
		Find(&orders).Error
	return orders, translate(err)
}

// MarkBilled stamps the given orders in one transaction. Orders already
// billed are left untouched.
func (r *orderRepository) MarkBilled(ctx context.Context, ids []uint, invoiceItemID string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translate(tx.Model(&models.ProtectedOrder{}).
			Where("id IN ? AND billed_at IS NULL", ids).
			Updates(map[string]interface{}{
				"billed_at":       at,
				"invoice_item_id": invoiceItemID,
			}).Error)
	})
}
