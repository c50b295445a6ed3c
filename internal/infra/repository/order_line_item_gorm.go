package repository

import (
	"context"

	"bakery/internal/domain/model"

	"gorm.io/gorm"
)

type OrderLineItemGormRepository struct {
	db *gorm.DB
}

func NewOrderLineItemGormRepository(db *gorm.DB) *OrderLineItemGormRepository {
	return &OrderLineItemGormRepository{db: db}
}

func (r *OrderLineItemGormRepository) Create(ctx context.Context, item model.OrderLineItem) (model.OrderLineItem, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.OrderLineItem{}, mapError(err)
	}
	return item, nil
}

func (r *OrderLineItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLineItem, error) {
	var items []model.OrderLineItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderLineItem{}, mapError(err)
	}
	return items, nil
}

func (r *OrderLineItemGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderLineItem{}).Error
	return mapError(err)
}

func (r *OrderLineItemGormRepository) CountByProductID(ctx context.Context, productID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.OrderLineItem{}).
		Where("product_id = ?", productID).
		Count(&n).Error
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}
