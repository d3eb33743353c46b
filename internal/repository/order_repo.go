package repository

import (
	"context"

	"gasdepot/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its items in one database transaction.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
	return translate(err, "order")
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	if err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

// GetWithProducts loads the order with each item's catalog product.
func (r *OrderRepository) GetWithProducts(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&o, id).Error
	if err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "order")
	}
	var list []models.Order
	err := q.Preload("Items").Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, translate(err, "order")
}
