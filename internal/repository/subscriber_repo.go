package repository

import (
	"context"

	"gasdepot/internal/models"

	"gorm.io/gorm"
)

type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) Create(ctx context.Context, s *models.Subscriber) error {
	return translate(r.db.WithContext(ctx).Create(s).Error, "subscriber")
}
