package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type notificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) repo.NotificationRepository {
	return &notificationGormRepository{db: db}
}

func (r *notificationGormRepository) Create(ctx context.Context, n model.StockNotification) error {
	if err := r.db.WithContext(ctx).Create(&n).Error; err != nil {
		return err
	}
	return nil
}

func (r *notificationGormRepository) ListUnpublished(ctx context.Context, limit int) ([]model.StockNotification, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var out []model.StockNotification
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("id asc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationGormRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.StockNotification{}).
		Where("id = ? AND published_at IS NULL", id).
		Update("published_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
