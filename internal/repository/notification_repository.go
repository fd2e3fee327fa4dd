package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// 在庫通知の保存・送信管理
type NotificationRepository interface {
	Create(ctx context.Context, n model.StockNotification) error

	//未送信（published_at IS NULL）を古い順に
	ListUnpublished(ctx context.Context, limit int) ([]model.StockNotification, error)
	MarkPublished(ctx context.Context, id int64, at time.Time) error
}
