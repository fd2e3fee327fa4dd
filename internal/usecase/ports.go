package usecase

import (
	"context"

	"storefront/internal/domain/model"
)

// カタログ（商品）の読み取り。Redisキャッシュを挟むこともある
type ProductCatalog interface {
	FindByID(ctx context.Context, tenantID int64, productID int64) (model.Product, error)
}

// 在庫が変わった商品のキャッシュを捨てる
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, tenantID int64, productID int64) error
}

// 在庫通知の外部送信（Kafkaなど）
type NotificationPublisher interface {
	Publish(ctx context.Context, n model.StockNotification) error
}
