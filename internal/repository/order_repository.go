package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 注文は作成と参照だけ。確定後に書き換える口は用意しない
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, tenantID int64, orderID int64) (model.Order, error)
}

// 明細の読み出しは注文のテナントで絞る
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrder(ctx context.Context, tenantID int64, orderID int64) ([]model.OrderItem, error)
}
