package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

const orderItemBatchSize = 100

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// ステータスは completed 固定（途中状態の注文は作らない）
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	order.ID = 0
	order.Status = model.OrderStatusCompleted
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, mapWriteError(err)
	}
	return order.ID, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, tenantID int64, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

// 渡された順にINSERTするので、明細IDの並び＝カートの並び
func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]model.OrderItem, len(items))
	for i, it := range items {
		it.ID = 0
		it.OrderID = orderID
		rows[i] = it
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&rows, orderItemBatchSize).Error; err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *OrderItemGormRepository) ListByOrder(ctx context.Context, tenantID int64, orderID int64) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.order_id = ? AND orders.tenant_id = ?", orderID, tenantID).
		Order("order_items.id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
