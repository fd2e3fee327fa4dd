package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	db            *gorm.DB
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	customers     repo.CustomerRepository
	inventory     repo.InventoryRepository
	products      repo.ProductRepository
	notifications repo.NotificationRepository
}

// repoはtxを持ったDBで作り直す
func newTxReposGorm(tx *gorm.DB) *txReposGorm {
	return &txReposGorm{
		db:            tx,
		orders:        NewOrderGormRepository(tx),
		orderItems:    NewOrderItemGormRepository(tx),
		customers:     NewCustomerGormRepository(tx),
		inventory:     NewInventoryGormRepository(tx),
		products:      NewProductGormRepository(tx),
		notifications: NewNotificationGormRepository(tx),
	}
}

func (r *txReposGorm) Orders() repo.OrderRepository               { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *txReposGorm) Customers() repo.CustomerRepository         { return r.customers }
func (r *txReposGorm) Inventory() repo.InventoryRepository        { return r.inventory }
func (r *txReposGorm) Products() repo.ProductRepository           { return r.products }
func (r *txReposGorm) Notifications() repo.NotificationRepository { return r.notifications }

// gormはTx内のTransactionをSAVEPOINTにする
func (r *txReposGorm) Savepoint(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxReposGorm(tx))
	})
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTxReposGorm(tx))
	})
}
