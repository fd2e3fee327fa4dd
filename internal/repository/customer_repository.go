package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CustomerRepository interface {
	// 有効な顧客だけを返す。無ければErrNotFound
	FindActiveByID(ctx context.Context, tenantID int64, customerID int64) (model.Customer, error)
	FindActiveByEmail(ctx context.Context, tenantID int64, email string) (model.Customer, error)

	// 新規作成。emailが重複したらErrConflict
	Create(ctx context.Context, customer model.Customer) (model.Customer, error)

	// GetOrCreateGeneric はテナントに1件だけの汎用顧客を返す（無ければ作る）。
	// 名無しの注文はすべてこの1件に紐づけ、注文ごとには作らない
	GetOrCreateGeneric(ctx context.Context, tenantID int64) (model.Customer, error)

	// 来店記録
	CreateVisit(ctx context.Context, visit model.CustomerVisit) error
}
