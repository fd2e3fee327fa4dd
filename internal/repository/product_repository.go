package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")

	// 一意制約違反
	ErrConflict = errors.New("conflict")
)

// 在庫台帳としての商品の読み取り。
type ProductRepository interface {
	// テナント内の商品を1件取得（非公開も返す）
	FindByID(ctx context.Context, tenantID int64, productID int64) (model.Product, error)

	// 行ロック付きで取得する。ID昇順で呼ぶこと。
	FindByIDForUpdate(ctx context.Context, tenantID int64, productID int64) (model.Product, error)

	// 公開一覧から外す
	Hide(ctx context.Context, tenantID int64, productID int64) error
}
