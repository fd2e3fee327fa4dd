package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 在庫台帳（products.stock）への書き込み
type InventoryRepository interface {
	// stock >= qty のときだけ減らし、減らした後の在庫を返す。
	// 足りない・対象なしは ok=false（エラーではない）
	DecreaseStockIfEnough(ctx context.Context, tenantID int64, productID int64, qty int64) (newStock int64, ok bool, err error)

	// 入出庫履歴。チェックアウトでは exit を1明細1行
	CreateMovement(ctx context.Context, movement model.InventoryMovement) error
}
