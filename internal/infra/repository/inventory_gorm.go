package repository

import (
	"context"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫が足りるときだけ減らす
// 条件付きUPDATE自体が最終判定。0行なら在庫不足。
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, tenantID int64, productID int64, qty int64) (int64, bool, error) {
	if qty <= 0 {
		return 0, false, nil
	}
	var p model.Product
	res := r.db.WithContext(ctx).
		Model(&p).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("id = ? AND tenant_id = ? AND stock >= ?", productID, tenantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return p.Stock, true, nil
}

// 出庫履歴作成
func (r *InventoryGormRepository) CreateMovement(ctx context.Context, m model.InventoryMovement) error {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	return nil
}
