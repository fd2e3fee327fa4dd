package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品行がそのまま在庫台帳になる。stock は負にならない
// IsActive=false は「非表示」で、チェックアウトからは在庫0に見える
type Product struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  int64          `gorm:"not null;index:idx_products_tenant_active,priority:1" json:"tenant_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Price     int64          `gorm:"not null;check:chk_products_price,price >= 0" json:"price"`
	Stock     int64          `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	IsActive  bool           `gorm:"not null;default:false;index:idx_products_tenant_active,priority:2" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// カートやチェックアウトから買える状態か
func (p Product) Available() int64 {
	if !p.IsActive {
		return 0
	}
	return p.Stock
}
