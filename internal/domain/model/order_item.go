package model

import "time"

// 注文明細。商品名と単価は購入時点のスナップショット
type OrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPriceSnapshot   int64     `gorm:"not null;check:chk_order_items_price,unit_price_snapshot >= 0" json:"unit_price"`
	Quantity            int64     `gorm:"not null;check:chk_order_items_qty,quantity > 0" json:"quantity"`
	Subtotal            int64     `gorm:"not null" json:"subtotal"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
