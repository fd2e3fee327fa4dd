package model

import "time"

type MovementKind string

// 販売による出庫
const MovementKindExit MovementKind = "exit"

// 在庫移動の履歴
type InventoryMovement struct {
	ID         int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64        `gorm:"not null;index" json:"tenant_id"`
	ProductID  int64        `gorm:"not null;index" json:"product_id"`
	OrderID    int64        `gorm:"not null;index" json:"order_id"`
	Kind       MovementKind `gorm:"type:varchar(20);not null" json:"kind"`
	Quantity   int64        `gorm:"not null" json:"quantity"`
	StockAfter int64        `gorm:"not null" json:"stock_after"`
	Reason     string       `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt  time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
}
