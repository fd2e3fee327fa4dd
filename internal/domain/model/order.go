package model

import "time"

type OrderStatus string

// 部分的な状態は持たない
const OrderStatusCompleted OrderStatus = "completed"

type Order struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID      int64       `gorm:"not null;index" json:"tenant_id"`
	CustomerID    int64       `gorm:"not null;index" json:"customer_id"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod string      `gorm:"type:varchar(50);not null" json:"payment_method"`
	TotalPrice    int64       `gorm:"not null" json:"total_price"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}
