package model

import "time"

// 来店（購入）記録。情報用なので失敗しても注文は残す。
type CustomerVisit struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64     `gorm:"not null;index" json:"tenant_id"`
	CustomerID int64     `gorm:"not null;index" json:"customer_id"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	Amount     int64     `gorm:"not null" json:"amount"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
