package model

import "time"

type StockNotificationKind string

const (
	//在庫が0になった
	StockNotificationOutOfStock StockNotificationKind = "out_of_stock"
	//しきい値以下になった
	StockNotificationLowStock StockNotificationKind = "low_stock"
)

// 在庫通知（追記のみ）
// PublishedAtはKafkaへ送った時刻。未送信ならNULL。
type StockNotification struct {
	ID          int64                 `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    int64                 `gorm:"not null;index" json:"tenant_id"`
	ProductID   int64                 `gorm:"not null;index" json:"product_id"`
	Kind        StockNotificationKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	Message     string                `gorm:"type:text;not null" json:"message"`
	IsRead      bool                  `gorm:"not null;default:false" json:"is_read"`
	PublishedAt *time.Time            `gorm:"index" json:"published_at,omitempty"`
	CreatedAt   time.Time             `gorm:"not null;autoCreateTime" json:"created_at"`
}
