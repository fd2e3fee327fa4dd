package model

import "time"

// 汎用顧客（名無し）の目印
const GenericCustomerKey = "generic"

const GenericCustomerName = "Unregistered customer"

// 顧客
// Emailとgeneric_keyはテナント内で一意（NULLは重複可）。
type Customer struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64     `gorm:"not null;index;uniqueIndex:idx_customers_tenant_email;uniqueIndex:idx_customers_tenant_generic" json:"tenant_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Email      *string   `gorm:"type:varchar(255);uniqueIndex:idx_customers_tenant_email" json:"email,omitempty"`
	Phone      string    `gorm:"type:varchar(30)" json:"phone,omitempty"`
	GenericKey *string   `gorm:"type:varchar(20);uniqueIndex:idx_customers_tenant_generic" json:"-"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
