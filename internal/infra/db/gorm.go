package db

import (
	"storefront/internal/config"
	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{}
	if cfg.GoEnv == "prod" {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}
	return gorm.Open(postgres.Open(cfg.DSN()), gcfg)
}

// Migrate はチェックアウトで使うテーブルを作る
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Product{},
		&model.Customer{},
		&model.CustomerVisit{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryMovement{},
		&model.StockNotification{},
	)
}
