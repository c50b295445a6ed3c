package db

import (
	"fmt"
	"time"

	"bakery/internal/config"
	"bakery/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
	if cfg.GoEnv == "dev" {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return gdb, nil
}

// 明細の外部キー（商品は RESTRICT、注文は CASCADE）
var lineItemForeignKeys = []struct {
	name string
	ddl  string
}{
	{
		name: "fk_order_line_items_order",
		ddl:  "ALTER TABLE order_line_items ADD CONSTRAINT fk_order_line_items_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
	},
	{
		name: "fk_order_line_items_product",
		ddl:  "ALTER TABLE order_line_items ADD CONSTRAINT fk_order_line_items_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT",
	},
}

// Migrate はテーブルを作成・更新する。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.OrderLineItem{},
		&model.ExcludedIdentifier{},
		&model.IdentifierCounter{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, fk := range lineItemForeignKeys {
		if gdb.Migrator().HasConstraint(&model.OrderLineItem{}, fk.name) {
			continue
		}
		if err := gdb.Exec(fk.ddl).Error; err != nil {
			return fmt.Errorf("add %s: %w", fk.name, err)
		}
	}
	return nil
}
