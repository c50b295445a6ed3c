package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IDはシーケンスではなく採番（IdentifierAllocator）で決まる
type Product struct {
	ID        int64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock     int64           `gorm:"not null;check:chk_products_stock_non_negative,stock >= 0" json:"stock"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
