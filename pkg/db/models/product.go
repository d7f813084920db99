package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/inventory-backend/pkg/enums"
)

// Product is a stock-keeping unit with an on-hand quantity guarded by an
// optimistic-lock version counter. Quantity is only ever changed through
// compare-and-swap updates that bump Version.
type Product struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU          string              `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Name         string              `gorm:"column:name;type:text;not null"`
	Description  *string             `gorm:"column:description"`
	Unit         enums.UnitOfMeasure `gorm:"column:unit;type:text;not null;default:'pcs'"`
	Quantity     int                 `gorm:"column:quantity;not null;default:0"`
	MinimumStock int                 `gorm:"column:minimum_stock;not null;default:0"`
	SalePrice    decimal.Decimal     `gorm:"column:sale_price;type:numeric(12,2);not null;default:0"`
	Version      int64               `gorm:"column:version;not null;default:0"`
	IsActive     bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
