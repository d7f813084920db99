package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSupplier links a product to a supplier that sells it, carrying the
// agreed purchase price. Order lines snapshot this price at creation time.
type ProductSupplier struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_supplier"`
	SupplierID   uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:idx_product_supplier"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LeadTimeDays int             `gorm:"column:lead_time_days;not null;default:0"`
	Preferred    bool            `gorm:"column:preferred;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
