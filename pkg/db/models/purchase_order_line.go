package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/inventory-backend/pkg/enums"
)

// PurchaseOrderLine is a single product position on a purchase order.
// UnitPrice is a snapshot of the product-supplier price at assembly time.
// ReceivedQuantity never exceeds Quantity.
type PurchaseOrderLine struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID        `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID        uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Quantity         int              `gorm:"column:quantity;not null"`
	ReceivedQuantity int              `gorm:"column:received_quantity;not null;default:0"`
	UnitPrice        decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal        decimal.Decimal  `gorm:"column:line_total;type:numeric(14,2);not null"`
	Status           enums.LineStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// Remaining returns the quantity still outstanding on the line.
func (l PurchaseOrderLine) Remaining() int {
	return l.Quantity - l.ReceivedQuantity
}
