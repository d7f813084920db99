package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/inventory-backend/pkg/enums"
)

// PurchaseOrder is an order placed with a supplier. Totals are fixed when the
// order is assembled; receiving never rewrites them.
type PurchaseOrder struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string              `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	SupplierID  uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null"`
	Status      enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'draft'"`
	TotalAmount decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	Notes       *string             `gorm:"column:notes"`
	CreatedBy   *uuid.UUID          `gorm:"column:created_by;type:uuid"`
	ConfirmedAt *time.Time          `gorm:"column:confirmed_at"`
	ReceivedAt  *time.Time          `gorm:"column:received_at"`
	CancelledAt *time.Time          `gorm:"column:cancelled_at"`
	Lines       []PurchaseOrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
