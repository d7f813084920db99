package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartinventory/inventory-backend/pkg/enums"
)

// StockMovement is an append-only ledger row recording one stock change.
// Quantity is always strictly positive; Type encodes the direction.
// Rows are never updated or deleted once written.
type StockMovement struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index"`
	Type          enums.MovementType  `gorm:"column:type;type:text;not null"`
	Quantity      int                 `gorm:"column:quantity;not null"`
	ReferenceType enums.ReferenceType `gorm:"column:reference_type;type:text;not null"`
	ReferenceID   *uuid.UUID          `gorm:"column:reference_id;type:uuid;index"`
	Note          *string             `gorm:"column:note"`
	CreatedBy     *uuid.UUID          `gorm:"column:created_by;type:uuid"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
