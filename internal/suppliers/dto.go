package suppliers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/inventory-backend/pkg/db/models"
)

// CreateSupplierInput captures the data needed to register a supplier.
type CreateSupplierInput struct {
	Name          string
	ContactPerson *string
	Email         string
	Phone         *string
	Address       *string
}

// UpdateSupplierInput carries optional supplier field updates.
type UpdateSupplierInput struct {
	Name          *string
	ContactPerson *string
	Email         *string
	Phone         *string
	Address       *string
}

// LinkProductInput attaches a product to a supplier's catalogue at a price.
type LinkProductInput struct {
	ProductID    uuid.UUID
	SupplierID   uuid.UUID
	UnitPrice    decimal.Decimal
	LeadTimeDays int
	Preferred    bool
}

// SupplierList is a cursor-paginated page of suppliers.
type SupplierList struct {
	Items      []models.Supplier
	NextCursor string
}

// ListFilters narrows supplier listings.
type ListFilters struct {
	IncludeInactive bool
}
