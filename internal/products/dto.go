package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
)

// CreateProductInput captures the data needed to register a product.
type CreateProductInput struct {
	SKU          string
	Name         string
	Description  *string
	Unit         enums.UnitOfMeasure
	MinimumStock int
	SalePrice    decimal.Decimal
}

// UpdateProductInput carries optional product field updates. Quantity is
// deliberately absent: stock changes go through AdjustStock or receiving.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Unit         *enums.UnitOfMeasure
	MinimumStock *int
	SalePrice    *decimal.Decimal
}

// AdjustStockInput describes a manual stock correction.
type AdjustStockInput struct {
	ProductID   uuid.UUID
	Delta       int
	Reason      string
	ActorUserID uuid.UUID
}

// ProductList is a cursor-paginated page of products.
type ProductList struct {
	Items      []models.Product
	NextCursor string
}

// ListFilters narrows product listings.
type ListFilters struct {
	IncludeInactive bool
	BelowMinimum    bool
}
