package purchaseorders

import (
	"github.com/google/uuid"

	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
)

// CreateOrderLineInput is one product position requested on a new order.
type CreateOrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput captures everything needed to assemble a draft order.
type CreateOrderInput struct {
	SupplierID  uuid.UUID
	Lines       []CreateOrderLineInput
	Notes       *string
	ActorUserID uuid.UUID
}

// ReceiveItemInput reports a delivered quantity against one order line.
type ReceiveItemInput struct {
	LineID   uuid.UUID
	Quantity int
}

// ReceiveInput carries a goods receipt for an order.
type ReceiveInput struct {
	OrderID     uuid.UUID
	Items       []ReceiveItemInput
	ReceiptRef  *string
	ActorUserID uuid.UUID
}

// AppliedLine describes what a receipt actually did to one line.
type AppliedLine struct {
	LineID    uuid.UUID        `json:"line_id"`
	ProductID uuid.UUID        `json:"product_id"`
	Requested int              `json:"requested"`
	Applied   int              `json:"applied"`
	Clamped   bool             `json:"clamped"`
	Status    enums.LineStatus `json:"status"`
}

// ReceiveResult summarizes a processed receipt.
type ReceiveResult struct {
	OrderStatus enums.OrderStatus `json:"order_status"`
	Applied     []AppliedLine     `json:"applied"`
}

// OrderList is a cursor-paginated page of purchase orders.
type OrderList struct {
	Items      []models.PurchaseOrder
	NextCursor string
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status     *enums.OrderStatus
	SupplierID *uuid.UUID
}
