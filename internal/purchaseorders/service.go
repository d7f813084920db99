package purchaseorders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartinventory/inventory-backend/internal/ledger"
	"github.com/smartinventory/inventory-backend/internal/products"
	"github.com/smartinventory/inventory-backend/internal/sequence"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/metrics"
	"github.com/smartinventory/inventory-backend/pkg/outbox"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type supplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	FindProductLink(ctx context.Context, productID, supplierID uuid.UUID) (*models.ProductSupplier, error)
}

type movementRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, input ledger.RecordMovementInput) (*models.StockMovement, error)
}

// Service defines purchase order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.PurchaseOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	Confirm(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.PurchaseOrder, error)
	Cancel(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.PurchaseOrder, error)
	Receive(ctx context.Context, input ReceiveInput) (*ReceiveResult, error)
}

type service struct {
	repo       Repository
	products   products.Repository
	suppliers  supplierReader
	sequence   sequence.Repository
	ledger     movementRecorder
	tx         txRunner
	outbox     outboxPublisher
	metrics    *metrics.ReceivingMetrics
	maxRetries int
}

// ServiceParams bundles the dependencies required to build the order service.
type ServiceParams struct {
	Repo              Repository
	Products          products.Repository
	Suppliers         supplierReader
	Sequence          sequence.Repository
	Ledger            movementRecorder
	Tx                txRunner
	Outbox            outboxPublisher
	Metrics           *metrics.ReceivingMetrics
	MaxReceiveRetries int
}

// OrderCreatedEvent is emitted when a draft order is assembled.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineCount   int             `json:"line_count"`
}

// OrderStatusEvent is emitted on confirm, cancel, and full receipt.
type OrderStatusEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
}

// NewService builds a purchase order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier reader required")
	}
	if params.Sequence == nil {
		return nil, fmt.Errorf("sequence repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("movement recorder required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	maxRetries := params.MaxReceiveRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &service{
		repo:       params.Repo,
		products:   params.Products,
		suppliers:  params.Suppliers,
		sequence:   params.Sequence,
		ledger:     params.Ledger,
		tx:         params.Tx,
		outbox:     params.Outbox,
		metrics:    params.Metrics,
		maxRetries: maxRetries,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.PurchaseOrder, error) {
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one line")
	}
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every line")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
	}

	supplier, err := s.suppliers.FindByID(ctx, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("supplier %s not found", input.SupplierID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if !supplier.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "supplier is deactivated")
	}

	for _, line := range input.Lines {
		if _, err := s.products.FindByID(ctx, line.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", line.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
	}

	links := make(map[uuid.UUID]*models.ProductSupplier, len(input.Lines))
	for _, line := range input.Lines {
		link, err := s.suppliers.FindProductLink(ctx, line.ProductID, input.SupplierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(
					pkgerrors.CodeInvalidRelation,
					fmt.Sprintf("product %s is not supplied by supplier %s", line.ProductID, input.SupplierID),
				)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product supplier relation")
		}
		links[line.ProductID] = link
	}

	seen := make(map[uuid.UUID]bool, len(input.Lines))
	for _, line := range input.Lines {
		if seen[line.ProductID] {
			return nil, pkgerrors.New(
				pkgerrors.CodeDuplicate,
				fmt.Sprintf("product %s appears more than once", line.ProductID),
			)
		}
		seen[line.ProductID] = true
	}

	var order *models.PurchaseOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		next, err := s.sequence.WithTx(tx).NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint order number")
		}

		total := decimal.Zero
		lines := make([]models.PurchaseOrderLine, 0, len(input.Lines))
		for _, line := range input.Lines {
			unitPrice := links[line.ProductID].UnitPrice
			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)
			lines = append(lines, models.PurchaseOrderLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: unitPrice,
				LineTotal: lineTotal,
				Status:    enums.LineStatusPending,
			})
		}

		order = &models.PurchaseOrder{
			OrderNumber: sequence.FormatOrderNumber(next),
			SupplierID:  input.SupplierID,
			Status:      enums.OrderStatusDraft,
			TotalAmount: total,
			Notes:       input.Notes,
			Lines:       lines,
		}
		if input.ActorUserID != uuid.Nil {
			actorID := input.ActorUserID
			order.CreatedBy = &actorID
		}
		if err := s.repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.ActorUserID),
			Data: OrderCreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				SupplierID:  order.SupplierID,
				TotalAmount: order.TotalAmount,
				LineCount:   len(order.Lines),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", *filters.Status))
	}
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) Confirm(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.PurchaseOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var order *models.PurchaseOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusDraft {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("order %s cannot be confirmed from status %s", order.OrderNumber, order.Status),
			)
		}

		now := time.Now().UTC()
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":       enums.OrderStatusConfirmed,
			"confirmed_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
		}
		order.Status = enums.OrderStatusConfirmed
		order.ConfirmedAt = &now

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actorUserID),
			Data: OrderStatusEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Status:      order.Status,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Cancel(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.PurchaseOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var order *models.PurchaseOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		// repeated cancel converges instead of failing
		if order.Status == enums.OrderStatusCancelled {
			return nil
		}
		if order.Status == enums.OrderStatusReceived {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("order %s is already fully received", order.OrderNumber),
			)
		}

		now := time.Now().UTC()
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actorUserID),
			Data: OrderStatusEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Status:      order.Status,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func actorRef(userID uuid.UUID) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID}
}
