package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartinventory/inventory-backend/internal/ledger"
	dbpkg "github.com/smartinventory/inventory-backend/pkg/db"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/outbox"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// movementRecorder appends stock movements to the ledger.
type movementRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, input ledger.RecordMovementInput) (*models.StockMovement, error)
}

// outboxEmitter queues domain events for publication.
type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines product catalog and stock adjustment operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	AdjustStock(ctx context.Context, input AdjustStockInput) (*models.Product, error)
}

type service struct {
	repo       Repository
	ledger     movementRecorder
	tx         txRunner
	events     outboxEmitter
	maxRetries int
}

// NewService builds a product service with the required dependencies.
func NewService(repo Repository, movements movementRecorder, tx txRunner, events outboxEmitter, maxRetries int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &service{
		repo:       repo,
		ledger:     movements,
		tx:         tx,
		events:     events,
		maxRetries: maxRetries,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	unit := input.Unit
	if unit == "" {
		unit = enums.UnitOfMeasurePiece
	}
	if !unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", unit))
	}
	if input.MinimumStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
	}
	if input.SalePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price cannot be negative")
	}

	product := &models.Product{
		SKU:          strings.ToUpper(strings.TrimSpace(input.SKU)),
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Unit:         unit,
		MinimumStock: input.MinimumStock,
		SalePrice:    input.SalePrice,
		IsActive:     true,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "product sku already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", *input.Unit))
		}
		updates["unit"] = *input.Unit
	}
	if input.MinimumStock != nil {
		if *input.MinimumStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock cannot be negative")
		}
		updates["minimum_stock"] = *input.MinimumStock
	}
	if input.SalePrice != nil {
		if input.SalePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price cannot be negative")
		}
		updates["sale_price"] = *input.SalePrice
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.Get(ctx, id)
}

// AdjustStock applies a signed manual correction to on-hand stock. The update
// is a compare-and-swap on the product version; losing the race re-reads and
// retries up to the configured budget, then fails with a conflict.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*models.Product, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta cannot be zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment reason required")
	}

	var adjusted *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		applied := false
		var product *models.Product
		for attempt := 0; attempt <= s.maxRetries; attempt++ {
			var err error
			product, err = repo.FindByID(ctx, input.ProductID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if product.Quantity+input.Delta < 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "adjustment would drive stock negative")
			}
			ok, err := repo.ApplyQuantityDelta(ctx, product.ID, product.Version, input.Delta)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock adjustment")
			}
			if ok {
				applied = true
				break
			}
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeConflict, "stock adjustment lost the version race")
		}

		magnitude := input.Delta
		direction := "increase"
		if magnitude < 0 {
			magnitude = -magnitude
			direction = "decrease"
		}
		note := fmt.Sprintf("Manual %s: %s", direction, strings.TrimSpace(input.Reason))
		movementInput := ledger.RecordMovementInput{
			ProductID:     input.ProductID,
			Type:          enums.MovementTypeAdjustment,
			Quantity:      magnitude,
			ReferenceType: enums.ReferenceTypeAdjustment,
			Note:          &note,
		}
		if input.ActorUserID != uuid.Nil {
			actorID := input.ActorUserID
			movementInput.CreatedBy = &actorID
		}
		if _, err := s.ledger.Record(ctx, tx, movementInput); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record adjustment movement")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   input.ProductID,
			Data: map[string]any{
				"product_id": input.ProductID.String(),
				"delta":      input.Delta,
				"quantity":   product.Quantity + input.Delta,
				"reason":     strings.TrimSpace(input.Reason),
			},
			Version: 1,
		}
		if input.ActorUserID != uuid.Nil {
			event.Actor = &outbox.ActorRef{UserID: input.ActorUserID}
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue stock adjusted event")
		}

		adjusted = product
		adjusted.Quantity += input.Delta
		adjusted.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}
