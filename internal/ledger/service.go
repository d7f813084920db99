package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
)

// Service defines operations that record and read stock movements.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
	ListByReference(ctx context.Context, referenceType enums.ReferenceType, referenceID uuid.UUID) ([]models.StockMovement, error)
}

type service struct {
	repo Repository
}

// RecordMovementInput captures the immutable data a stock movement requires.
type RecordMovementInput struct {
	ProductID     uuid.UUID
	Type          enums.MovementType
	Quantity      int
	ReferenceType enums.ReferenceType
	ReferenceID   *uuid.UUID
	Note          *string
	CreatedBy     *uuid.UUID
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error) {
	if input.ProductID == uuid.Nil {
		return nil, fmt.Errorf("product id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid movement type %q", input.Type)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("movement quantity must be positive")
	}
	if !input.ReferenceType.IsValid() {
		return nil, fmt.Errorf("invalid reference type %q", input.ReferenceType)
	}

	movement := &models.StockMovement{
		ProductID:     input.ProductID,
		Type:          input.Type,
		Quantity:      input.Quantity,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		Note:          input.Note,
		CreatedBy:     input.CreatedBy,
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id is required")
	}
	return s.repo.ListByProductID(ctx, productID)
}

func (s *service) ListByReference(ctx context.Context, referenceType enums.ReferenceType, referenceID uuid.UUID) ([]models.StockMovement, error) {
	if !referenceType.IsValid() {
		return nil, fmt.Errorf("invalid reference type %q", referenceType)
	}
	if referenceID == uuid.Nil {
		return nil, fmt.Errorf("reference id is required")
	}
	return s.repo.ListByReference(ctx, referenceType, referenceID)
}
