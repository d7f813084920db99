package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
)

type fakeRepository struct {
	createFn    func(ctx context.Context, movement *models.StockMovement) error
	byRef       map[uuid.UUID][]models.StockMovement
	lastRefType enums.ReferenceType
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, movement *models.StockMovement) error {
	if f.createFn != nil {
		return f.createFn(ctx, movement)
	}
	return nil
}

func (f *fakeRepository) ListByProductID(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	return nil, nil
}

func (f *fakeRepository) ListByReference(ctx context.Context, referenceType enums.ReferenceType, referenceID uuid.UUID) ([]models.StockMovement, error) {
	f.lastRefType = referenceType
	return f.byRef[referenceID], nil
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	orderID := uuid.New()
	note := "Received for PO line abc (receipt GRN-1)"
	input := RecordMovementInput{
		ProductID:     uuid.New(),
		Type:          enums.MovementTypeIn,
		Quantity:      7,
		ReferenceType: enums.ReferenceTypePurchaseOrder,
		ReferenceID:   &orderID,
		Note:          &note,
	}

	var created *models.StockMovement
	repo.createFn = func(ctx context.Context, movement *models.StockMovement) error {
		created = movement
		return nil
	}

	got, err := svc.Record(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if created == nil {
		t.Fatal("expected stock movement to be created")
	}
	if created.ProductID != input.ProductID || created.Type != input.Type || created.Quantity != input.Quantity {
		t.Fatalf("unexpected movement data: %+v", created)
	}
	if created.ReferenceID == nil || *created.ReferenceID != orderID {
		t.Fatalf("reference id not preserved: %+v", created)
	}
	if created.Note == nil || *created.Note != note {
		t.Fatalf("note not preserved: %+v", created)
	}
	if got != created {
		t.Fatalf("service should return created movement")
	}
}

func TestService_RecordValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name  string
		input RecordMovementInput
	}{
		{
			name: "missing product id",
			input: RecordMovementInput{
				Type:          enums.MovementTypeIn,
				Quantity:      1,
				ReferenceType: enums.ReferenceTypePurchaseOrder,
			},
		},
		{
			name: "invalid movement type",
			input: RecordMovementInput{
				ProductID:     uuid.New(),
				Type:          enums.MovementType("not_real"),
				Quantity:      1,
				ReferenceType: enums.ReferenceTypePurchaseOrder,
			},
		},
		{
			name: "zero quantity",
			input: RecordMovementInput{
				ProductID:     uuid.New(),
				Type:          enums.MovementTypeIn,
				Quantity:      0,
				ReferenceType: enums.ReferenceTypePurchaseOrder,
			},
		},
		{
			name: "negative quantity",
			input: RecordMovementInput{
				ProductID:     uuid.New(),
				Type:          enums.MovementTypeOut,
				Quantity:      -4,
				ReferenceType: enums.ReferenceTypePurchaseOrder,
			},
		},
		{
			name: "invalid reference type",
			input: RecordMovementInput{
				ProductID:     uuid.New(),
				Type:          enums.MovementTypeIn,
				Quantity:      1,
				ReferenceType: enums.ReferenceType("not_real"),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Record(context.Background(), nil, tc.input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestService_RecordRepoError(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	expectedErr := errors.New("boom")
	repo.createFn = func(ctx context.Context, movement *models.StockMovement) error {
		return expectedErr
	}

	if _, err := svc.Record(context.Background(), nil, RecordMovementInput{
		ProductID:     uuid.New(),
		Type:          enums.MovementTypeAdjustment,
		Quantity:      3,
		ReferenceType: enums.ReferenceTypeAdjustment,
	}); !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}

func TestService_ListByReference(t *testing.T) {
	refID := uuid.New()
	repo := &fakeRepository{
		byRef: map[uuid.UUID][]models.StockMovement{
			refID: {{ProductID: uuid.New(), Type: enums.MovementTypeIn, Quantity: 5}},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	movements, err := svc.ListByReference(context.Background(), enums.ReferenceTypePurchaseOrder, refID)
	if err != nil {
		t.Fatalf("ListByReference error: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if repo.lastRefType != enums.ReferenceTypePurchaseOrder {
		t.Fatalf("reference type must reach the repository, got %q", repo.lastRefType)
	}

	if _, err := svc.ListByReference(context.Background(), enums.ReferenceTypePurchaseOrder, uuid.Nil); err == nil {
		t.Fatal("expected error for nil reference id")
	}
	if _, err := svc.ListByReference(context.Background(), enums.ReferenceType("not_real"), refID); err == nil {
		t.Fatal("expected error for invalid reference type")
	}
}
