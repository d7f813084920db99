package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartinventory/inventory-backend/internal/ledger"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/outbox"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

type fakeProductRepo struct {
	products    map[uuid.UUID]*models.Product
	casFailures int
	casCalls    int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}
}

func (f *fakeProductRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeProductRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := f.products[id]; ok {
		clone := *product
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	for _, product := range f.products {
		if product.SKU == sku {
			clone := *product
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error) {
	list := &ProductList{}
	for _, product := range f.products {
		list.Items = append(list.Items, *product)
	}
	return list, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	product, ok := f.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"]; ok {
		product.Name = v.(string)
	}
	if v, ok := updates["minimum_stock"]; ok {
		product.MinimumStock = v.(int)
	}
	return nil
}

func (f *fakeProductRepo) ApplyQuantityDelta(ctx context.Context, id uuid.UUID, version int64, delta int) (bool, error) {
	f.casCalls++
	if f.casFailures > 0 {
		f.casFailures--
		return false, nil
	}
	product, ok := f.products[id]
	if !ok || product.Version != version {
		return false, nil
	}
	product.Quantity += delta
	product.Version++
	return true, nil
}

type fakeMovementRecorder struct {
	movements []ledger.RecordMovementInput
	err       error
}

func (f *fakeMovementRecorder) Record(ctx context.Context, tx *gorm.DB, input ledger.RecordMovementInput) (*models.StockMovement, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.movements = append(f.movements, input)
	return &models.StockMovement{ProductID: input.ProductID, Type: input.Type, Quantity: input.Quantity}, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newProductTestService(t *testing.T) (Service, *fakeProductRepo, *fakeMovementRecorder, *fakeEmitter) {
	t.Helper()
	repo := newFakeProductRepo()
	movements := &fakeMovementRecorder{}
	emitter := &fakeEmitter{}
	svc, err := NewService(repo, movements, fakeTxRunner{}, emitter, 3)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo, movements, emitter
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _, _ := newProductTestService(t)

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing sku", CreateProductInput{Name: "Widget"}},
		{"missing name", CreateProductInput{SKU: "SKU-1"}},
		{"bad unit", CreateProductInput{SKU: "SKU-1", Name: "Widget", Unit: "pallet"}},
		{"negative minimum", CreateProductInput{SKU: "SKU-1", Name: "Widget", MinimumStock: -1}},
		{"negative price", CreateProductInput{SKU: "SKU-1", Name: "Widget", SalePrice: decimal.NewFromInt(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateProductNormalizesSKU(t *testing.T) {
	svc, _, _, _ := newProductTestService(t)

	product, err := svc.Create(context.Background(), CreateProductInput{
		SKU:  " sku-widget ",
		Name: "Widget",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if product.SKU != "SKU-WIDGET" {
		t.Fatalf("expected uppercased sku, got %q", product.SKU)
	}
	if product.Unit != enums.UnitOfMeasurePiece {
		t.Fatalf("expected default unit pcs, got %q", product.Unit)
	}
	if !product.IsActive {
		t.Fatal("new products should be active")
	}
}

func TestAdjustStockHappyPath(t *testing.T) {
	svc, repo, movements, emitter := newProductTestService(t)

	product := &models.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", Quantity: 10, Version: 2}
	repo.products[product.ID] = product

	actor := uuid.New()
	adjusted, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID:   product.ID,
		Delta:       -4,
		Reason:      "cycle count",
		ActorUserID: actor,
	})
	if err != nil {
		t.Fatalf("AdjustStock error: %v", err)
	}
	if adjusted.Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", adjusted.Quantity)
	}
	if repo.products[product.ID].Quantity != 6 {
		t.Fatalf("expected stored quantity 6, got %d", repo.products[product.ID].Quantity)
	}
	if repo.products[product.ID].Version != 3 {
		t.Fatalf("expected version bump, got %d", repo.products[product.ID].Version)
	}

	if len(movements.movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements.movements))
	}
	movement := movements.movements[0]
	if movement.Type != enums.MovementTypeAdjustment {
		t.Fatalf("expected adjustment movement, got %q", movement.Type)
	}
	if movement.Quantity != 4 {
		t.Fatalf("ledger quantity must be the magnitude, got %d", movement.Quantity)
	}
	if movement.CreatedBy == nil || *movement.CreatedBy != actor {
		t.Fatalf("expected actor on movement, got %v", movement.CreatedBy)
	}

	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(emitter.events))
	}
	if emitter.events[0].EventType != enums.EventStockAdjusted {
		t.Fatalf("expected stock.adjusted event, got %q", emitter.events[0].EventType)
	}
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	svc, repo, movements, _ := newProductTestService(t)

	product := &models.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", Quantity: 3}
	repo.products[product.ID] = product

	_, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID: product.ID,
		Delta:     -5,
		Reason:    "shrinkage",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(movements.movements) != 0 {
		t.Fatal("no movement should be recorded on rejection")
	}
	if repo.products[product.ID].Quantity != 3 {
		t.Fatal("quantity must be unchanged on rejection")
	}
}

func TestAdjustStockRetriesThenSucceeds(t *testing.T) {
	svc, repo, _, _ := newProductTestService(t)

	product := &models.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", Quantity: 10}
	repo.products[product.ID] = product
	repo.casFailures = 2

	adjusted, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID: product.ID,
		Delta:     5,
		Reason:    "found stock",
	})
	if err != nil {
		t.Fatalf("AdjustStock error: %v", err)
	}
	if adjusted.Quantity != 15 {
		t.Fatalf("expected quantity 15, got %d", adjusted.Quantity)
	}
	if repo.casCalls != 3 {
		t.Fatalf("expected 3 compare-and-swap attempts, got %d", repo.casCalls)
	}
}

func TestAdjustStockExhaustsRetries(t *testing.T) {
	svc, repo, movements, emitter := newProductTestService(t)

	product := &models.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", Quantity: 10}
	repo.products[product.ID] = product
	repo.casFailures = 10

	_, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID: product.ID,
		Delta:     1,
		Reason:    "recount",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict after exhausting retries, got %v", err)
	}
	if len(movements.movements) != 0 || len(emitter.events) != 0 {
		t.Fatal("nothing should be recorded when the retry budget runs out")
	}
}
