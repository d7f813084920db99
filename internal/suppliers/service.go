package suppliers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/smartinventory/inventory-backend/pkg/db"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

// ProductFinder resolves products when linking them to suppliers.
type ProductFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service defines supplier management operations.
type Service interface {
	Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*SupplierList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput) (*models.Supplier, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	LinkProduct(ctx context.Context, input LinkProductInput) (*models.ProductSupplier, error)
	ListProductLinks(ctx context.Context, supplierID uuid.UUID) ([]models.ProductSupplier, error)
}

type service struct {
	repo     Repository
	products ProductFinder
}

// NewService builds a supplier service with the required dependencies.
func NewService(repo Repository, products ProductFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier email required")
	}

	supplier := &models.Supplier{
		Name:          strings.TrimSpace(input.Name),
		ContactPerson: input.ContactPerson,
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:         input.Phone,
		Address:       input.Address,
		IsActive:      true,
	}

	created, err := s.repo.Create(ctx, supplier)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_suppliers_email") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "supplier email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*SupplierList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput) (*models.Supplier, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.ContactPerson != nil {
		updates["contact_person"] = *input.ContactPerson
	}
	if input.Email != nil {
		if strings.TrimSpace(*input.Email) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier email cannot be empty")
		}
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_suppliers_email") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "supplier email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier")
	}
	return s.Get(ctx, id)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !supplier.IsActive {
		return nil
	}
	now := time.Now()
	if err := s.repo.Update(ctx, id, map[string]any{
		"is_active":      false,
		"deactivated_at": now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate supplier")
	}
	return nil
}

func (s *service) LinkProduct(ctx context.Context, input LinkProductInput) (*models.ProductSupplier, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	supplier, err := s.Get(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "supplier is deactivated")
	}

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	link := &models.ProductSupplier{
		ProductID:    input.ProductID,
		SupplierID:   input.SupplierID,
		UnitPrice:    input.UnitPrice,
		LeadTimeDays: input.LeadTimeDays,
		Preferred:    input.Preferred,
	}
	if err := s.repo.UpsertProductLink(ctx, link); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link product to supplier")
	}
	return link, nil
}

func (s *service) ListProductLinks(ctx context.Context, supplierID uuid.UUID) ([]models.ProductSupplier, error) {
	if _, err := s.Get(ctx, supplierID); err != nil {
		return nil, err
	}
	links, err := s.repo.ListProductLinks(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product links")
	}
	return links, nil
}
