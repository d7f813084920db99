package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

// Repository defines persistence operations for suppliers and their product links.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*SupplierList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpsertProductLink(ctx context.Context, link *models.ProductSupplier) error
	FindProductLink(ctx context.Context, productID, supplierID uuid.UUID) (*models.ProductSupplier, error)
	ListProductLinks(ctx context.Context, supplierID uuid.UUID) ([]models.ProductSupplier, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a suppliers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*SupplierList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if !filters.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Supplier
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &SupplierList{}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	list.Items = rows
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Supplier{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpsertProductLink(ctx context.Context, link *models.ProductSupplier) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "supplier_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"unit_price", "lead_time_days", "preferred", "updated_at"}),
		}).
		Create(link).Error
}

func (r *repository) FindProductLink(ctx context.Context, productID, supplierID uuid.UUID) (*models.ProductSupplier, error) {
	var link models.ProductSupplier
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND supplier_id = ?", productID, supplierID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) ListProductLinks(ctx context.Context, supplierID uuid.UUID) ([]models.ProductSupplier, error) {
	var links []models.ProductSupplier
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}
