package purchaseorders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

// Repository defines persistence operations for purchase orders and lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	FindLines(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrderLine, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateLine(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindDraftsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.PurchaseOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a purchase orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row so concurrent receipts against the
// same order serialize at the database.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindLines(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrderLine, error) {
	var lines []models.PurchaseOrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Preload("Lines").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filters.SupplierID)
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.PurchaseOrder
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &OrderList{}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	list.Items = rows
	return list, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateLine(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrderLine{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindDraftsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.OrderStatusDraft, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
