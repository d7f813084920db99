package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  unit TEXT NOT NULL DEFAULT 'pcs',
  quantity INTEGER NOT NULL DEFAULT 0,
  minimum_stock INTEGER NOT NULL DEFAULT 0,
  sale_price TEXT NOT NULL DEFAULT '0',
  version INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM products").Error
	})
	return db
}

func insertProduct(t *testing.T, db *gorm.DB, sku string, quantity, minimum int, active bool, created time.Time) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:           uuid.New(),
		SKU:          sku,
		Name:         fmt.Sprintf("Product %s", sku),
		Unit:         enums.UnitOfMeasurePiece,
		Quantity:     quantity,
		MinimumStock: minimum,
		SalePrice:    decimal.NewFromInt(10),
		IsActive:     active,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryProductLookups(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := insertProduct(t, db, "SKU-LOOKUP", 5, 2, true, time.Now().UTC())

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.SKU, byID.SKU)

	bySKU, err := repo.FindBySKU(ctx, "SKU-LOOKUP")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySKU.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListProducts_paginationAndFilters(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	oldest := insertProduct(t, db, "SKU-OLD", 10, 2, true, now.Add(-2*time.Hour))
	low := insertProduct(t, db, "SKU-LOW", 1, 5, true, now.Add(-time.Hour))
	newest := insertProduct(t, db, "SKU-NEW", 8, 2, true, now)
	insertProduct(t, db, "SKU-GONE", 0, 0, false, now.Add(-time.Minute))

	first, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, newest.ID, first.Items[0].ID)
	assert.NotEmpty(t, first.NextCursor)

	second, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, oldest.ID, second.Items[0].ID)
	assert.Empty(t, second.NextCursor)

	below, err := repo.List(ctx, pagination.Params{Limit: 10}, ListFilters{BelowMinimum: true})
	require.NoError(t, err)
	require.Len(t, below.Items, 1)
	assert.Equal(t, low.ID, below.Items[0].ID)

	all, err := repo.List(ctx, pagination.Params{Limit: 10}, ListFilters{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all.Items, 4)
}

func TestRepositoryApplyQuantityDelta(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := insertProduct(t, db, "SKU-CAS", 10, 0, true, time.Now().UTC())

	ok, err := repo.ApplyQuantityDelta(ctx, product.ID, product.Version, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	updated, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, updated.Quantity)
	assert.Equal(t, product.Version+1, updated.Version)

	// stale version loses the race without touching the row
	ok, err = repo.ApplyQuantityDelta(ctx, product.ID, product.Version, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	unchanged, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, unchanged.Quantity)
	assert.Equal(t, product.Version+1, unchanged.Version)

	ok, err = repo.ApplyQuantityDelta(ctx, product.ID, updated.Version, -14)
	require.NoError(t, err)
	assert.True(t, ok)

	drained, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, drained.Quantity)
}
