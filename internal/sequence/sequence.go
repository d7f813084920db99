package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// OrderNumberPrefix is prepended to every minted purchase order number.
const OrderNumberPrefix = "ORDER-"

// Repository mints monotonically increasing order numbers from the database.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextOrderNumber(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sequence repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) NextOrderNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval('purchase_order_numbers')").
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("minting order number: %w", err)
	}
	return next, nil
}

// FormatOrderNumber renders a minted sequence value as a display order number.
// Values are zero-padded to five digits and widen naturally beyond 99999.
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("%s%05d", OrderNumberPrefix, n)
}
