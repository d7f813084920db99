package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/smartinventory/inventory-backend/internal/purchaseorders"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	"github.com/smartinventory/inventory-backend/pkg/logger"
	"github.com/smartinventory/inventory-backend/pkg/outbox"
)

const (
	defaultDraftExpiry = 30 * 24 * time.Hour
	draftBatchSize     = 200
)

// DraftExpiryJobParams configure the stale draft order sweeper.
type DraftExpiryJobParams struct {
	Logger                   *logger.Logger
	DB                       txRunner
	DraftReader              draftOrderReader
	Outbox                   outboxEmitter
	TransactionalRepoFactory transactionalRepoFactory
	Expiry                   time.Duration
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type draftOrderReader interface {
	FindDraftsBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.PurchaseOrder, error)
}

type transactionalOrderRepo interface {
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type transactionalRepoFactory func(tx *gorm.DB) transactionalOrderRepo

func defaultTransactionalRepo(tx *gorm.DB) transactionalOrderRepo {
	return purchaseorders.NewRepository(tx)
}

// NewDraftExpiryJob builds the cron job that cancels draft orders left
// unconfirmed past the expiry window.
func NewDraftExpiryJob(params DraftExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.DraftReader == nil {
		return nil, fmt.Errorf("draft orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	repoFactory := params.TransactionalRepoFactory
	if repoFactory == nil {
		repoFactory = defaultTransactionalRepo
	}
	expiry := params.Expiry
	if expiry <= 0 {
		expiry = defaultDraftExpiry
	}
	return &draftExpiryJob{
		logg:        params.Logger,
		db:          params.DB,
		draftReader: params.DraftReader,
		outbox:      params.Outbox,
		repoFactory: repoFactory,
		expiry:      expiry,
		now:         time.Now,
	}, nil
}

type draftExpiryJob struct {
	logg        *logger.Logger
	db          txRunner
	draftReader draftOrderReader
	outbox      outboxEmitter
	repoFactory transactionalRepoFactory
	expiry      time.Duration
	now         func() time.Time
}

func (j *draftExpiryJob) Name() string { return "draft-expiry" }

func (j *draftExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.expiry)
	drafts, err := j.draftReader.FindDraftsBefore(ctx, cutoff, draftBatchSize)
	if err != nil {
		return fmt.Errorf("query stale draft orders: %w", err)
	}

	var errs []error
	count := 0
	for _, order := range drafts {
		if err := j.expireDraft(ctx, order); err != nil {
			errs = append(errs, fmt.Errorf("expire draft %s: %w", order.OrderNumber, err))
			continue
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "cutoff": cutoff})
	j.logg.Info(logCtx, "draft expiry loop complete")
	return multierr.Combine(errs...)
}

func (j *draftExpiryJob) expireDraft(ctx context.Context, order models.PurchaseOrder) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		current, err := repo.FindByIDForUpdate(ctx, order.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		// a confirm that slipped in since the batch query wins
		if current.Status != enums.OrderStatusDraft {
			return nil
		}
		now := j.now().UTC()
		updates := map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now,
			Data: purchaseorders.OrderStatusEvent{
				OrderID:     current.ID,
				OrderNumber: current.OrderNumber,
				Status:      enums.OrderStatusCancelled,
			},
		}
		return j.outbox.EmitIfNotExists(ctx, tx, event)
	})
}
