package purchaseorders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartinventory/inventory-backend/internal/ledger"
	"github.com/smartinventory/inventory-backend/internal/products"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/outbox"
)

// Receive applies a goods receipt to an order in one all-or-nothing
// transaction. Requested quantities are clamped to what each line still has
// outstanding, so re-submitting the same receipt converges to a no-op. Stock
// quantities are updated through a version compare-and-swap; a line that
// exhausts the retry budget fails the whole receipt.
func (s *service) Receive(ctx context.Context, input ReceiveInput) (*ReceiveResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt needs at least one item")
	}
	for _, item := range input.Items {
		if item.LineID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id required on every item")
		}
		if item.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity cannot be negative")
		}
	}

	var result *ReceiveResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", input.OrderID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("order %s is cancelled", order.OrderNumber),
			)
		}

		lines, err := repo.FindLines(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}
		linesByID := make(map[uuid.UUID]*models.PurchaseOrderLine, len(lines))
		for i := range lines {
			linesByID[lines[i].ID] = &lines[i]
		}

		// the whole receipt is rejected before anything is applied
		for _, item := range input.Items {
			if _, ok := linesByID[item.LineID]; !ok {
				return pkgerrors.New(
					pkgerrors.CodeNotFound,
					fmt.Sprintf("line %s does not belong to order %s", item.LineID, order.OrderNumber),
				)
			}
		}

		applied := make([]AppliedLine, 0, len(input.Items))
		for _, item := range input.Items {
			line := linesByID[item.LineID]

			remaining := line.Remaining()
			toApply := item.Quantity
			clamped := false
			if toApply > remaining {
				toApply = remaining
				clamped = true
				s.metrics.IncLineClamped()
			}
			if toApply <= 0 {
				applied = append(applied, AppliedLine{
					LineID:    line.ID,
					ProductID: line.ProductID,
					Requested: item.Quantity,
					Applied:   0,
					Clamped:   clamped,
					Status:    line.Status,
				})
				continue
			}

			if err := s.applyStockDelta(ctx, productRepo, line.ProductID, toApply); err != nil {
				return err
			}

			orderID := order.ID
			note := fmt.Sprintf("Received for PO line %s", line.ID)
			if input.ReceiptRef != nil && *input.ReceiptRef != "" {
				note = fmt.Sprintf("%s (receipt %s)", note, *input.ReceiptRef)
			}
			movement := ledger.RecordMovementInput{
				ProductID:     line.ProductID,
				Type:          enums.MovementTypeIn,
				Quantity:      toApply,
				ReferenceType: enums.ReferenceTypePurchaseOrder,
				ReferenceID:   &orderID,
				Note:          &note,
			}
			if input.ActorUserID != uuid.Nil {
				actorID := input.ActorUserID
				movement.CreatedBy = &actorID
			}
			if _, err := s.ledger.Record(ctx, tx, movement); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record receipt movement")
			}

			newReceived := line.ReceivedQuantity + toApply
			newStatus := enums.LineStatusPartiallyReceived
			if newReceived >= line.Quantity {
				newStatus = enums.LineStatusReceived
			}
			if err := repo.UpdateLine(ctx, line.ID, map[string]any{
				"received_quantity": newReceived,
				"status":            newStatus,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line")
			}
			line.ReceivedQuantity = newReceived
			line.Status = newStatus

			applied = append(applied, AppliedLine{
				LineID:    line.ID,
				ProductID: line.ProductID,
				Requested: item.Quantity,
				Applied:   toApply,
				Clamped:   clamped,
				Status:    newStatus,
			})
		}

		newStatus, err := s.deriveOrderStatus(ctx, tx, order, lines, input.ActorUserID)
		if err != nil {
			return err
		}

		s.metrics.IncReceiptApplied()
		result = &ReceiveResult{OrderStatus: newStatus, Applied: applied}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyStockDelta adds toApply to the product's on-hand quantity, retrying
// the compare-and-swap against concurrent writers until the budget runs out.
func (s *service) applyStockDelta(ctx context.Context, repo products.Repository, productID uuid.UUID, toApply int) error {
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		product, err := repo.FindByID(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product for stock update")
		}
		ok, err := repo.ApplyQuantityDelta(ctx, product.ID, product.Version, toApply)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock update")
		}
		if ok {
			return nil
		}
		s.metrics.IncVersionRetry()
	}
	s.metrics.IncConflictExhausted()
	return pkgerrors.New(
		pkgerrors.CodeConflict,
		fmt.Sprintf("stock update for product %s lost the version race", productID),
	)
}

// deriveOrderStatus recomputes the order status from its lines after a
// receipt and emits the fully-received event exactly once.
func (s *service) deriveOrderStatus(ctx context.Context, tx *gorm.DB, order *models.PurchaseOrder, lines []models.PurchaseOrderLine, actorUserID uuid.UUID) (enums.OrderStatus, error) {
	allReceived := len(lines) > 0
	anyReceived := false
	for _, line := range lines {
		if line.Status != enums.LineStatusReceived {
			allReceived = false
		}
		if line.ReceivedQuantity > 0 {
			anyReceived = true
		}
	}

	newStatus := order.Status
	if allReceived {
		newStatus = enums.OrderStatusReceived
	} else if anyReceived {
		newStatus = enums.OrderStatusPartiallyReceived
	}
	if newStatus == order.Status {
		return newStatus, nil
	}

	repo := s.repo.WithTx(tx)
	updates := map[string]any{"status": newStatus}
	if newStatus == enums.OrderStatusReceived {
		now := time.Now().UTC()
		updates["received_at"] = now
		order.ReceivedAt = &now
	}
	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return order.Status, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = newStatus

	if newStatus == enums.OrderStatusReceived {
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderReceived,
			AggregateType: enums.AggregatePurchaseOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actorUserID),
			Data: OrderStatusEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Status:      order.Status,
			},
			Version: 1,
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return newStatus, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order received event")
		}
	}
	return newStatus, nil
}
