package purchaseorders

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/smartinventory/inventory-backend/pkg/enums"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
)

func strPtr(value string) *string {
	return &value
}

func TestReceivePartialDelivery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := seedOrder(t, env, enums.OrderStatusConfirmed, seedLine{ordered: 10, stock: 3})
	lines, _ := env.repo.FindLines(ctx, order.ID)
	line := lines[0]
	actor := uuid.New()

	result, err := env.svc.Receive(ctx, ReceiveInput{
		OrderID:     order.ID,
		Items:       []ReceiveItemInput{{LineID: line.ID, Quantity: 4}},
		ReceiptRef:  strPtr("GRN-77"),
		ActorUserID: actor,
	})
	if err != nil {
		t.Fatalf("Receive error: %v", err)
	}
	if result.OrderStatus != enums.OrderStatusPartiallyReceived {
		t.Fatalf("expected partially_received, got %s", result.OrderStatus)
	}
	if len(result.Applied) != 1 || result.Applied[0].Applied != 4 || result.Applied[0].Clamped {
		t.Fatalf("unexpected applied result: %+v", result.Applied)
	}

	product := env.products.products[line.ProductID]
	if product.Quantity != 7 {
		t.Fatalf("expected stock 7, got %d", product.Quantity)
	}
	if product.Version != 1 {
		t.Fatalf("expected version bump, got %d", product.Version)
	}

	updated := env.repo.lines[line.ID]
	if updated.ReceivedQuantity != 4 || updated.Status != enums.LineStatusPartiallyReceived {
		t.Fatalf("unexpected line state: %+v", updated)
	}

	if len(env.ledger.movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(env.ledger.movements))
	}
	movement := env.ledger.movements[0]
	if movement.Type != enums.MovementTypeIn || movement.Quantity != 4 {
		t.Fatalf("unexpected movement: %+v", movement)
	}
	if movement.ReferenceType != enums.ReferenceTypePurchaseOrder || movement.ReferenceID == nil || *movement.ReferenceID != order.ID {
		t.Fatalf("movement must reference the order: %+v", movement)
	}
	if movement.Note == nil || !strings.Contains(*movement.Note, line.ID.String()) || !strings.Contains(*movement.Note, "GRN-77") {
		t.Fatalf("movement note must carry line id and receipt ref, got %v", movement.Note)
	}
	if movement.CreatedBy == nil || *movement.CreatedBy != actor {
		t.Fatalf("expected actor on movement, got %v", movement.CreatedBy)
	}
}

func TestReceiveClampsOverDelivery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := seedOrder(t, env, enums.OrderStatusConfirmed, seedLine{ordered: 6, stock: 0})
	lines, _ := env.repo.FindLines(ctx, order.ID)
	line := lines[0]

	result, err := env.svc.Receive(ctx, ReceiveInput{
		OrderID: order.ID,
		Items:   []ReceiveItemInput{{LineID: line.ID, Quantity: 50}},
	})
	if err != nil {
		t.Fatalf("Receive error: %v", err)
	}
	applied := result.Applied[0]
	if applied.Applied != 6 || !applied.Clamped {
		t.Fatalf("expected clamped application of 6, got %+v", applied)
	}
	if applied.Status != enums.LineStatusReceived {
		t.Fatalf("expected received line, got %s", applied.Status)
	}
	if result.OrderStatus != enums.OrderStatusReceived {
		t.Fatalf("expected received order, got %s", result.OrderStatus)
	}
	if env.products.products[line.ProductID].Quantity != 6 {
		t.Fatalf("expected stock 6, got %d", env.products.products[line.ProductID].Quantity)
	}
	if env.repo.orders[order.ID].ReceivedAt == nil {
		t.Fatal("expected received_at to be set")
	}
	if env.outbox.countByType(enums.EventOrderReceived) != 1 {
		t.Fatal("expected one received event")
	}
}

func TestReceiveResubmitConverges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := seedOrder(t, env, enums.OrderStatusConfirmed, seedLine{ordered: 5, stock: 0})
	lines, _ := env.repo.FindLines(ctx, order.ID)
	line := lines[0]

	receipt := ReceiveInput{
		OrderID: order.ID,
		Items:   []ReceiveItemInput{{LineID: line.ID, Quantity: 5}},
	}
	if _, err := env.svc.Receive(ctx, receipt); err != nil {
		t.Fatalf("first Receive error: %v", err)
	}

	result, err := env.svc.Receive(ctx, receipt)
	if err != nil {
		t.Fatalf("second Receive error: %v", err)
	}
	if result.Applied[0].Applied != 0 {
		t.Fatalf("resubmit must apply nothing, got %d", result.Applied[0].Applied)
	}
	if result.OrderStatus != enums.OrderStatusReceived {
		t.Fatalf("expected received, got %s", result.OrderStatus)
	}
	if env.products.products[line.ProductID].Quantity != 5 {
		t.Fatalf("stock must not change on resubmit, got %d", env.products.products[line.ProductID].Quantity)
	}
	if len(env.ledger.movements) != 1 {
		t.Fatalf("expected 1 movement after resubmit, got %d", len(env.ledger.movements))
	}
	if env.outbox.countByType(enums.EventOrderReceived) != 1 {
		t.Fatal("received event must fire once")
	}
}

func TestReceiveRejectsForeignLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := seedOrder(t, env, enums.OrderStatusConfirmed, seedLine{ordered: 10, stock: 0})
	lines, _ := env.repo.FindLines(ctx, order.ID)
	line := lines[0]

	_, err := env.svc.Receive(ctx, ReceiveInput{
		OrderID: order.ID,
		Items: []ReceiveItemInput{
			{LineID: line.ID, Quantity: 3},
			{LineID: uuid.New(), Quantity: 2},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign line, got %v", err)
	}

	// nothing was applied, valid item included
	if env.products.products[line.ProductID].Quantity != 0 {
		t.Fatal("stock must be untouched when the receipt is rejected")
	}
	if len(env.ledger.movements) != 0 {
		t.Fatal("no movement may be recorded for a rejected receipt")
	}
	if env.repo.lines[line.ID].ReceivedQuantity != 0 {
		t.Fatal("line must be untouched when the receipt is rejected")
	}
}

func TestReceiveRejectsCancelledOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cancelled := seedOrder(t, env, enums.OrderStatusCancelled, seedLine{ordered: 5})
	cancelledLines, _ := env.repo.FindLines(ctx, cancelled.ID)
	_, err := env.svc.Receive(ctx, ReceiveInput{
		OrderID: cancelled.ID,
		Items:   []ReceiveItemInput{{LineID: cancelledLines[0].ID, Quantity: 1}},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for cancelled order, got %v", err)
	}
	if len(env.ledger.movements) != 0 {
		t.Fatal("no movement may be recorded against a cancelled order")
	}
}

func TestReceiveAcceptsDraftOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft := seedOrder(t, env, enums.OrderStatusDraft, seedLine{ordered: 5, stock: 0})
	lines, _ := env.repo.FindLines(ctx, draft.ID)

	result, err := env.svc.Receive(ctx, ReceiveInput{
		OrderID: draft.ID,
		Items:   []ReceiveItemInput{{LineID: lines[0].ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Receive error: %v", err)
	}
	if result.OrderStatus != enums.OrderStatusPartiallyReceived {
		t.Fatalf("expected partially_received, got %s", result.OrderStatus)
	}
	if result.Applied[0].Applied != 2 {
		t.Fatalf("expected 2 applied, got %d", result.Applied[0].Applied)
	}
	if env.products.products[lines[0].ProductID].Quantity != 2 {
		t.Fatalf("expected stock 2, got %d", env.products.products[lines[0].ProductID].Quantity)
	}
}

func TestReceiveUnknownOrder(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Receive(context.Background(), ReceiveInput{
		OrderID: uuid.New(),
		Items:   []ReceiveItemInput{{LineID: uuid.New(), Quantity: 1}},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReceiveRecoversFromVersionConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := seedOrder(t, env, enums.OrderStatusConfirmed, seedLine{ordered: 10, stock: 0})
	lines, _ := env.repo.FindLines(ctx, order.ID)
	line := lines[0]
	env.products.casFailures = 2

	result, err := env.svc.Receive(ctx, ReceiveInput{
		OrderID: order.ID,
		Items:   []ReceiveItemInput{{LineID: line.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("Receive error: %v", err)
	}
	if result.Applied[0].Applied != 4 {
		t.Fatalf("expected 4 applied after retries, got %d", result.Applied[0].Applied)
	}
	if env.products.casCalls != 3 {
		t.Fatalf("expected 3 compare-and-swap attempts, got %d", env.products.casCalls)
	}

	// the delta landed exactly once despite the lost races
	product := env.products.products[line.ProductID]
	if product.Quantity != 4 {
		t.Fatalf("expected stock 4, got %d", product.Quantity)
	}
	if product.Version != 3 {
		t.Fatalf("expected version 3 (two lost races + one win), got %d", product.Version)
	}
	if len(env.ledger.movements) != 1 || env.ledger.movements[0].Quantity != 4 {
		t.Fatalf("expected a single movement of 4, got %+v", env.ledger.movements)
	}
}

func TestReceiveConflictExhaustsRetries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := seedOrder(t, env, enums.OrderStatusConfirmed, seedLine{ordered: 10, stock: 0})
	lines, _ := env.repo.FindLines(ctx, order.ID)
	line := lines[0]
	env.products.casFailures = 10

	_, err := env.svc.Receive(ctx, ReceiveInput{
		OrderID: order.ID,
		Items:   []ReceiveItemInput{{LineID: line.ID, Quantity: 4}},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict after retry budget, got %v", err)
	}
	if env.products.casCalls != 4 {
		t.Fatalf("expected 4 compare-and-swap attempts, got %d", env.products.casCalls)
	}
	if len(env.ledger.movements) != 0 {
		t.Fatal("no movement may survive a conflicted receipt")
	}
	if env.repo.lines[line.ID].ReceivedQuantity != 0 {
		t.Fatal("line must be untouched after a conflicted receipt")
	}
}

func TestReceiveMultipleLinesDerivesStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := seedOrder(t, env, enums.OrderStatusConfirmed,
		seedLine{ordered: 4, stock: 0},
		seedLine{ordered: 6, stock: 0},
	)
	lines, _ := env.repo.FindLines(ctx, order.ID)

	// first receipt fills only the first line
	result, err := env.svc.Receive(ctx, ReceiveInput{
		OrderID: order.ID,
		Items:   []ReceiveItemInput{{LineID: lines[0].ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("first Receive error: %v", err)
	}
	if result.OrderStatus != enums.OrderStatusPartiallyReceived {
		t.Fatalf("expected partially_received, got %s", result.OrderStatus)
	}

	// second receipt completes the order
	result, err = env.svc.Receive(ctx, ReceiveInput{
		OrderID: order.ID,
		Items:   []ReceiveItemInput{{LineID: lines[1].ID, Quantity: 6}},
	})
	if err != nil {
		t.Fatalf("second Receive error: %v", err)
	}
	if result.OrderStatus != enums.OrderStatusReceived {
		t.Fatalf("expected received, got %s", result.OrderStatus)
	}

	// the ledger adds up to what the lines say was received
	totalMoved := 0
	for _, movement := range env.ledger.movements {
		totalMoved += movement.Quantity
	}
	totalReceived := 0
	for _, id := range []uuid.UUID{lines[0].ID, lines[1].ID} {
		totalReceived += env.repo.lines[id].ReceivedQuantity
	}
	if totalMoved != totalReceived || totalMoved != 10 {
		t.Fatalf("ledger and lines disagree: moved %d, received %d", totalMoved, totalReceived)
	}
}
