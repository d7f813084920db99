package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	ordersvc "github.com/smartinventory/inventory-backend/internal/purchaseorders"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

type stubOrderService struct {
	order   *models.PurchaseOrder
	result  *ordersvc.ReceiveResult
	err     error
	receive ordersvc.ReceiveInput
}

func (s *stubOrderService) Create(ctx context.Context, input ordersvc.CreateOrderInput) (*models.PurchaseOrder, error) {
	return s.order, s.err
}

func (s *stubOrderService) Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(ctx context.Context, params pagination.Params, filters ordersvc.ListFilters) (*ordersvc.OrderList, error) {
	return &ordersvc.OrderList{}, s.err
}

func (s *stubOrderService) Confirm(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.PurchaseOrder, error) {
	return s.order, s.err
}

func (s *stubOrderService) Cancel(ctx context.Context, orderID, actorUserID uuid.UUID) (*models.PurchaseOrder, error) {
	return s.order, s.err
}

func (s *stubOrderService) Receive(ctx context.Context, input ordersvc.ReceiveInput) (*ordersvc.ReceiveResult, error) {
	s.receive = input
	return s.result, s.err
}

func newOrderTestRouter(svc ordersvc.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/purchase-orders", OrderCreate(svc, nil))
	r.Post("/api/v1/purchase-orders/{orderId}/confirm", OrderConfirm(svc, nil))
	r.Post("/api/v1/purchase-orders/{orderId}/receive", OrderReceive(svc, nil))
	return r
}

func TestOrderReceiveDecodesAndForwards(t *testing.T) {
	orderID := uuid.New()
	lineID := uuid.New()
	svc := &stubOrderService{
		result: &ordersvc.ReceiveResult{
			OrderStatus: enums.OrderStatusPartiallyReceived,
			Applied: []ordersvc.AppliedLine{
				{LineID: lineID, Applied: 4, Status: enums.LineStatusPartiallyReceived},
			},
		},
	}
	router := newOrderTestRouter(svc)

	body := fmt.Sprintf(`{"items":[{"line_id":%q,"quantity":4}],"receipt_ref":"GRN-12"}`, lineID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+orderID.String()+"/receive", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.receive.OrderID != orderID {
		t.Fatalf("expected order id %s got %s", orderID, svc.receive.OrderID)
	}
	if len(svc.receive.Items) != 1 || svc.receive.Items[0].LineID != lineID || svc.receive.Items[0].Quantity != 4 {
		t.Fatalf("unexpected items: %+v", svc.receive.Items)
	}
	if svc.receive.ReceiptRef == nil || *svc.receive.ReceiptRef != "GRN-12" {
		t.Fatalf("expected receipt ref to pass through, got %v", svc.receive.ReceiptRef)
	}

	var envelope struct {
		Data struct {
			OrderStatus string `json:"order_status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderStatus != string(enums.OrderStatusPartiallyReceived) {
		t.Fatalf("unexpected order status %q", envelope.Data.OrderStatus)
	}
}

func TestOrderReceiveRejectsMalformedPayloads(t *testing.T) {
	svc := &stubOrderService{}
	router := newOrderTestRouter(svc)

	cases := map[string]string{
		"empty items":  `{"items":[]}`,
		"bad line id":  `{"items":[{"line_id":"nope","quantity":1}]}`,
		"unknown keys": `{"items":[{"line_id":"` + uuid.NewString() + `","quantity":1}],"bogus":true}`,
	}
	for name, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+uuid.NewString()+"/receive", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, resp.Code)
		}
	}
}

func TestOrderConfirmMapsStateConflict(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order ORDER-00007 cannot be confirmed from status cancelled")}
	router := newOrderTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+uuid.NewString()+"/confirm", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestOrderCreateRejectsInvalidSupplier(t *testing.T) {
	svc := &stubOrderService{}
	router := newOrderTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders", bytes.NewReader([]byte(`{"supplier_id":"not-a-uuid","lines":[{"product_id":"`+uuid.NewString()+`","quantity":2}]}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
