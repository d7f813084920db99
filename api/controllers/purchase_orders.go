package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartinventory/inventory-backend/api/responses"
	"github.com/smartinventory/inventory-backend/api/validators"
	ordersvc "github.com/smartinventory/inventory-backend/internal/purchaseorders"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/logger"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

type createOrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	SupplierID string                   `json:"supplier_id" validate:"required,uuid"`
	Lines      []createOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes      *string                  `json:"notes,omitempty"`
}

type receiveItemRequest struct {
	LineID   string `json:"line_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type receiveRequest struct {
	Items      []receiveItemRequest `json:"items" validate:"required,min=1,dive"`
	ReceiptRef *string              `json:"receipt_ref,omitempty"`
}

// OrderCreate assembles a draft purchase order.
func OrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplierID, err := validators.ParsePathUUID(payload.SupplierID, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]ordersvc.CreateOrderLineInput, 0, len(payload.Lines))
		for _, line := range payload.Lines {
			productID, err := validators.ParsePathUUID(line.ProductID, "product_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			lines = append(lines, ordersvc.CreateOrderLineInput{
				ProductID: productID,
				Quantity:  line.Quantity,
			})
		}

		order, err := svc.Create(r.Context(), ordersvc.CreateOrderInput{
			SupplierID:  supplierID,
			Lines:       lines,
			Notes:       payload.Notes,
			ActorUserID: actorID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderGet fetches one order with its lines.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderList returns a cursor-paginated order page with optional status and
// supplier filters.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := ordersvc.ListFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("supplier_id")); raw != "" {
			supplierID, err := validators.ParsePathUUID(raw, "supplier_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.SupplierID = &supplierID
		}

		page, err := svc.List(r.Context(),
			pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")},
			filters,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// OrderConfirm moves a draft order to confirmed.
func OrderConfirm(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), id, actorID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderCancel cancels a non-terminal order.
func OrderCancel(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), id, actorID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderReceive applies a goods receipt against the order's lines.
func OrderReceive(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload receiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]ordersvc.ReceiveItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			lineID, err := validators.ParsePathUUID(item.LineID, "line_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			items = append(items, ordersvc.ReceiveItemInput{
				LineID:   lineID,
				Quantity: item.Quantity,
			})
		}

		result, err := svc.Receive(r.Context(), ordersvc.ReceiveInput{
			OrderID:     id,
			Items:       items,
			ReceiptRef:  payload.ReceiptRef,
			ActorUserID: actorID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
