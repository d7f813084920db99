package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartinventory/inventory-backend/api/responses"
	"github.com/smartinventory/inventory-backend/api/validators"
	ledgersvc "github.com/smartinventory/inventory-backend/internal/ledger"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	"github.com/smartinventory/inventory-backend/pkg/logger"
)

// MovementsByProduct lists the append-only stock ledger for one product,
// newest first.
func MovementsByProduct(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movements)
	}
}

// MovementsByReference lists every ledger entry recorded against a purchase
// order reference.
func MovementsByReference(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		referenceID, err := validators.ParsePathUUID(chi.URLParam(r, "referenceId"), "referenceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := svc.ListByReference(r.Context(), enums.ReferenceTypePurchaseOrder, referenceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movements)
	}
}
