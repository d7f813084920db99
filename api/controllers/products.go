package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/inventory-backend/api/responses"
	"github.com/smartinventory/inventory-backend/api/validators"
	productsvc "github.com/smartinventory/inventory-backend/internal/products"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	pkgerrors "github.com/smartinventory/inventory-backend/pkg/errors"
	"github.com/smartinventory/inventory-backend/pkg/logger"
	"github.com/smartinventory/inventory-backend/pkg/pagination"
)

type createProductRequest struct {
	SKU          string  `json:"sku" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Description  *string `json:"description,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	MinimumStock int     `json:"minimum_stock" validate:"omitempty,min=0"`
	SalePrice    string  `json:"sale_price" validate:"required"`
}

type updateProductRequest struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Unit         *string `json:"unit,omitempty"`
	MinimumStock *int    `json:"minimum_stock,omitempty" validate:"omitempty,min=0"`
	SalePrice    *string `json:"sale_price,omitempty"`
}

type adjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// ProductCreate registers a new product.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		salePrice, err := decimal.NewFromString(strings.TrimSpace(payload.SalePrice))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale price"))
			return
		}

		input := productsvc.CreateProductInput{
			SKU:          payload.SKU,
			Name:         strings.TrimSpace(payload.Name),
			Description:  payload.Description,
			MinimumStock: payload.MinimumStock,
			SalePrice:    salePrice,
		}
		if payload.Unit != "" {
			unit, err := enums.ParseUnitOfMeasure(strings.TrimSpace(payload.Unit))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit"))
				return
			}
			input.Unit = unit
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductGet fetches one product by id.
func ProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductList returns a cursor-paginated product page.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		belowMinimum, err := validators.ParseQueryBool(r, "below_minimum")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(),
			pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")},
			productsvc.ListFilters{IncludeInactive: includeInactive, BelowMinimum: belowMinimum},
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ProductUpdate applies partial product changes. Stock quantity is not
// editable here; it moves through receipts and manual adjustments only.
func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.UpdateProductInput{
			Name:         payload.Name,
			Description:  payload.Description,
			MinimumStock: payload.MinimumStock,
		}
		if payload.Unit != nil {
			unit, err := enums.ParseUnitOfMeasure(strings.TrimSpace(*payload.Unit))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit"))
				return
			}
			input.Unit = &unit
		}
		if payload.SalePrice != nil {
			salePrice, err := decimal.NewFromString(strings.TrimSpace(*payload.SalePrice))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale price"))
				return
			}
			input.SalePrice = &salePrice
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductAdjustStock applies a signed manual stock correction.
func ProductAdjustStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdjustStock(r.Context(), productsvc.AdjustStockInput{
			ProductID:   id,
			Delta:       payload.Delta,
			Reason:      strings.TrimSpace(payload.Reason),
			ActorUserID: actorID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
