package inventory

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmehra-dev/techshop-backend/api/middleware"
	"github.com/rmehra-dev/techshop-backend/api/responses"
	"github.com/rmehra-dev/techshop-backend/api/validators"
	internalinventory "github.com/rmehra-dev/techshop-backend/internal/inventory"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
	"github.com/rmehra-dev/techshop-backend/pkg/logger"
	"github.com/rmehra-dev/techshop-backend/pkg/pagination"
)

// Adjust applies a manual stock mutation to one variant.
func Adjust(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		staffID := middleware.StaffIDFromContext(r.Context())
		if staffID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff context missing"))
			return
		}
		actorID, err := uuid.Parse(staffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid staff id"))
			return
		}

		var payload adjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movementType, err := enums.ParseMovementType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}

		result, err := svc.AdjustInventory(r.Context(), internalinventory.AdjustInput{
			ProductID: payload.ProductID,
			SKU:       payload.SKU,
			Type:      movementType,
			Quantity:  payload.Quantity,
			Reason:    payload.Reason,
			Notes:     payload.Notes,
			CostPrice: payload.CostPrice,
			StaffID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// Movements returns the paginated ledger history of a product.
func Movements(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		rawProductID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if rawProductID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}
		productID, err := uuid.Parse(rawProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters internalinventory.MovementFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			movementType, err := enums.ParseMovementType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			filters.MovementType = &movementType
		}

		dateFrom, err := validators.ParseQueryTime(r, "date_from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateFrom = dateFrom

		dateTo, err := validators.ParseQueryTime(r, "date_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateTo = dateTo

		list, err := svc.ListMovements(r.Context(), productID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// LowStock returns the variants at or below their restock threshold.
func LowStock(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		report, err := svc.LowStockReport(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

type adjustRequest struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	SKU       string           `json:"sku" validate:"required"`
	Type      string           `json:"type" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gte=0"`
	Reason    string           `json:"reason" validate:"required"`
	Notes     *string          `json:"notes,omitempty"`
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`
}
