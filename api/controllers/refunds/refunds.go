package refunds

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rmehra-dev/techshop-backend/api/middleware"
	"github.com/rmehra-dev/techshop-backend/api/responses"
	"github.com/rmehra-dev/techshop-backend/api/validators"
	internalrefunds "github.com/rmehra-dev/techshop-backend/internal/refunds"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
	"github.com/rmehra-dev/techshop-backend/pkg/logger"
)

// Process refunds order items and restocks tracked inventory.
func Process(svc internalrefunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refunds service unavailable"))
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

		rawOrderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if rawOrderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}
		orderID, err := uuid.Parse(rawOrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload processRefundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalrefunds.ProcessRefundInput{
			OrderID: orderID,
			Reason:  payload.Reason,
			StaffID: actorID,
		}
		for _, line := range payload.Items {
			input.Items = append(input.Items, internalrefunds.RefundItemInput{
				OrderItemID: line.OrderItemID,
				Quantity:    line.Quantity,
			})
		}

		result, err := svc.ProcessRefund(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type processRefundRequest struct {
	Reason string              `json:"reason" validate:"required"`
	Items  []refundItemRequest `json:"items" validate:"required,min=1,dive"`
}

type refundItemRequest struct {
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gt=0"`
}
