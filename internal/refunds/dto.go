package refunds

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
)

// RefundItemInput requests a quantity of one order item back.
type RefundItemInput struct {
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gt=0"`
}

// ProcessRefundInput captures a refund request against an order.
type ProcessRefundInput struct {
	OrderID uuid.UUID         `json:"order_id"`
	Items   []RefundItemInput `json:"items" validate:"required,min=1,dive"`
	Reason  string            `json:"reason" validate:"required"`
	StaffID uuid.UUID         `json:"-"`
}

// ProcessRefundResult reports what the refund actually covered. Requested
// lines that had nothing left to refund are absent from the refund record.
type ProcessRefundResult struct {
	Refund        *models.Refund      `json:"refund"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	TotalRefunded decimal.Decimal     `json:"total_refunded"`
}
