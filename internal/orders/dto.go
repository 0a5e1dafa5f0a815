package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
)

// CustomerInput identifies the buyer. Either an existing customer id, or
// enough detail to find-or-create one by phone.
type CustomerInput struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Name    string     `json:"name,omitempty"`
	Phone   string     `json:"phone,omitempty"`
	Email   *string    `json:"email,omitempty"`
	Address *string    `json:"address,omitempty"`
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	SKU          string    `json:"sku" validate:"required"`
	Quantity     int       `json:"quantity" validate:"gt=0"`
	SerialNumber *string   `json:"serial_number,omitempty"`
}

// CreateOrderInput captures everything needed to assemble an order.
type CreateOrderInput struct {
	Customer      CustomerInput       `json:"customer"`
	Items         []OrderItemInput    `json:"items" validate:"required,min=1,dive"`
	PaymentMethod enums.PaymentMethod `json:"payment_method" validate:"required"`
	OrderType     enums.OrderType     `json:"order_type"`
	Discount      decimal.Decimal     `json:"discount"`
	Shipping      decimal.Decimal     `json:"shipping"`
	Notes         *string             `json:"notes,omitempty"`
	StaffID       uuid.UUID           `json:"-"`
}

// UpdateStatusInput advances an order through its lifecycle.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Notes   *string
	StaffID uuid.UUID
}

// OrderFilters describe the inputs supported by the order list.
type OrderFilters struct {
	OrderStatus   *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	OrderType     *enums.OrderType
	DateFrom      *time.Time
	DateTo        *time.Time
	Query         string
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
