package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/pkg/enums"
)

// Order is the aggregate root produced by order assembly. Line items are
// immutable after creation except for their refund bookkeeping fields,
// which only the refund processor touches.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex" json:"orderNumber"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index" json:"customerId"`
	StaffID       uuid.UUID           `gorm:"column:staff_id;type:uuid;not null" json:"staffId"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(14,2);not null" json:"subtotal"`
	Tax           decimal.Decimal     `gorm:"column:tax;type:numeric(14,2);not null;default:0" json:"tax"`
	Discount      decimal.Decimal     `gorm:"column:discount;type:numeric(14,2);not null;default:0" json:"discount"`
	Shipping      decimal.Decimal     `gorm:"column:shipping;type:numeric(14,2);not null;default:0" json:"shipping"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(14,2);not null" json:"total"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null" json:"paymentMethod"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending';index" json:"paymentStatus"`
	OrderStatus   enums.OrderStatus   `gorm:"column:order_status;not null;default:'pending';index" json:"orderStatus"`
	OrderType     enums.OrderType     `gorm:"column:order_type;not null;default:'instore'" json:"orderType"`
	Notes         *string             `gorm:"column:notes" json:"notes,omitempty"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Refunds       []Refund            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"refunds"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// RecomputeTotals re-derives subtotal from the line items and total from
// the pricing components. Always called before the order is persisted.
func (o *Order) RecomputeTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal
	o.Total = o.Subtotal.Add(o.Tax).Add(o.Shipping).Sub(o.Discount)
}

// TotalRefunded sums the amounts of every refund recorded on the order.
func (o *Order) TotalRefunded() decimal.Decimal {
	total := decimal.Zero
	for _, refund := range o.Refunds {
		total = total.Add(refund.Amount)
	}
	return total
}

// ItemByID returns the embedded order item with the given id, or nil.
func (o *Order) ItemByID(id uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}
